package diorama

// InjectedSource is a PointerSource that replays queued positions, one per
// sample. Once the queue drains it keeps reporting the last position. Used
// for scripted runs and tests in place of the real cursor.
type InjectedSource struct {
	queue []pointerSample
	x, y  float64
}

type pointerSample struct {
	x, y float64
}

// NewInjectedSource creates a source resting at (x, y).
func NewInjectedSource(x, y float64) *InjectedSource {
	return &InjectedSource{x: x, y: y}
}

// InjectMove queues a pointer position at the given screen coordinates.
// It is reported on the next sample.
func (s *InjectedSource) InjectMove(x, y float64) {
	s.queue = append(s.queue, pointerSample{x: x, y: y})
}

// InjectSweep queues a straight-line sweep from (fromX, fromY) to (toX, toY)
// spread over the given number of frames. Minimum frames is 2.
func (s *InjectedSource) InjectSweep(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(frames-1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
}

// Pending returns the number of queued positions not yet reported.
func (s *InjectedSource) Pending() int {
	return len(s.queue)
}

// PointerPosition pops the next queued position, or repeats the last one.
func (s *InjectedSource) PointerPosition() (float64, float64) {
	if len(s.queue) > 0 {
		p := s.queue[0]
		copy(s.queue, s.queue[1:])
		s.queue = s.queue[:len(s.queue)-1]
		s.x, s.y = p.x, p.y
	}
	return s.x, s.y
}
