package diorama

import "testing"

func TestNormalizeCorners(t *testing.T) {
	const w, h = 1280.0, 720.0
	tests := []struct {
		name   string
		px, py float64
		wantX  float64
		wantY  float64
	}{
		{"top-left", 0, 0, -1, 1},
		{"bottom-right", w, h, 1, -1},
		{"center", w / 2, h / 2, 0, 0},
		{"top-right", w, 0, 1, 1},
		{"bottom-left", 0, h, -1, -1},
	}
	for _, tt := range tests {
		got := Normalize(tt.px, tt.py, w, h)
		if !approxEqual(got.X, tt.wantX, epsilon) || !approxEqual(got.Y, tt.wantY, epsilon) {
			t.Errorf("%s: Normalize(%v,%v) = (%v,%v), want (%v,%v)",
				tt.name, tt.px, tt.py, got.X, got.Y, tt.wantX, tt.wantY)
		}
	}
}

func TestNormalizeInViewportRange(t *testing.T) {
	const w, h = 333.0, 517.0
	for px := 0.0; px <= w; px += 11 {
		for py := 0.0; py <= h; py += 13 {
			s := Normalize(px, py, w, h)
			if s.X < -1 || s.X > 1 || s.Y < -1 || s.Y > 1 {
				t.Fatalf("Normalize(%v,%v) = %+v out of [-1,1]", px, py, s)
			}
		}
	}
}

func TestPointerTrackerMove(t *testing.T) {
	var tr PointerTracker
	tr.Move(0, 0, 200, 100)
	if s := tr.State(); s.X != -1 || s.Y != 1 {
		t.Errorf("State = %+v, want (-1,1)", s)
	}
	if tr.Moves() != 1 {
		t.Errorf("Moves = %d, want 1", tr.Moves())
	}
}

func TestPointerTrackerIgnoresEmptyViewport(t *testing.T) {
	var tr PointerTracker
	tr.Move(10, 10, 0, 100)
	tr.Move(10, 10, 100, 0)
	if tr.State() != (PointerState{}) {
		t.Errorf("State = %+v, want zero", tr.State())
	}
	if tr.Moves() != 0 {
		t.Errorf("Moves = %d, want 0", tr.Moves())
	}
}

func TestPointerTrackerPollBaseline(t *testing.T) {
	var tr PointerTracker
	src := NewInjectedSource(0, 0)

	// The first sample only records where the pointer is.
	tr.Poll(src, 100, 100)
	if tr.Moves() != 0 || tr.State() != (PointerState{}) {
		t.Fatalf("first poll: moves=%d state=%+v, want no move", tr.Moves(), tr.State())
	}

	// Unchanged position: no event.
	tr.Poll(src, 100, 100)
	if tr.Moves() != 0 {
		t.Fatalf("unchanged poll dispatched a move")
	}

	src.InjectMove(100, 100)
	tr.Poll(src, 100, 100)
	if tr.Moves() != 1 {
		t.Fatalf("Moves = %d, want 1", tr.Moves())
	}
	if s := tr.State(); s.X != 1 || s.Y != -1 {
		t.Errorf("State = %+v, want (1,-1)", s)
	}
}

func TestPointerTrackerKeepsLastState(t *testing.T) {
	var tr PointerTracker
	tr.Move(25, 75, 100, 100)
	want := tr.State()

	src := NewInjectedSource(25, 75)
	tr.Poll(src, 100, 100)
	tr.Poll(src, 100, 100)
	if tr.State() != want {
		t.Errorf("State = %+v, want %+v", tr.State(), want)
	}
}
