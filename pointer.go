package diorama

import "github.com/hajimehoshi/ebiten/v2"

// PointerState is the pointer position normalized to the viewport.
// X runs from -1 (left edge) to 1 (right edge); Y from 1 (top) to -1
// (bottom). Positions outside the viewport are not clamped.
type PointerState struct {
	X, Y float64
}

// Normalize maps absolute pixel coordinates (px, py) in a viewport of size
// (w, h) to a PointerState.
func Normalize(px, py, w, h float64) PointerState {
	return PointerState{
		X: (px/w)*2 - 1,
		Y: -(py/h)*2 + 1,
	}
}

// PointerSource reports the raw pointer position in screen pixels.
type PointerSource interface {
	PointerPosition() (x, y float64)
}

// CursorSource reads the ebiten mouse cursor.
type CursorSource struct{}

// PointerPosition returns the cursor position in layout (screen) pixels.
func (CursorSource) PointerPosition() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y)
}

// PointerTracker keeps the latest normalized pointer state. It is mutated
// only by move events and never reset.
type PointerTracker struct {
	state PointerState

	lastX, lastY float64
	seen         bool
	moves        int
}

// State returns the current normalized pointer state.
func (t *PointerTracker) State() PointerState {
	return t.state
}

// Moves returns the number of pointer-move events handled so far.
func (t *PointerTracker) Moves() int {
	return t.moves
}

// Move handles one pointer-move event at pixel position (px, py) in a
// viewport of size (w, h). Zero-size viewports are ignored.
func (t *PointerTracker) Move(px, py, w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	t.state = Normalize(px, py, w, h)
	t.lastX, t.lastY = px, py
	t.seen = true
	t.moves++
}

// Poll samples src and dispatches a move event if the raw position changed
// since the previous sample. The first sample only records a baseline, so
// the state stays centered until the pointer actually moves.
func (t *PointerTracker) Poll(src PointerSource, w, h float64) {
	px, py := src.PointerPosition()
	if !t.seen {
		t.lastX, t.lastY = px, py
		t.seen = true
		return
	}
	if px == t.lastX && py == t.lastY {
		return
	}
	t.Move(px, py, w, h)
}
