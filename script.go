package diorama

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in a script.
type scriptStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	FromX  float64 `yaml:"from_x"`
	FromY  float64 `yaml:"from_y"`
	ToX    float64 `yaml:"to_x"`
	ToY    float64 `yaml:"to_y"`
	Frames int     `yaml:"frames"`
}

type script struct {
	Steps []scriptStep `yaml:"steps"`
}

// ErrEmptyScript is returned by LoadScript for scripts without steps.
var ErrEmptyScript = errors.New("script has no steps")

// ScriptRunner sequences pointer moves, waits and screenshots across frames
// for unattended runs. It feeds an InjectedSource that replaces the cursor;
// attach it with WithScript.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	source    *InjectedSource
}

// LoadScript parses a YAML (or JSON) script. Supported actions are move
// (x, y), sweep (from_x, from_y, to_x, to_y, frames), wait (frames) and
// screenshot (label). Coordinates are screen pixels.
func LoadScript(data []byte) (*ScriptRunner, error) {
	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: %w", ErrEmptyScript)
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "move", "sweep", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: s.Steps, source: NewInjectedSource(0, 0)}, nil
}

// Source returns the pointer source driven by the script.
func (r *ScriptRunner) Source() *InjectedSource {
	return r.source
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from App.Update before the
// pointer is polled.
func (r *ScriptRunner) step(a *App) {
	if r.done {
		return
	}
	// Let queued pointer samples drain before advancing.
	if r.source.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		a.Screenshot(st.Label)
	case "move":
		r.source.InjectMove(st.X, st.Y)
	case "sweep":
		r.source.InjectSweep(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && r.source.Pending() == 0 {
		r.done = true
	}
}
