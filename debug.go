package diorama

import (
	"context"
	"log/slog"
	"time"
)

// statsInterval is the number of frames between devMode stats log lines.
const statsInterval = 120

// logFrameStats logs geometry counters and per-pass timings of the last
// frame at debug level, once every statsInterval frames.
func (a *App) logFrameStats() {
	if a.frames%statsInterval != 0 || !a.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	st := a.render.Stats()
	attrs := []any{
		"frame", a.frames,
		"triangles", st.Triangles,
		"culled", st.Culled,
		"lines", st.Lines,
		"batches", st.Batches,
	}
	var total time.Duration
	timings := a.composer.Timings()
	for i, p := range a.composer.Passes() {
		if i < len(timings) {
			attrs = append(attrs, p.Name(), timings[i])
			total += timings[i]
		}
	}
	attrs = append(attrs, "total", total)
	a.log.Debug("frame stats", attrs...)
}

// debugMaxTreeDepth is the depth past which a loaded model is reported as
// suspicious.
const debugMaxTreeDepth = 32

// checkModel warns about loaded models that are unusually deep or large.
func (a *App) checkModel(model *Node) {
	depth := 0
	var walk func(n *Node, d int)
	walk = func(n *Node, d int) {
		depth = max(depth, d)
		for _, c := range n.Children() {
			walk(c, d+1)
		}
	}
	walk(model, 1)
	if depth > debugMaxTreeDepth {
		a.log.Warn("model tree is deep", "depth", depth, "threshold", debugMaxTreeDepth)
	}
	if n := model.TriangleCount(); n > debugMaxTriangles {
		a.log.Warn("model is heavy for CPU rasterization", "triangles", n, "threshold", debugMaxTriangles)
	}
}

// debugMaxTriangles is the triangle count past which frame times suffer.
const debugMaxTriangles = 50000
