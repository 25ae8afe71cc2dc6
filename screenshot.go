package diorama

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the final frame, taken at the end
// of the next Draw. The PNG is written under the screenshot directory with
// a file name made of the time, a per-run sequence number and the label.
func (a *App) Screenshot(label string) {
	a.screenshotQueue = append(a.screenshotQueue, label)
}

// flushScreenshots writes every queued capture of screen.
func (a *App) flushScreenshots(screen *ebiten.Image) {
	if len(a.screenshotQueue) == 0 {
		return
	}
	defer func() { a.screenshotQueue = a.screenshotQueue[:0] }()

	if err := os.MkdirAll(a.screenshotDir, 0o755); err != nil {
		a.log.Error("screenshot", "dir", a.screenshotDir, "err", err)
		return
	}

	img := unpremultiply(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range a.screenshotQueue {
		path := a.screenshotPath(stamp, label)
		if err := writePNG(path, img); err != nil {
			a.log.Error("screenshot", "err", err)
			continue
		}
		a.log.Info("screenshot saved", "path", path)
	}
}

// screenshotPath returns the next unused file name for a capture. The
// sequence number keeps captures within the same second apart.
func (a *App) screenshotPath(stamp, label string) string {
	a.screenshotSeq++
	name := fmt.Sprintf("%s_%04d_%s.png", stamp, a.screenshotSeq, sanitizeLabel(label))
	return filepath.Join(a.screenshotDir, name)
}

// unpremultiply reads img back and converts it to straight-alpha NRGBA.
func unpremultiply(img *ebiten.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.ReadPixels(out.Pix)
	for i := 0; i < len(out.Pix); i += 4 {
		a := out.Pix[i+3]
		if a == 0 || a == 255 {
			continue
		}
		for k := 0; k < 3; k++ {
			out.Pix[i+k] = uint8(min(int(out.Pix[i+k])*255/int(a), 255))
		}
	}
	return out
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replaces everything else
// with '_', and maps empty labels to "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
