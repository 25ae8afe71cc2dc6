package diorama

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// Run opens a window for cfg and drives an App until the window is closed or
// ctx ends. Options are passed to NewApp.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	app, err := NewApp(ctx, cfg, opts...)
	if err != nil {
		return err
	}

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// One Update per displayed frame, like a requestAnimationFrame loop.
	ebiten.SetTPS(ebiten.SyncWithFPS)

	runErr := ebiten.RunGame(&stopOnDone{App: app, ctx: ctx})
	if errors.Is(runErr, errStopped) {
		runErr = nil
	}
	return errors.Join(runErr, app.Close())
}

var errStopped = errors.New("stopped")

// stopOnDone ends the game loop once ctx is done.
type stopOnDone struct {
	*App
	ctx context.Context
}

func (g *stopOnDone) Update() error {
	if g.ctx.Err() != nil {
		return errStopped
	}
	return g.App.Update()
}
