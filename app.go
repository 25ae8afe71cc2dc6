package diorama

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/sync/errgroup"
)

// loadEventBuffer is the capacity of the loader event channel. Progress
// events beyond it wait for the next Update to drain.
const loadEventBuffer = 16

// Option configures an App.
type Option func(*App)

// WithLogger sets the structured logger. The default writes text to stderr
// at Info, or Debug when devMode is on.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithPointerSource replaces the OS cursor as the pointer input.
func WithPointerSource(src PointerSource) Option {
	return func(a *App) { a.source = src }
}

// WithLoader replaces the glTF loader.
func WithLoader(l AssetLoader) Option {
	return func(a *App) { a.loader = l }
}

// WithConfigPath enables hot reload of the config file at path.
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

// WithClock replaces time.Now for frame timing.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithScript drives the pointer (and screenshots) from r instead of the
// cursor.
func WithScript(r *ScriptRunner) Option {
	return func(a *App) {
		a.script = r
		a.source = r.Source()
	}
}

// WithScreenshotDir sets where devMode screenshots are written.
func WithScreenshotDir(dir string) Option {
	return func(a *App) { a.screenshotDir = dir }
}

// App is the frame driver. It implements ebiten.Game: Update drains
// background results, polls the pointer and steps the camera; Draw runs the
// post-processing chain; Layout tracks the viewport.
//
// Scene state is only touched from the game goroutine. The asset load and
// the config watcher run in an errgroup whose results are applied in Update.
type App struct {
	cfg Config
	log *slog.Logger

	scene     *Scene
	camera    *Camera
	follow    *FollowController
	pointer   PointerTracker
	source    PointerSource
	preloader *Preloader
	viewport  Viewport

	composer *Composer
	render   *RenderPass
	vignette *VignettePass
	fxaa     *FXAAPass
	output   *OutputPass

	loader     AssetLoader
	events     chan LoadEvent
	configPath string
	watcher    *ConfigWatcher
	group      *errgroup.Group
	cancel     context.CancelFunc

	now      func() time.Time
	lastTick time.Time
	frames   int

	fps             *fpsOverlay
	screenshotDir   string
	screenshotQueue []string
	screenshotSeq   int
	script          *ScriptRunner

	closed bool
}

// NewApp builds the scene, camera, lights and render pipeline described by
// cfg and starts loading the model in the background. The returned App must
// be closed with Close.
func NewApp(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:           cfg,
		source:        CursorSource{},
		loader:        &GLTFLoader{},
		now:           time.Now,
		screenshotDir: "screenshots",
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		level := slog.LevelInfo
		if cfg.DevMode {
			level = slog.LevelDebug
		}
		a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	a.viewport = Viewport{
		Width:      float64(cfg.Window.Width),
		Height:     float64(cfg.Window.Height),
		PixelRatio: 1,
	}
	a.camera = NewCamera(cfg.Camera.FOV, a.viewport.Aspect(), cfg.Camera.Near, cfg.Camera.Far)
	a.follow = cfg.followController()
	a.camera.SetPosition(a.follow.Target(PointerState{}))
	a.camera.LookAt(mgl64.Vec3{})

	a.scene = NewScene(a.camera)
	a.scene.Background = cfg.background()
	a.scene.Fog = cfg.fog()
	a.scene.SetHelpersVisible(cfg.DevMode)
	for _, l := range cfg.lights() {
		a.scene.AddLight(l)
	}

	if cfg.Preloader {
		a.preloader = NewPreloader(a.scene.Background)
		a.preloader.SetToneMapping(cfg.toneMapping(), cfg.Post.Exposure)
	}

	pw, ph := a.viewport.PhysicalSize()
	a.composer = NewComposer(pw, ph)
	a.composer.SetTimed(cfg.DevMode)
	a.render = NewRenderPass(a.scene)
	a.vignette = NewVignettePass(cfg.Post.Vignette.Offset, cfg.Post.Vignette.Darkness)
	a.fxaa = NewFXAAPass(a.viewport.Width, a.viewport.Height, a.viewport.PixelRatio)
	a.output = NewOutputPass(cfg.toneMapping(), cfg.Post.Exposure)
	a.composer.AddPass(a.render)
	a.composer.AddPass(a.vignette)
	a.composer.AddPass(a.fxaa)
	a.composer.AddPass(a.output)

	if cfg.DevMode {
		a.fps = newFPSOverlay()
	}

	a.start(ctx)
	return a, nil
}

// start launches the background group.
func (a *App) start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.group, ctx = errgroup.WithContext(ctx)

	a.events = make(chan LoadEvent, loadEventBuffer)
	events, loader, locator := a.events, a.loader, a.cfg.Model
	a.log.Info("loading model", "locator", locator)
	a.group.Go(func() error {
		defer close(events)
		return loader.Load(ctx, locator, events)
	})

	if a.configPath == "" {
		return
	}
	w, err := NewConfigWatcher(a.configPath)
	if err != nil {
		a.log.Warn("config hot reload disabled", "path", a.configPath, "err", err)
		return
	}
	a.watcher = w
	a.group.Go(func() error {
		return w.Run(ctx)
	})
	a.log.Debug("watching config", "path", w.Path())
}

// Scene returns the scene graph.
func (a *App) Scene() *Scene { return a.scene }

// Camera returns the scene camera.
func (a *App) Camera() *Camera { return a.camera }

// Composer returns the post-processing chain.
func (a *App) Composer() *Composer { return a.composer }

// FXAA returns the anti-aliasing pass.
func (a *App) FXAA() *FXAAPass { return a.fxaa }

// Preloader returns the loading overlay, or nil when disabled.
func (a *App) Preloader() *Preloader { return a.preloader }

// Pointer returns the pointer tracker.
func (a *App) Pointer() *PointerTracker { return &a.pointer }

// Viewport returns the current viewport.
func (a *App) Viewport() Viewport { return a.viewport }

// Config returns the active configuration including hot-reloaded tunables.
func (a *App) Config() Config { return a.cfg }

// Update implements ebiten.Game. It never returns an error.
func (a *App) Update() error {
	now := a.now()
	var elapsed time.Duration
	if !a.lastTick.IsZero() {
		elapsed = now.Sub(a.lastTick)
	}
	a.lastTick = now
	a.frames++

	a.drainLoadEvents()
	a.drainConfigEvents()

	if a.script != nil {
		a.script.step(a)
	}
	pw, ph := a.viewport.PhysicalSize()
	a.pointer.Poll(a.source, float64(pw), float64(ph))
	a.preloader.Advance(elapsed)
	a.follow.Step(a.camera, a.pointer.State())

	if a.cfg.DevMode {
		a.fps.update(elapsed)
		if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
			a.Screenshot("frame")
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	a.composer.Render(screen)
	a.preloader.Draw(screen, a.viewport.PixelRatio)
	if a.cfg.DevMode {
		a.fps.draw(screen, a.viewport.PixelRatio)
		a.logFrameStats()
	}
	a.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The screen is sized in device pixels,
// with the pixel ratio capped at MaxPixelRatio.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.Resize(Viewport{
		Width:      float64(outsideWidth),
		Height:     float64(outsideHeight),
		PixelRatio: monitorPixelRatio(),
	})
	return a.viewport.PhysicalSize()
}

// Resize applies a viewport change: camera aspect and projection, composer
// buffer size and FXAA resolution. Empty viewports and repeated sizes are
// ignored.
func (a *App) Resize(vp Viewport) {
	if vp.Empty() {
		return
	}
	vp.PixelRatio = clampPixelRatio(vp.PixelRatio)
	if vp == a.viewport {
		return
	}
	a.viewport = vp
	a.camera.SetAspect(vp.Aspect())
	a.camera.UpdateProjectionMatrix()
	a.composer.SetSize(vp.PhysicalSize())
	a.fxaa.SetResolution(vp.Width, vp.Height, vp.PixelRatio)
	a.log.Debug("viewport resized",
		"width", vp.Width, "height", vp.Height, "pixel_ratio", vp.PixelRatio)
}

// drainLoadEvents applies every pending loader event.
func (a *App) drainLoadEvents() {
	for a.events != nil {
		select {
		case ev, ok := <-a.events:
			if !ok {
				a.events = nil
				return
			}
			a.handleLoadEvent(ev)
		default:
			return
		}
	}
}

func (a *App) handleLoadEvent(ev LoadEvent) {
	switch ev.Kind {
	case LoadProgress:
		a.preloader.SetProgress(ev.Progress)
		a.log.Debug("model load progress", "ratio", ev.Progress)
	case LoadDone:
		if err := a.scene.SetModel(ev.Model); err != nil {
			a.log.Error("attach model", "err", err)
			return
		}
		a.preloader.Complete()
		if a.cfg.DevMode {
			a.checkModel(ev.Model)
		}
		a.log.Info("model loaded",
			"locator", a.cfg.Model, "triangles", ev.Model.TriangleCount())
	case LoadFailed:
		a.log.Error("model load failed", "locator", a.cfg.Model, "err", ev.Err)
	}
}

// drainConfigEvents reloads the config after a watched change.
func (a *App) drainConfigEvents() {
	if a.watcher == nil {
		return
	}
	select {
	case path, ok := <-a.watcher.Events:
		if !ok {
			a.watcher = nil
			return
		}
		a.reloadConfig(path)
	case err, ok := <-a.watcher.Errors:
		if ok {
			a.log.Warn("config watcher", "err", err)
		}
	default:
	}
}

func (a *App) reloadConfig(path string) {
	cfg, err := LoadConfig(path)
	if err != nil {
		a.log.Warn("config reload rejected", "err", err)
		return
	}
	a.ApplyTunables(cfg)
	a.log.Info("config reloaded", "path", path)
}

// ApplyTunables copies the live-adjustable settings of cfg into the running
// scene: post-processing, background, fog and the ambient light. Settings
// that shape the scene at startup (model, window, camera, follow, lights
// other than ambient) are left unchanged. cfg must be valid.
func (a *App) ApplyTunables(cfg Config) {
	a.vignette.Offset = cfg.Post.Vignette.Offset
	a.vignette.Darkness = cfg.Post.Vignette.Darkness
	a.output.ToneMapping = cfg.toneMapping()
	a.output.Exposure = cfg.Post.Exposure

	a.scene.Background = cfg.background()
	a.scene.Fog = cfg.fog()
	a.preloader.SetBackground(a.scene.Background)
	a.preloader.SetToneMapping(a.output.ToneMapping, a.output.Exposure)

	ambient, _ := ParseHexColor(cfg.Lighting.AmbientColor)
	for _, l := range a.scene.Lights() {
		if l.Type == LightAmbient {
			l.Color = ambient
			l.Intensity = cfg.Lighting.AmbientIntensity
			break
		}
	}

	a.cfg.Post = cfg.Post
	a.cfg.Scene = cfg.Scene
	a.cfg.Lighting.AmbientColor = cfg.Lighting.AmbientColor
	a.cfg.Lighting.AmbientIntensity = cfg.Lighting.AmbientIntensity
}

// Close stops background work, waits for it and releases GPU buffers. It is
// safe to call more than once.
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.cancel()
	err := a.group.Wait()
	a.composer.Dispose()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
