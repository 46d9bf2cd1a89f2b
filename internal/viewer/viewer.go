// Package viewer implements the main frame loop of the castle book.
package viewer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/castle-book/internal/assets"
	"github.com/Faultbox/castle-book/internal/book"
	"github.com/Faultbox/castle-book/internal/config"
	"github.com/Faultbox/castle-book/internal/engine/audio"
	"github.com/Faultbox/castle-book/internal/engine/bend"
	"github.com/Faultbox/castle-book/internal/engine/camera"
	"github.com/Faultbox/castle-book/internal/engine/debug"
	"github.com/Faultbox/castle-book/internal/engine/input"
	"github.com/Faultbox/castle-book/internal/engine/lighting"
	"github.com/Faultbox/castle-book/internal/engine/page"
	"github.com/Faultbox/castle-book/internal/engine/renderer"
	"github.com/Faultbox/castle-book/internal/engine/scene"
	"github.com/Faultbox/castle-book/internal/engine/texture"
	"github.com/Faultbox/castle-book/internal/engine/window"
	"github.com/Faultbox/castle-book/internal/logger"
	"github.com/Faultbox/castle-book/pkg/math"
)

const pageTurnEffect = "page-turn"

// Viewer is the running castle book.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	assets   *assets.Manager
	catalog  *assets.Catalog
	textures *texture.Library

	scene      *scene.Scene
	camera     *camera.Perspective
	rig        lighting.Rig
	controller *book.Controller

	audio       *audio.Manager
	screenshots *debug.ScreenshotCapture
	watcher     *config.Watcher
}

// New opens the window and the book at its first page. cfg must already
// be validated.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("layout", cfg.Book.Layout),
		zap.String("preset", cfg.Bend.Preset),
	)

	v := &Viewer{cfg: cfg}
	if err := v.init(); err != nil {
		v.Close()
		return nil, err
	}

	logger.Info("viewer initialized successfully", zap.Int("pages", v.catalog.Len()))
	return v, nil
}

func (v *Viewer) init() error {
	cfg := v.cfg

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:            width,
		Height:           height,
		Shadows:          cfg.Lighting.Shadows,
		ShadowResolution: cfg.Lighting.ShadowResolution,
	})
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()

	v.camera = camera.NewPerspective(cfg.Camera.FOV, cfg.Camera.Near, cfg.Camera.Far)
	v.camera.Position = math.Vec3FromArray(cfg.Camera.Position)
	v.camera.Target = math.Vec3FromArray(cfg.Camera.Target)
	v.camera.SetAspect(width, height)

	if v.rig, err = cfg.Rig(); err != nil {
		return err
	}
	bg, err := cfg.Background()
	if err != nil {
		return err
	}
	v.scene = scene.New(bg)

	if err := v.openAssets(); err != nil {
		return err
	}
	v.textures = texture.NewLibrary(v.assets, v.renderer, cfg.Book.MaxTextureSize)

	builder, err := page.NewBuilder(cfg.Shape(), v.textures)
	if err != nil {
		return err
	}
	params, err := cfg.BendParams()
	if err != nil {
		return err
	}
	solver, err := bend.NewSolver(params)
	if err != nil {
		return err
	}
	driver := book.NewDriver(solver, cfg.DriverOptions())

	opts, err := cfg.BookOptions()
	if err != nil {
		return err
	}
	opts.OnTurnStart = v.onTurnStart
	opts.OnTurnEnd = v.onTurnEnd

	v.controller, err = book.NewController(v.catalog, builder, v.scene, driver, opts)
	if err != nil {
		return fmt.Errorf("failed to open book: %w", err)
	}
	v.updateTitle()

	v.initAudio()
	v.screenshots = debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "castlebook")
	v.watchConfig()
	return nil
}

// openAssets mounts the assets directory and resolves the page list.
// Missing images only degrade pages to untextured faces.
func (v *Viewer) openAssets() error {
	v.assets = assets.NewManager()
	if err := v.assets.AddRoot(v.cfg.Book.AssetsDir); err != nil {
		logger.Warn("assets directory unavailable, pages will be untextured",
			zap.String("dir", v.cfg.Book.AssetsDir),
			zap.Error(err),
		)
	}

	var err error
	v.catalog, err = assets.NewCatalog(v.cfg.Book.Pages, v.assets)
	if err != nil {
		return err
	}
	if missing := v.catalog.Missing(v.assets); len(missing) > 0 {
		logger.Warn("page images missing",
			zap.Int("count", len(missing)),
			zap.Strings("paths", missing),
		)
	}
	return nil
}

func (v *Viewer) initAudio() {
	if !v.cfg.Audio.Enabled {
		return
	}
	m := audio.New()
	if err := m.Init(); err != nil {
		logger.Warn("audio disabled", zap.Error(err))
		return
	}
	m.SetMasterVolume(v.cfg.Audio.Volume)
	v.audio = m

	if v.cfg.Audio.PageTurnSound == "" {
		return
	}
	data, err := v.assets.Load(v.cfg.Audio.PageTurnSound)
	if err == nil {
		err = m.Register(pageTurnEffect, data)
	}
	if err != nil {
		logger.Warn("page turn sound unavailable",
			zap.String("path", v.cfg.Audio.PageTurnSound),
			zap.Error(err),
		)
	}
}

func (v *Viewer) watchConfig() {
	path := config.ResolvedPath()
	if path == "" {
		return
	}
	w, err := config.Watch(path)
	if err != nil {
		logger.Warn("config hot reload disabled", zap.String("path", path), zap.Error(err))
		return
	}
	v.watcher = w
	logger.Debug("watching config", zap.String("path", path))
}

// Run starts the frame loop and returns when the window is closed.
func (v *Viewer) Run() error {
	v.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting frame loop")

	for v.running {
		// Calculate delta time
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		for _, event := range v.input.Events() {
			if err := v.handle(event); err != nil {
				return err
			}
		}

		// 2. Pick up reloaded bend parameters between frames
		v.applyReloads()

		// 3. Advance the turn
		if err := v.controller.Update(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		// 4. Render and present
		v.renderer.Render(v.scene, v.camera, v.rig)
		v.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
				zap.String("state", v.controller.State().String()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handle(event input.Event) error {
	switch event.Action {
	case input.ActionAdvance:
		if _, err := v.controller.Advance(); err != nil {
			return fmt.Errorf("advance: %w", err)
		}
	case input.ActionResize:
		width, height := v.window.DrawableSize()
		v.renderer.Resize(width, height)
		v.camera.SetAspect(width, height)
	case input.ActionScreenshot:
		pixels, width, height := v.renderer.ReadPixels()
		name, err := v.screenshots.CaptureFromPixels(pixels, width, height)
		if err != nil {
			logger.Warn("screenshot failed", zap.Error(err))
			return nil
		}
		logger.Info("screenshot saved", zap.String("file", name))
	case input.ActionQuit:
		v.running = false
	}
	return nil
}

func (v *Viewer) applyReloads() {
	if v.watcher == nil {
		return
	}
	select {
	case p := <-v.watcher.Params():
		if err := v.controller.Driver().SetParams(p); err != nil {
			logger.Error("reloaded bend parameters rejected", zap.Error(err))
			return
		}
		logger.Info("bend parameters applied", zap.String("curve", p.Curve.String()))
	default:
	}
}

func (v *Viewer) onTurnStart(from, to int) {
	if v.audio == nil || !v.audio.Has(pageTurnEffect) {
		return
	}
	if err := v.audio.Play(pageTurnEffect); err != nil {
		logger.Debug("page turn sound", zap.Error(err))
	}
}

func (v *Viewer) onTurnEnd(int) {
	v.updateTitle()
}

func (v *Viewer) updateTitle() {
	idx := v.controller.Index()
	v.window.SetTitle(fmt.Sprintf("%s - %s (%d/%d)",
		v.cfg.Window.Title, v.catalog.Name(idx), idx+1, v.catalog.Len()))
}

// Close releases resources in reverse order of creation.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.watcher != nil {
		v.watcher.Close()
	}
	if v.audio != nil {
		v.audio.Close()
	}
	if v.textures != nil {
		v.textures.Close()
	}
	if v.assets != nil {
		v.assets.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
