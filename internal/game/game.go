// Package game implements the viewer main loop.
package game

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/stepworld/internal/config"
	"github.com/Faultbox/stepworld/internal/engine/debug"
	"github.com/Faultbox/stepworld/internal/engine/input"
	"github.com/Faultbox/stepworld/internal/engine/renderer"
	"github.com/Faultbox/stepworld/internal/engine/scene"
	"github.com/Faultbox/stepworld/internal/engine/shadow"
	"github.com/Faultbox/stepworld/internal/engine/terrain"
	"github.com/Faultbox/stepworld/internal/engine/window"
	"github.com/Faultbox/stepworld/internal/level"
	"github.com/Faultbox/stepworld/internal/logger"
)

// Game is the viewer instance.
type Game struct {
	config   *config.Config
	level    *level.Level
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	scene    *scene.World
	viewer   *Viewer
	start    time.Time

	timer             *debug.FrameTimer
	screenshots       *debug.ScreenshotCapture
	screenshotPending bool
}

// New opens the window and uploads world to the GPU.
func New(cfg *config.Config, lvl *level.Level, world *terrain.World) (*Game, error) {
	logger.Info("initializing viewer",
		zap.String("level", lvl.Name),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	g := &Game{
		config: cfg,
		level:  lvl,
	}

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      "stepworld - " + lvl.Name,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := g.window.GetSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:            width,
		Height:           height,
		VSync:            cfg.Graphics.VSync,
		NumCascades:      cfg.Shadow.NumCascades,
		ShadowResolution: cfg.Shadow.Resolution,
		DepthBits:        cfg.Shadow.DepthBits,
	})
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	light, err := lvl.DynamicLight()
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("level light: %w", err)
	}

	g.scene, err = scene.New(world, light, shadow.CascadeConfig{
		NumCascades:       cfg.Shadow.NumCascades,
		Resolution:        cfg.Shadow.Resolution,
		SubFrustumScale:   cfg.Shadow.SubFrustumScale,
		LinearSplitWeight: cfg.Shadow.LinearSplitWeight,
		AverageFOV:        cfg.Camera.AverageFOV(),
	}, g.renderer)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}

	spawn := lvl.SpawnPoint(world.Heights, cfg.Camera.EyeHeight)
	g.viewer = NewViewer(cfg.Camera, world.Heights, spawn, g.window.Aspect())
	g.input = input.New()
	g.window.CaptureMouse(true)
	g.timer = debug.NewFrameTimer(time.Second)
	g.screenshots = debug.NewScreenshotCapture(cfg.Graphics.ScreenshotDir, "stepworld")

	st := g.scene.Stats()
	logger.Info("viewer initialized",
		zap.Int("sectors", st.Sectors),
		zap.Int("faces", st.Faces),
		zap.Int("shadow_faces", st.ShadowFaces),
		zap.Float32("far_clip", g.viewer.Camera.Far),
	)
	return g, nil
}

// Run starts the main loop and returns when the window closes.
func (g *Game) Run() error {
	g.running = true
	g.start = time.Now()

	lastTime := time.Now()

	logger.Info("starting viewer loop")

	for g.running {
		now := time.Now()
		elapsed := now.Sub(lastTime)
		dt := elapsed.Seconds()
		lastTime = now

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		for _, event := range g.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				width, height := g.window.GetSize()
				g.renderer.Resize(width, height)
				g.viewer.Resize(width, height)
			case input.EventKeyDown:
				switch event.Key {
				case sdl.SCANCODE_ESCAPE:
					g.running = false
				case sdl.SCANCODE_F12:
					g.screenshotPending = true
				}
			}
		}

		// 2. Move
		g.viewer.Step(float32(dt), g.controls())

		// 3. Render
		if err := g.render(now.Sub(g.start)); err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		if g.screenshotPending {
			g.screenshotPending = false
			g.takeScreenshot()
		}

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		if g.timer.Tick(elapsed) {
			if g.config.Graphics.ShowFPS {
				g.window.SetTitle(fmt.Sprintf("stepworld - %s (%.0f fps)", g.level.Name, g.timer.FPS()))
			}
			logger.Debug("frame timing",
				zap.Float64("fps", g.timer.FPS()),
				zap.Duration("frame", g.timer.FrameTime()),
				zap.Duration("max", g.timer.MaxFrame()),
			)
		}
	}

	return nil
}

func (g *Game) controls() Controls {
	dx, dy := g.input.MouseDelta()
	return Controls{
		Forward:   g.input.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S),
		Strafe:    g.input.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A),
		Climb:     g.input.Axis(sdl.SCANCODE_SPACE, sdl.SCANCODE_LCTRL),
		LookX:     float32(dx),
		LookY:     float32(dy),
		Jump:      g.input.IsKeyPressed(sdl.SCANCODE_SPACE),
		Sprint:    g.input.IsKeyHeld(sdl.SCANCODE_LSHIFT),
		ToggleFly: g.input.IsKeyPressed(sdl.SCANCODE_F),
	}
}

// Close cleans up viewer resources.
func (g *Game) Close() {
	logger.Info("closing viewer")

	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}

func (g *Game) render(t time.Duration) error {
	frame, err := g.scene.Frame(g.viewer.Camera, t)
	if err != nil {
		return err
	}

	g.renderer.Begin()
	g.renderer.Render(frame, g.viewer.Camera)
	g.renderer.End()
	return nil
}

func (g *Game) takeScreenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	name, err := g.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}
