package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/smasonuk/pipeview"
)

// Options configure a Game.
type Options struct {
	// Context ends the game when it is cancelled. Nil means never.
	Context  context.Context
	Config   pipeview.Config
	Geometry *pipeview.Geometry
	// Updates is drained once per tick. It may be nil.
	Updates pipeview.Updates
	// OnGeometry is called with every geometry the game switches to.
	OnGeometry func(*pipeview.Geometry)
	Logger     *slog.Logger
}

// Game is the ebiten game driving the viewer.
type Game struct {
	ctx        context.Context
	cfg        pipeview.Config
	camera     *pipeview.OrbitCamera
	projection *pipeview.Projection
	controller *pipeview.Controller
	scene      *Scene
	frame      *Frame

	updates    pipeview.Updates
	onGeometry func(*pipeview.Geometry)
	log        *slog.Logger

	input         inputReader
	width, height int
}

func NewGame(opts Options) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config

	g := &Game{
		ctx:        ctx,
		cfg:        cfg,
		camera:     cfg.Camera.NewCamera(),
		projection: cfg.Window.NewProjection(),
		controller: pipeview.NewController(cfg.Controls),
		scene:      NewScene(nil, cfg.Render),
		updates:    opts.Updates,
		onGeometry: opts.OnGeometry,
		log:        logger.With("component", "viewer"),
		width:      cfg.Window.Width,
		height:     cfg.Window.Height,
	}
	g.frame = NewFrame(g.camera.ViewMatrix(), g.projection.Matrix(), g.width, g.height, cfg.Render)

	if opts.Geometry != nil {
		g.SetGeometry(opts.Geometry)
	}
	return g
}

// SetGeometry swaps the drawn document. With fit_on_load the camera is
// framed on its bounds.
func (g *Game) SetGeometry(geo *pipeview.Geometry) {
	g.scene.SetGeometry(geo)
	if g.cfg.Camera.FitOnLoad {
		if min, max, ok := geo.Bounds(); ok {
			g.camera.FrameBounds(min, max)
		}
	}
	g.log.Info("geometry loaded", "stats", g.scene.Stats())
	if g.onGeometry != nil {
		g.onGeometry(geo)
	}
}

func (g *Game) Camera() *pipeview.OrbitCamera { return g.camera }
func (g *Game) Scene() *Scene                 { return g.scene }

func (g *Game) Update() error {
	if err := g.stopped(); err != nil {
		return err
	}

	if geo, ok := g.updates.Poll(); ok {
		g.SetGeometry(geo)
	}

	if mode, ok := g.input.read(g.controller); ok && mode != g.scene.Mode() {
		g.scene.SetMode(mode)
		g.log.Info("render mode", "mode", mode)
	}

	dt := time.Second / time.Duration(ebiten.TPS())
	g.controller.UpdateCamera(g.camera, dt)
	return nil
}

// stopped returns ebiten.Termination once the game context is done.
func (g *Game) stopped() error {
	if g.ctx.Err() != nil {
		g.log.Info("shutting down", "reason", context.Cause(g.ctx))
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(pipeview.RGBA(mgl32.Vec3(g.cfg.Render.Background), 255))

	g.frame.Update(g.camera.ViewMatrix(), g.projection.Matrix(), g.width, g.height)
	g.scene.Draw(screen, g.frame)

	if g.cfg.Render.ShowHUD {
		st := g.scene.Stats()
		ebitenutil.DebugPrint(screen, fmt.Sprintf(
			"FPS: %0.2f\nmode: %s (0-5)\npoints %d  lines %d  pipes %d  meshes %d  polygons %d\ndistance %.2f",
			ebiten.ActualFPS(), g.scene.Mode(),
			st.Points, st.Lines, st.Pipes, st.Meshes, st.Polygons,
			g.camera.Distance(),
		))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.projection.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed.
func Run(g *Game) error {
	ebiten.SetWindowSize(g.cfg.Window.Width, g.cfg.Window.Height)
	ebiten.SetWindowTitle(g.cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
