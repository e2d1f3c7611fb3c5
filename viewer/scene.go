package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/smasonuk/pipeview"
)

// RenderMode selects which geometry kinds are drawn.
type RenderMode int

const (
	ModeAll RenderMode = iota
	ModePoints
	// ModePipes draws document lines as pipes.
	ModePipes
	ModeRegularLines
	ModeMeshes
	ModePolygons
)

var modeNames = [...]string{
	ModeAll:          "all",
	ModePoints:       "points",
	ModePipes:        "pipes",
	ModeRegularLines: "lines",
	ModeMeshes:       "meshes",
	ModePolygons:     "polygons",
}

func (m RenderMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// ModeForDigit maps the digit keys 0..5 to render modes.
func ModeForDigit(d int) (RenderMode, bool) {
	if d < 0 || d >= len(modeNames) {
		return 0, false
	}
	return RenderMode(d), true
}

const (
	gridSize    = 20
	gridSpacing = 1
)

// Scene turns a geometry document into renderables and picks the ones the
// current mode shows.
type Scene struct {
	cfg  pipeview.RenderConfig
	mode RenderMode

	points   *Points
	lines    *Lines
	grid     *Lines
	pipes    *Pipes
	meshes   *Meshes
	polygons *Polygons

	linePipes *pipeview.PipeCache
	stats     pipeview.Stats
}

func NewScene(g *pipeview.Geometry, cfg pipeview.RenderConfig) *Scene {
	s := &Scene{
		cfg:       cfg,
		linePipes: pipeview.NewPipeCache(cfg.LinePipeRadius, cfg.LinePipeSides),
	}
	if cfg.ShowGrid {
		s.grid = NewLines(pipeview.GridLines(gridSize, gridSpacing))
	}
	s.SetGeometry(g)
	return s
}

// SetGeometry replaces everything drawn from the document. Line pipes are
// rebuilt the next time a mode needs them.
func (s *Scene) SetGeometry(g *pipeview.Geometry) {
	if g == nil {
		g = &pipeview.Geometry{}
	}
	s.stats = g.Stats()

	lines := g.AllLines()
	s.lines = NewLines(lines)
	s.linePipes.SetSource(lines)
	s.points = NewPoints(g.AllPoints())
	s.pipes = NewPipes(pipeview.BuildPipes(g.AllSegments(), s.cfg.PipeSides))

	meshes := make([]*pipeview.Mesh, 0, len(g.Meshes))
	for _, d := range g.Meshes {
		meshes = append(meshes, pipeview.MeshFromData(d, pipeview.DefaultMeshColor))
	}
	s.meshes = NewMeshes(meshes)

	polygons := make([]*pipeview.Mesh, 0, len(g.Polygons))
	for _, p := range g.Polygons {
		polygons = append(polygons, pipeview.MeshFromPolygons(p))
	}
	s.polygons = NewPolygons(polygons)
}

func (s *Scene) Mode() RenderMode { return s.mode }

func (s *Scene) SetMode(m RenderMode) {
	s.mode = m
}

func (s *Scene) Stats() pipeview.Stats { return s.stats }

// Visible returns the renderables of the current mode in draw order:
// surfaces first, then lines, then points.
func (s *Scene) Visible() []Renderable {
	var out []Renderable
	add := func(r Renderable, n int) {
		if n > 0 {
			out = append(out, r)
		}
	}

	switch s.mode {
	case ModeAll:
		add(s.meshes, s.meshes.Len())
		add(s.polygons, s.polygons.Len())
		add(s.pipes, s.pipes.Len())
		lp := s.linePipeRenderable()
		add(lp, lp.Len())
		s.addGrid(add)
		add(s.points, s.points.Len())
	case ModePoints:
		add(s.points, s.points.Len())
	case ModePipes:
		add(s.pipes, s.pipes.Len())
		lp := s.linePipeRenderable()
		add(lp, lp.Len())
		s.addGrid(add)
	case ModeRegularLines:
		s.addGrid(add)
		add(s.lines, s.lines.Len())
	case ModeMeshes:
		add(s.meshes, s.meshes.Len())
	case ModePolygons:
		add(s.polygons, s.polygons.Len())
	}
	return out
}

func (s *Scene) addGrid(add func(Renderable, int)) {
	if s.grid != nil {
		add(s.grid, s.grid.Len())
	}
}

func (s *Scene) linePipeRenderable() *Pipes {
	m := s.linePipes.EnsureBuilt()
	return NewPipes(m.Vertices, m.Indices)
}

func (s *Scene) Draw(dst *ebiten.Image, f *Frame) {
	for _, r := range s.Visible() {
		r.Draw(dst, f)
	}
}
