package viewer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/smasonuk/pipeview"
)

type Kind int

const (
	KindPoints Kind = iota
	KindLines
	KindPipes
	KindPolygons
	KindMeshes
)

func (k Kind) String() string {
	switch k {
	case KindPoints:
		return "points"
	case KindLines:
		return "lines"
	case KindPipes:
		return "pipes"
	case KindPolygons:
		return "polygons"
	case KindMeshes:
		return "meshes"
	}
	return "unknown"
}

// Renderable is one drawable primitive set.
type Renderable interface {
	Kind() Kind
	Draw(dst *ebiten.Image, f *Frame)
}

// Points draws each point as a screen aligned square.
type Points struct {
	points []pipeview.PointVertex
}

func NewPoints(points []pipeview.PointVertex) *Points {
	return &Points{points: points}
}

func (p *Points) Kind() Kind { return KindPoints }
func (p *Points) Len() int   { return len(p.points) }

func (p *Points) Draw(dst *ebiten.Image, f *Frame) {
	for _, pt := range p.points {
		v := pipeview.ToClip(f.ViewProj, pt.Position, pt.Color)
		if v.Pos.Z() < 0 {
			continue
		}
		size := pt.Size
		if size <= 0 {
			size = f.Render.PointSize
		}
		x, y, _ := pipeview.ToScreen(v.Pos, f.Width, f.Height)
		px := f.PixelSize(size, v.Pos.W())
		vector.DrawFilledRect(dst, x-px/2, y-px/2, px, px, pipeview.RGBA(pt.Color, 255), false)
	}
}

type Lines struct {
	lines []pipeview.Line
}

func NewLines(lines []pipeview.Line) *Lines {
	return &Lines{lines: lines}
}

func (l *Lines) Kind() Kind { return KindLines }
func (l *Lines) Len() int   { return len(l.lines) }

func (l *Lines) Draw(dst *ebiten.Image, f *Frame) {
	for _, line := range l.lines {
		drawLine(dst, f, line.Start, line.End, line.Color)
	}
}

// Pipes draws the output of the pipe builder.
type Pipes struct {
	mesh pipeview.PipeMesh
}

func NewPipes(vertices []pipeview.PipeVertex, indices []uint32) *Pipes {
	return &Pipes{mesh: pipeview.PipeMesh{Vertices: vertices, Indices: indices}}
}

func (p *Pipes) Kind() Kind { return KindPipes }
func (p *Pipes) Len() int   { return p.mesh.TriangleCount() }

func (p *Pipes) Draw(dst *ebiten.Image, f *Frame) {
	vs := p.mesh.Vertices
	for i := 0; i+2 < len(p.mesh.Indices); i += 3 {
		a, b, c := vs[p.mesh.Indices[i]], vs[p.mesh.Indices[i+1]], vs[p.mesh.Indices[i+2]]
		f.batch.add(f,
			[3]mgl32.Vec3{a.Position, b.Position, c.Position},
			[3]mgl32.Vec3{a.Color, b.Color, c.Color},
		)
	}
	f.batch.flush(dst, f.Render.Outlines, f.Render.LineWidth)
}

// Meshes draws welded triangle meshes.
type Meshes struct {
	meshes []*pipeview.Mesh
}

func NewMeshes(meshes []*pipeview.Mesh) *Meshes {
	return &Meshes{meshes: meshes}
}

func (m *Meshes) Kind() Kind { return KindMeshes }

func (m *Meshes) Len() int {
	n := 0
	for _, mesh := range m.meshes {
		n += mesh.TriangleCount()
	}
	return n
}

func (m *Meshes) Draw(dst *ebiten.Image, f *Frame) {
	for _, mesh := range m.meshes {
		for i := 0; i < mesh.TriangleCount(); i++ {
			a, b, c := mesh.Triangle(i)
			f.batch.add(f,
				[3]mgl32.Vec3{a.Position, b.Position, c.Position},
				[3]mgl32.Vec3{a.Color, b.Color, c.Color},
			)
		}
	}
	f.batch.flush(dst, f.Render.Outlines, f.Render.LineWidth)
}

// Polygons are drawn like meshes.
type Polygons struct {
	Meshes
}

func NewPolygons(meshes []*pipeview.Mesh) *Polygons {
	return &Polygons{Meshes{meshes: meshes}}
}

func (p *Polygons) Kind() Kind { return KindPolygons }
