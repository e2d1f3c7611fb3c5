package pipeview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidGeometry is returned when a geometry document decodes but
// describes something that cannot be drawn.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Geometry is the in-memory form of a geometry document. Every section is
// optional.
type Geometry struct {
	Metadata Metadata       `json:"metadata"`
	Meshes   []MeshData     `json:"meshes,omitempty"`
	Points   []PointData    `json:"points,omitempty"`
	Lines    []LineData     `json:"lines,omitempty"`
	Pipes    []PipeData     `json:"pipes,omitempty"`
	Polygons []PolygonGroup `json:"polygons,omitempty"`
}

type Metadata struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	Created     string `json:"created"`
}

type MeshData struct {
	Name       string           `json:"name"`
	Vertices   []MeshVertexData `json:"vertices"`
	Indices    []uint32         `json:"indices"`
	Material   *MaterialData    `json:"material,omitempty"`
	FaceColors []mgl32.Vec3     `json:"face_colors,omitempty"`
}

type MeshVertexData struct {
	Position  mgl32.Vec3  `json:"position"`
	TexCoords mgl32.Vec2  `json:"tex_coords"`
	Normal    mgl32.Vec3  `json:"normal"`
	Tangent   *mgl32.Vec3 `json:"tangent,omitempty"`
	Bitangent *mgl32.Vec3 `json:"bitangent,omitempty"`
	Color     *mgl32.Vec3 `json:"color,omitempty"`
}

// MaterialData is carried through for round trips. Textures are not drawn.
type MaterialData struct {
	Name           string `json:"name"`
	DiffuseTexture string `json:"diffuse_texture"`
	NormalTexture  string `json:"normal_texture"`
}

type PointData struct {
	Name     string        `json:"name"`
	Vertices []PointVertex `json:"vertices"`
}

type PointVertex struct {
	Position mgl32.Vec3 `json:"position"`
	Color    mgl32.Vec3 `json:"color"`
	Size     float32    `json:"size"`
}

// LineData holds line vertices in pairs: 0-1, 2-3 and so on.
type LineData struct {
	Name     string       `json:"name"`
	Vertices []LineVertex `json:"vertices"`
}

type LineVertex struct {
	Position mgl32.Vec3 `json:"position"`
	Color    mgl32.Vec3 `json:"color"`
}

type PipeData struct {
	Name     string        `json:"name"`
	Segments []PipeSegment `json:"segments"`
}

type PipeSegment struct {
	Start  mgl32.Vec3 `json:"start"`
	End    mgl32.Vec3 `json:"end"`
	Color  mgl32.Vec3 `json:"color"`
	Radius float32    `json:"radius"`
}

type PolygonGroup struct {
	Name     string        `json:"name"`
	Polygons []PolygonData `json:"polygons"`
}

// PolygonData is a small triangle list with its own vertex array.
type PolygonData struct {
	Vertices []LineVertex `json:"vertices"`
	Indices  []uint32     `json:"indices"`
}

// Line is one drawable line segment.
type Line struct {
	Start mgl32.Vec3
	End   mgl32.Vec3
	Color mgl32.Vec3
}

// LoadGeometryFile reads and validates a geometry document from disk.
func LoadGeometryFile(path string) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geometry %s: %w", path, err)
	}
	defer f.Close()

	g, err := DecodeGeometry(f)
	if err != nil {
		return nil, fmt.Errorf("load geometry %s: %w", path, err)
	}
	return g, nil
}

// DecodeGeometry decodes a geometry document and validates it.
func DecodeGeometry(r io.Reader) (*Geometry, error) {
	var g Geometry
	dec := json.NewDecoder(r)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks index ranges and list shapes.
func (g *Geometry) Validate() error {
	for _, m := range g.Meshes {
		if err := validateTriangles(m.Indices, len(m.Vertices)); err != nil {
			return fmt.Errorf("%w: mesh %q: %v", ErrInvalidGeometry, m.Name, err)
		}
		if len(m.FaceColors) > 0 && len(m.FaceColors) != len(m.Indices)/3 {
			return fmt.Errorf("%w: mesh %q: %d face colors for %d triangles",
				ErrInvalidGeometry, m.Name, len(m.FaceColors), len(m.Indices)/3)
		}
	}
	for _, l := range g.Lines {
		if len(l.Vertices)%2 != 0 {
			return fmt.Errorf("%w: lines %q: odd vertex count %d", ErrInvalidGeometry, l.Name, len(l.Vertices))
		}
	}
	for _, p := range g.Points {
		for i, v := range p.Vertices {
			if v.Size < 0 {
				return fmt.Errorf("%w: points %q: vertex %d has negative size", ErrInvalidGeometry, p.Name, i)
			}
		}
	}
	for _, pg := range g.Polygons {
		for i, p := range pg.Polygons {
			if err := validateTriangles(p.Indices, len(p.Vertices)); err != nil {
				return fmt.Errorf("%w: polygons %q[%d]: %v", ErrInvalidGeometry, pg.Name, i, err)
			}
		}
	}
	return nil
}

func validateTriangles(indices []uint32, vertexCount int) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= vertexCount {
			return fmt.Errorf("index %d out of range for %d vertices", idx, vertexCount)
		}
	}
	return nil
}

// AllLines flattens every line set into segments.
func (g *Geometry) AllLines() []Line {
	var lines []Line
	for _, set := range g.Lines {
		for i := 0; i+1 < len(set.Vertices); i += 2 {
			a, b := set.Vertices[i], set.Vertices[i+1]
			lines = append(lines, Line{Start: a.Position, End: b.Position, Color: a.Color})
		}
	}
	return lines
}

// AllSegments flattens every pipe set.
func (g *Geometry) AllSegments() []Segment {
	var segments []Segment
	for _, set := range g.Pipes {
		for _, s := range set.Segments {
			segments = append(segments, Segment{Start: s.Start, End: s.End, Color: s.Color, Radius: s.Radius})
		}
	}
	return segments
}

func (g *Geometry) AllPoints() []PointVertex {
	var points []PointVertex
	for _, set := range g.Points {
		points = append(points, set.Vertices...)
	}
	return points
}

// Stats counts the drawable elements of a document.
type Stats struct {
	Meshes    int
	Triangles int
	Points    int
	Lines     int
	Pipes     int
	Polygons  int
}

func (g *Geometry) Stats() Stats {
	var s Stats
	s.Meshes = len(g.Meshes)
	for _, m := range g.Meshes {
		s.Triangles += len(m.Indices) / 3
	}
	for _, p := range g.Points {
		s.Points += len(p.Vertices)
	}
	for _, l := range g.Lines {
		s.Lines += len(l.Vertices) / 2
	}
	for _, p := range g.Pipes {
		s.Pipes += len(p.Segments)
	}
	for _, p := range g.Polygons {
		s.Polygons += len(p.Polygons)
	}
	return s
}

// Bounds returns the axis aligned box around every position in the
// document. ok is false when the document holds no positions.
func (g *Geometry) Bounds() (min, max mgl32.Vec3, ok bool) {
	var b boundsBuilder
	for _, m := range g.Meshes {
		for _, v := range m.Vertices {
			b.add(v.Position)
		}
	}
	for _, p := range g.Points {
		for _, v := range p.Vertices {
			b.add(v.Position)
		}
	}
	for _, l := range g.Lines {
		for _, v := range l.Vertices {
			b.add(v.Position)
		}
	}
	for _, p := range g.Pipes {
		for _, s := range p.Segments {
			b.add(s.Start)
			b.add(s.End)
		}
	}
	for _, pg := range g.Polygons {
		for _, p := range pg.Polygons {
			for _, v := range p.Vertices {
				b.add(v.Position)
			}
		}
	}
	return b.min, b.max, b.ok
}

type boundsBuilder struct {
	min, max mgl32.Vec3
	ok       bool
}

func (b *boundsBuilder) add(p mgl32.Vec3) {
	if !finiteVec(p) {
		return
	}
	if !b.ok {
		b.min, b.max, b.ok = p, p, true
		return
	}
	for i := 0; i < 3; i++ {
		b.min[i] = min(b.min[i], p[i])
		b.max[i] = max(b.max[i], p[i])
	}
}
