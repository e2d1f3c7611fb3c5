package pipeview

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MeshVertex is a colored vertex of a triangle mesh.
type MeshVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

type vertexKey [6]float32

// Mesh is an indexed triangle list. Vertices added through AddVertex are
// welded: an identical position and color reuses the existing index.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Indices  []uint32

	vertexIndex map[vertexKey]uint32
}

func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:        name,
		vertexIndex: make(map[vertexKey]uint32),
	}
}

// AddVertex returns the index of v, appending it if it is new.
func (m *Mesh) AddVertex(v MeshVertex) uint32 {
	key := vertexKey{
		v.Position[0], v.Position[1], v.Position[2],
		v.Color[0], v.Color[1], v.Color[2],
	}
	if m.vertexIndex == nil {
		m.vertexIndex = make(map[vertexKey]uint32)
	}
	if idx, found := m.vertexIndex[key]; found {
		return idx
	}

	idx := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, v)
	m.vertexIndex[key] = idx
	return idx
}

// AddTriangle welds the three corners and appends one triangle.
func (m *Mesh) AddTriangle(a, b, c MeshVertex) {
	m.Indices = append(m.Indices, m.AddVertex(a), m.AddVertex(b), m.AddVertex(c))
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c MeshVertex) {
	return m.Vertices[m.Indices[3*i]], m.Vertices[m.Indices[3*i+1]], m.Vertices[m.Indices[3*i+2]]
}

func (m *Mesh) Bounds() (min, max mgl32.Vec3, ok bool) {
	var b boundsBuilder
	for _, v := range m.Vertices {
		b.add(v.Position)
	}
	return b.min, b.max, b.ok
}

// FaceNormal returns the unit normal of a counter-clockwise triangle, or
// the zero vector when the triangle has no area.
func FaceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() < minVectorLength*minVectorLength {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// MeshFromData builds a mesh from a decoded mesh record. Per-face colors
// win over per-vertex colors; vertices without either are grey.
func MeshFromData(d MeshData, fallback mgl32.Vec3) *Mesh {
	m := NewMesh(d.Name)
	color := func(tri int, idx uint32) mgl32.Vec3 {
		if tri < len(d.FaceColors) {
			return d.FaceColors[tri]
		}
		if c := d.Vertices[idx].Color; c != nil {
			return *c
		}
		return fallback
	}

	for tri := 0; tri+2 < len(d.Indices); tri += 3 {
		var corners [3]MeshVertex
		for k := 0; k < 3; k++ {
			idx := d.Indices[tri+k]
			corners[k] = MeshVertex{Position: d.Vertices[idx].Position, Color: color(tri/3, idx)}
		}
		m.AddTriangle(corners[0], corners[1], corners[2])
	}
	return m
}

// MeshFromPolygons merges a polygon group into one welded mesh.
func MeshFromPolygons(g PolygonGroup) *Mesh {
	m := NewMesh(g.Name)
	for _, p := range g.Polygons {
		for tri := 0; tri+2 < len(p.Indices); tri += 3 {
			var corners [3]MeshVertex
			for k := 0; k < 3; k++ {
				v := p.Vertices[p.Indices[tri+k]]
				corners[k] = MeshVertex{Position: v.Position, Color: v.Color}
			}
			m.AddTriangle(corners[0], corners[1], corners[2])
		}
	}
	return m
}
