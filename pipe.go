package pipeview

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minSides         = 3
	minSegmentLength = 1e-6
)

// Segment is one straight pipe from Start to End.
type Segment struct {
	Start  mgl32.Vec3
	End    mgl32.Vec3
	Color  mgl32.Vec3
	Radius float32
}

// PipeVertex is a flat colored vertex. Pipes carry no normals.
type PipeVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// PipeMesh is the output of BuildPipes. It is not modified after it is
// returned and may be shared between frames.
type PipeMesh struct {
	Vertices []PipeVertex
	Indices  []uint32
}

func (m PipeMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m PipeMesh) Empty() bool {
	return len(m.Indices) == 0
}

// NewPipeMesh builds a closed cylinder for every segment.
func NewPipeMesh(segments []Segment, sides uint32) PipeMesh {
	v, i := BuildPipes(segments, sides)
	return PipeMesh{Vertices: v, Indices: i}
}

// BuildPipes turns segments into closed cylinders, each with its own caps.
// Every usable segment adds 2*sides+2 vertices and 4*sides triangles wound
// counter-clockwise as seen from outside. Zero-length, zero-radius and
// non-finite segments are skipped.
func BuildPipes(segments []Segment, sides uint32) ([]PipeVertex, []uint32) {
	if sides < minSides {
		sides = minSides
	}

	n := 0
	for _, s := range segments {
		if usableSegment(s) {
			n++
		}
	}
	if n == 0 {
		return []PipeVertex{}, []uint32{}
	}

	perSegment := int(2*sides + 2)
	vertices := make([]PipeVertex, 0, n*perSegment)
	indices := make([]uint32, 0, n*int(12*sides))

	ring := unitCircle(sides)

	for _, s := range segments {
		if !usableSegment(s) {
			continue
		}
		base := uint32(len(vertices))
		vertices = appendCylinderVertices(vertices, s, ring)
		indices = appendCylinderIndices(indices, base, sides)
	}

	return vertices, indices
}

func usableSegment(s Segment) bool {
	if !finiteVec(s.Start) || !finiteVec(s.End) || !isFinite(s.Radius) {
		return false
	}
	if s.Radius <= 0 {
		return false
	}
	return s.End.Sub(s.Start).Len() >= minSegmentLength
}

// pipeFrame returns two unit vectors that together with axis form a
// right-handed orthonormal basis.
func pipeFrame(axis mgl32.Vec3) (perp, binormal mgl32.Vec3) {
	candidate := mgl32.Vec3{0, 0, 1}
	if math32.Abs(axis.Z()) >= 0.9 {
		candidate = mgl32.Vec3{1, 0, 0}
	}
	perp = candidate.Cross(axis).Normalize()
	binormal = axis.Cross(perp)
	return perp, binormal
}

type circlePoint struct{ cos, sin float32 }

func unitCircle(sides uint32) []circlePoint {
	ring := make([]circlePoint, sides)
	for i := range ring {
		theta := 2 * math32.Pi * float32(i) / float32(sides)
		s, c := math32.Sincos(theta)
		ring[i] = circlePoint{cos: c, sin: s}
	}
	return ring
}

// appendCylinderVertices lays out bottom center, bottom rim, top center and
// top rim in that order.
func appendCylinderVertices(dst []PipeVertex, s Segment, ring []circlePoint) []PipeVertex {
	axis := s.End.Sub(s.Start).Normalize()
	perp, binormal := pipeFrame(axis)

	for _, center := range [2]mgl32.Vec3{s.Start, s.End} {
		dst = append(dst, PipeVertex{Position: center, Color: s.Color})
		for _, p := range ring {
			offset := perp.Mul(p.cos).Add(binormal.Mul(p.sin)).Mul(s.Radius)
			dst = append(dst, PipeVertex{Position: center.Add(offset), Color: s.Color})
		}
	}
	return dst
}

func appendCylinderIndices(dst []uint32, base, sides uint32) []uint32 {
	bottomCenter := base
	topCenter := base + sides + 1
	bottom := func(i uint32) uint32 { return base + 1 + i%sides }
	top := func(i uint32) uint32 { return topCenter + 1 + i%sides }

	for i := uint32(0); i < sides; i++ {
		// bottom cap faces -axis
		dst = append(dst, bottomCenter, bottom(i+1), bottom(i))
		// top cap faces +axis
		dst = append(dst, topCenter, top(i), top(i+1))
		// side wall
		dst = append(dst,
			bottom(i), bottom(i+1), top(i+1),
			bottom(i), top(i+1), top(i),
		)
	}
	return dst
}

// LinesToSegments converts line records into pipe segments of one radius,
// keeping each line's start color.
func LinesToSegments(lines []Line, radius float32) []Segment {
	segments := make([]Segment, 0, len(lines))
	for _, l := range lines {
		segments = append(segments, Segment{
			Start:  l.Start,
			End:    l.End,
			Color:  l.Color,
			Radius: radius,
		})
	}
	return segments
}

func finiteVec(v mgl32.Vec3) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}
