package pipeview

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	GridColor  = mgl32.Vec3{0.7, 0.7, 0.7}
	AxisXColor = mgl32.Vec3{1, 0, 0}
	AxisYColor = mgl32.Vec3{0, 1, 0}
	AxisZColor = mgl32.Vec3{0, 0, 1}

	// DefaultMeshColor is used for mesh vertices without a color.
	DefaultMeshColor = mgl32.Vec3{0.8, 0.8, 0.8}
)

const (
	axisMarkerLength    = 5
	axisMarkerElevation = 0.02
)

// GridLines returns a size x size grid on the z = 0 plane centered on the
// origin, followed by a red X and a green Y axis marker lifted slightly
// above it.
func GridLines(size int, spacing float32) []Line {
	if size <= 0 {
		return nil
	}
	half := float32(size) * spacing / 2
	lines := make([]Line, 0, 2*(size+1)+2)

	for i := 0; i <= size; i++ {
		pos := -half + float32(i)*spacing
		lines = append(lines,
			Line{Start: mgl32.Vec3{pos, -half, 0}, End: mgl32.Vec3{pos, half, 0}, Color: GridColor},
			Line{Start: mgl32.Vec3{-half, pos, 0}, End: mgl32.Vec3{half, pos, 0}, Color: GridColor},
		)
	}

	axes := Axes(axisMarkerLength, mgl32.Vec3{0, 0, axisMarkerElevation},
		[3]mgl32.Vec3{AxisXColor, AxisYColor, AxisZColor})
	return append(lines, axes[:2]...)
}

// Axes returns three lines of the given length along +X, +Y and +Z.
func Axes(size float32, origin mgl32.Vec3, colors [3]mgl32.Vec3) []Line {
	return []Line{
		{Start: origin, End: origin.Add(mgl32.Vec3{size, 0, 0}), Color: colors[0]},
		{Start: origin, End: origin.Add(mgl32.Vec3{0, size, 0}), Color: colors[1]},
		{Start: origin, End: origin.Add(mgl32.Vec3{0, 0, size}), Color: colors[2]},
	}
}

// BoundaryBox returns the 12 edges of an axis aligned box.
func BoundaryBox(min, max, color mgl32.Vec3) []Line {
	corner := func(x, y, z bool) mgl32.Vec3 {
		p := min
		if x {
			p[0] = max[0]
		}
		if y {
			p[1] = max[1]
		}
		if z {
			p[2] = max[2]
		}
		return p
	}

	lines := make([]Line, 0, 12)
	for _, z := range []bool{false, true} {
		lines = append(lines,
			Line{Start: corner(false, false, z), End: corner(true, false, z), Color: color},
			Line{Start: corner(true, false, z), End: corner(true, true, z), Color: color},
			Line{Start: corner(true, true, z), End: corner(false, true, z), Color: color},
			Line{Start: corner(false, true, z), End: corner(false, false, z), Color: color},
		)
	}
	for _, xy := range [][2]bool{{false, false}, {true, false}, {true, true}, {false, true}} {
		lines = append(lines, Line{Start: corner(xy[0], xy[1], false), End: corner(xy[0], xy[1], true), Color: color})
	}
	return lines
}

// ParametricCurve samples fn at n+1 evenly spaced parameters and joins
// consecutive samples.
func ParametricCurve(fn func(t float32) mgl32.Vec3, tMin, tMax float32, n int, color mgl32.Vec3) []Line {
	if n <= 0 || fn == nil {
		return nil
	}
	step := (tMax - tMin) / float32(n)
	lines := make([]Line, 0, n)
	prev := fn(tMin)
	for i := 1; i <= n; i++ {
		next := fn(tMin + float32(i)*step)
		lines = append(lines, Line{Start: prev, End: next, Color: color})
		prev = next
	}
	return lines
}

// Helix winds around the Z axis from z = 0 to z = height. Colors fade
// along the height.
func Helix(radius, height, turns float32, segmentsPerTurn int) []Line {
	total := int(float32(segmentsPerTurn) * turns)
	if total <= 0 {
		return nil
	}
	angleStep := turns * 2 * math32.Pi / float32(total)
	heightStep := height / float32(total)

	point := func(i int) mgl32.Vec3 {
		s, c := math32.Sincos(float32(i) * angleStep)
		return mgl32.Vec3{radius * c, radius * s, float32(i) * heightStep}
	}

	lines := make([]Line, 0, total)
	for i := 0; i < total; i++ {
		h := float32(i) / float32(total)
		lines = append(lines, Line{
			Start: point(i),
			End:   point(i + 1),
			Color: mgl32.Vec3{h, 1 - h, 0.5},
		})
	}
	return lines
}

// DemoGeometry builds the scene shown when no file is given: grid, a helix
// of pipes, a boundary box and a small point cloud.
func DemoGeometry() *Geometry {
	g := &Geometry{
		Metadata: Metadata{Version: "1.0", Description: "built-in demo"},
	}

	g.Lines = append(g.Lines, LinesToData("grid", GridLines(10, 1)))
	g.Lines = append(g.Lines, LinesToData("bounds", BoundaryBox(mgl32.Vec3{-5, -5, 0}, mgl32.Vec3{5, 5, 10}, mgl32.Vec3{0.4, 0.4, 0.9})))

	helix := LinesToSegments(Helix(3, 10, 5, 20), 0.05)
	pipes := PipeData{Name: "helix"}
	for _, s := range helix {
		pipes.Segments = append(pipes.Segments, PipeSegment{Start: s.Start, End: s.End, Color: s.Color, Radius: s.Radius})
	}
	g.Pipes = append(g.Pipes, pipes)

	points := PointData{Name: "samples"}
	curve := ParametricCurve(func(t float32) mgl32.Vec3 {
		s, c := math32.Sincos(t)
		return mgl32.Vec3{c * 4, s * 4, 5 + math32.Sin(3*t)}
	}, 0, 2*math32.Pi, 48, mgl32.Vec3{1, 0.8, 0.2})
	for _, l := range curve {
		points.Vertices = append(points.Vertices, PointVertex{Position: l.Start, Color: l.Color, Size: 0.01})
	}
	g.Points = append(g.Points, points)

	return g
}

// LinesToData packs lines into a line set with one vertex pair per line.
func LinesToData(name string, lines []Line) LineData {
	d := LineData{Name: name, Vertices: make([]LineVertex, 0, 2*len(lines))}
	for _, l := range lines {
		d.Vertices = append(d.Vertices,
			LineVertex{Position: l.Start, Color: l.Color},
			LineVertex{Position: l.End, Color: l.Color},
		)
	}
	return d
}
