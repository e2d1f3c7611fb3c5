package pipeview

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ClipVertex is a vertex in homogeneous clip space.
type ClipVertex struct {
	Pos   mgl32.Vec4
	Color mgl32.Vec3
}

// ToClip transforms a world position by a view-projection matrix.
func ToClip(viewProj mgl32.Mat4, p mgl32.Vec3, color mgl32.Vec3) ClipVertex {
	return ClipVertex{Pos: viewProj.Mul4x1(p.Vec4(1)), Color: color}
}

// ClipNear clips a convex polygon against the near plane z_clip >= 0
// (Sutherland-Hodgman). Points on the plane are kept. The result is empty
// when the polygon is entirely behind the plane. dst is reused.
func ClipNear(dst, poly []ClipVertex) []ClipVertex {
	dst = dst[:0]
	if len(poly) == 0 {
		return dst
	}

	prev := poly[len(poly)-1]
	for _, curr := range poly {
		currIn := curr.Pos.Z() >= 0
		prevIn := prev.Pos.Z() >= 0

		if currIn {
			if !prevIn {
				dst = append(dst, intersectNear(prev, curr))
			}
			dst = append(dst, curr)
		} else if prevIn {
			dst = append(dst, intersectNear(prev, curr))
		}
		prev = curr
	}
	return dst
}

func intersectNear(a, b ClipVertex) ClipVertex {
	t := a.Pos.Z() / (a.Pos.Z() - b.Pos.Z())
	return ClipVertex{
		Pos:   a.Pos.Add(b.Pos.Sub(a.Pos).Mul(t)),
		Color: a.Color.Add(b.Color.Sub(a.Color).Mul(t)),
	}
}

// ClipSegmentNear clips a line segment against z_clip >= 0.
func ClipSegmentNear(a, b ClipVertex) (ClipVertex, ClipVertex, bool) {
	aIn, bIn := a.Pos.Z() >= 0, b.Pos.Z() >= 0
	switch {
	case aIn && bIn:
		return a, b, true
	case !aIn && !bIn:
		return a, b, false
	case aIn:
		return a, intersectNear(a, b), true
	default:
		return intersectNear(a, b), b, true
	}
}

// ToScreen performs the perspective divide and maps NDC to pixel
// coordinates with y pointing down.
func ToScreen(v mgl32.Vec4, width, height int) (x, y, depth float32) {
	w := v.W()
	if w == 0 {
		w = minVectorLength
	}
	nx, ny, nz := v.X()/w, v.Y()/w, v.Z()/w
	x = (nx + 1) / 2 * float32(width)
	y = (1 - ny) / 2 * float32(height)
	return x, y, nz
}

// SignedArea2 is twice the signed area of a screen-space triangle. With
// y pointing down a counter-clockwise triangle (as seen by the viewer) has a
// negative value.
func SignedArea2(x0, y0, x1, y1, x2, y2 float32) float32 {
	return (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
}
