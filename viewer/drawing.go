package viewer

import (
	"cmp"
	"image"
	"image/color"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/smasonuk/pipeview"
)

// maxBatchTriangles keeps every DrawTriangles call within uint16 indices.
const maxBatchTriangles = 65535 / 3

var (
	whiteOnce sync.Once
	whiteSub  *ebiten.Image
)

// whiteSubImage is the solid source texture for colored triangles. The
// one pixel border avoids bleeding at the edges.
func whiteSubImage() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSub = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSub
}

type screenVertex struct {
	x, y  float32
	color mgl32.Vec3
}

type screenTriangle struct {
	v     [3]ebiten.Vertex
	depth float32
}

// triangleBatch collects clipped, culled and shaded triangles and draws
// them back to front.
type triangleBatch struct {
	tris []screenTriangle

	clipped  []pipeview.ClipVertex
	screen   []screenVertex
	vertices []ebiten.Vertex
	indices  []uint16
}

func (b *triangleBatch) add(f *Frame, p, c [3]mgl32.Vec3) {
	var poly [3]pipeview.ClipVertex
	for k := range p {
		poly[k] = pipeview.ToClip(f.ViewProj, p[k], c[k])
	}
	b.clipped = pipeview.ClipNear(b.clipped, poly[:])
	if len(b.clipped) < 3 {
		return
	}

	b.screen = b.screen[:0]
	var depth float32
	for _, v := range b.clipped {
		x, y, z := pipeview.ToScreen(v.Pos, f.Width, f.Height)
		b.screen = append(b.screen, screenVertex{x: x, y: y, color: v.Color})
		depth += z
	}
	depth /= float32(len(b.clipped))

	var area float32
	s0 := b.screen[0]
	for i := 1; i+1 < len(b.screen); i++ {
		s1, s2 := b.screen[i], b.screen[i+1]
		area += pipeview.SignedArea2(s0.x, s0.y, s1.x, s1.y, s2.x, s2.y)
	}
	if area == 0 || (f.Render.CullBackFaces && area > 0) {
		return
	}

	var (
		center mgl32.Vec3
		normal mgl32.Vec3
	)
	if f.Render.Shading {
		v0, v1, v2 := f.toView(p[0]), f.toView(p[1]), f.toView(p[2])
		center = v0.Add(v1).Add(v2).Mul(1.0 / 3)
		normal = pipeview.FaceNormal(v0, v1, v2)
	}

	vertex := func(s screenVertex) ebiten.Vertex {
		clr := pipeview.RGBA(s.color, 255)
		if f.Render.Shading {
			clr = pipeview.Shade(clr, center, normal)
		}
		return ebiten.Vertex{
			DstX:   s.x,
			DstY:   s.y,
			SrcX:   1,
			SrcY:   1,
			ColorR: float32(clr.R) / 255,
			ColorG: float32(clr.G) / 255,
			ColorB: float32(clr.B) / 255,
			ColorA: 1,
		}
	}

	first := vertex(s0)
	for i := 1; i+1 < len(b.screen); i++ {
		b.tris = append(b.tris, screenTriangle{
			v:     [3]ebiten.Vertex{first, vertex(b.screen[i]), vertex(b.screen[i+1])},
			depth: depth,
		})
	}
}

// sortBackToFront orders triangles farthest first. Depth is zero-to-one.
func (b *triangleBatch) sortBackToFront() {
	slices.SortStableFunc(b.tris, func(a, c screenTriangle) int {
		return cmp.Compare(c.depth, a.depth)
	})
}

func (b *triangleBatch) flush(dst *ebiten.Image, outlines bool, lineWidth float32) {
	if len(b.tris) == 0 {
		return
	}
	b.sortBackToFront()

	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	for start := 0; start < len(b.tris); start += maxBatchTriangles {
		end := min(start+maxBatchTriangles, len(b.tris))
		b.vertices = b.vertices[:0]
		b.indices = b.indices[:0]
		for _, t := range b.tris[start:end] {
			base := uint16(len(b.vertices))
			b.vertices = append(b.vertices, t.v[0], t.v[1], t.v[2])
			b.indices = append(b.indices, base, base+1, base+2)
		}
		dst.DrawTriangles(b.vertices, b.indices, whiteSubImage(), op)
	}

	if outlines {
		edge := color.RGBA{A: 255}
		for _, t := range b.tris {
			drawTriangleOutline(dst, t.v, lineWidth, edge)
		}
	}
	b.tris = b.tris[:0]
}

// drawTriangleOutline strokes the closed outline of a screen triangle.
func drawTriangleOutline(dst *ebiten.Image, v [3]ebiten.Vertex, strokeWidth float32, clr color.RGBA) {
	var path vector.Path
	path.MoveTo(v[0].DstX, v[0].DstY)
	path.LineTo(v[1].DstX, v[1].DstY)
	path.LineTo(v[2].DstX, v[2].DstY)
	path.Close()

	vertices, indices := path.AppendVerticesAndIndicesForStroke(nil, nil, &vector.StrokeOptions{Width: strokeWidth})

	cr := float32(clr.R) / 255
	cg := float32(clr.G) / 255
	cb := float32(clr.B) / 255
	ca := float32(clr.A) / 255
	for i := range vertices {
		vertices[i].SrcX = 1
		vertices[i].SrcY = 1
		vertices[i].ColorR = cr
		vertices[i].ColorG = cg
		vertices[i].ColorB = cb
		vertices[i].ColorA = ca
	}

	dst.DrawTriangles(vertices, indices, whiteSubImage(), &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// drawLine draws a clipped world space segment.
func drawLine(dst *ebiten.Image, f *Frame, a, b mgl32.Vec3, clr mgl32.Vec3) {
	ca, cb, ok := pipeview.ClipSegmentNear(
		pipeview.ToClip(f.ViewProj, a, clr),
		pipeview.ToClip(f.ViewProj, b, clr),
	)
	if !ok {
		return
	}
	x0, y0, _ := pipeview.ToScreen(ca.Pos, f.Width, f.Height)
	x1, y1, _ := pipeview.ToScreen(cb.Pos, f.Width, f.Height)
	vector.StrokeLine(dst, x0, y0, x1, y1, f.Render.LineWidth, pipeview.RGBA(clr, 255), true)
}
