package viewer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/smasonuk/pipeview"
)

// Frame is everything a Renderable needs to draw one frame.
type Frame struct {
	View     mgl32.Mat4
	Proj     mgl32.Mat4
	ViewProj mgl32.Mat4
	Width    int
	Height   int
	Render   pipeview.RenderConfig

	batch triangleBatch
}

func NewFrame(view, proj mgl32.Mat4, width, height int, cfg pipeview.RenderConfig) *Frame {
	return &Frame{
		View:     view,
		Proj:     proj,
		ViewProj: proj.Mul4(view),
		Width:    width,
		Height:   height,
		Render:   cfg,
	}
}

// Update replaces the matrices and viewport, keeping the scratch buffers.
func (f *Frame) Update(view, proj mgl32.Mat4, width, height int) {
	f.View = view
	f.Proj = proj
	f.ViewProj = proj.Mul4(view)
	f.Width = width
	f.Height = height
}

// PixelSize converts a world size at clip depth w to pixels, never below
// Render.MinPointPixels.
func (f *Frame) PixelSize(size, w float32) float32 {
	if w <= 0 {
		return f.Render.MinPointPixels
	}
	px := size * f.Proj.At(1, 1) * float32(f.Height) / 2 / w
	return max(px, f.Render.MinPointPixels)
}

func (f *Frame) toView(p mgl32.Vec3) mgl32.Vec3 {
	return f.View.Mul4x1(p.Vec4(1)).Vec3()
}
