package pipeview

import (
	"github.com/go-gl/mathgl/mgl32"
)

// zeroToOneDepth remaps OpenGL clip depth [-w, w] to [0, w].
var zeroToOneDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Projection is a perspective projection with zero-to-one clip depth, so
// the near plane sits at z_clip == 0.
type Projection struct {
	aspect float32
	fovy   float32
	near   float32
	far    float32
}

// NewProjection takes fovy in radians.
func NewProjection(width, height int, fovy, near, far float32) *Projection {
	p := &Projection{fovy: fovy, near: near, far: far}
	p.Resize(width, height)
	return p
}

func (p *Projection) Resize(width, height int) {
	if height <= 0 {
		height = 1
	}
	if width <= 0 {
		width = 1
	}
	p.aspect = float32(width) / float32(height)
}

func (p *Projection) Matrix() mgl32.Mat4 {
	return zeroToOneDepth.Mul4(mgl32.Perspective(p.fovy, p.aspect, p.near, p.far))
}

func (p *Projection) Aspect() float32 { return p.aspect }
func (p *Projection) Near() float32   { return p.near }
func (p *Projection) Far() float32    { return p.far }
