package pipeview

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPipeCacheEnsureBuiltIsIdempotent(t *testing.T) {
	c := NewPipeCache(0.02, 8)
	c.SetSource(GridLines(2, 1))

	assert.False(t, c.Built())
	first := c.EnsureBuilt()
	second := c.EnsureBuilt()

	assert.True(t, c.Built())
	assert.Equal(t, 1, c.Builds())
	assert.Equal(t, first, second)
	assert.Len(t, first.Vertices, 8*(2*8+2))
}

func TestPipeCacheRebuildsAfterChange(t *testing.T) {
	c := NewPipeCache(0.1, 4)
	c.SetSource([]Line{{End: mgl32.Vec3{1, 0, 0}}})
	assert.Equal(t, 1, c.EnsureBuilt().TriangleCount()/16)

	c.SetSource([]Line{{End: mgl32.Vec3{1, 0, 0}}, {End: mgl32.Vec3{0, 1, 0}}})
	assert.False(t, c.Built())
	assert.Equal(t, 2, c.EnsureBuilt().TriangleCount()/16)

	c.Invalidate()
	c.EnsureBuilt()
	assert.Equal(t, 3, c.Builds())
}

func TestPipeCacheEmptySource(t *testing.T) {
	c := NewPipeCache(0.1, 4)

	m := c.EnsureBuilt()

	assert.True(t, m.Empty())
	assert.True(t, c.Built())
}
