package pipeview

// PipeCache holds the pipe mesh built from a set of lines. The mesh is
// built on the first EnsureBuilt after the source changes and reused until
// the next change.
type PipeCache struct {
	radius float32
	sides  uint32

	source []Line
	mesh   *PipeMesh
	builds int
}

func NewPipeCache(radius float32, sides uint32) *PipeCache {
	return &PipeCache{radius: radius, sides: sides}
}

// SetSource replaces the lines and drops any built mesh.
func (c *PipeCache) SetSource(lines []Line) {
	c.source = lines
	c.Invalidate()
}

func (c *PipeCache) Invalidate() {
	c.mesh = nil
}

// EnsureBuilt returns the cached mesh, building it if needed.
func (c *PipeCache) EnsureBuilt() PipeMesh {
	if c.mesh == nil {
		m := NewPipeMesh(LinesToSegments(c.source, c.radius), c.sides)
		c.mesh = &m
		c.builds++
	}
	return *c.mesh
}

func (c *PipeCache) Built() bool { return c.mesh != nil }

// Builds reports how many times the mesh has been built.
func (c *PipeCache) Builds() int { return c.builds }
