package pipeview

import (
	"time"
)

// CameraMover is the set of motion intents a Controller drives.
// *OrbitCamera implements it.
type CameraMover interface {
	Pan(rightAmount, upAmount float32)
	Orbit(deltaYaw, deltaPitch float32)
	Zoom(scrollDelta float32)
	Reset()
}

type PanKey int

const (
	PanLeft PanKey = iota
	PanRight
	PanUp
	PanDown
)

// Controller collects already classified input between frames and turns
// it into at most one pan, one orbit and one zoom per UpdateCamera call.
type Controller struct {
	cfg ControlsConfig

	keys [4]bool

	rotating bool
	panning  bool
	mouseDX  float32
	mouseDY  float32

	scroll float32
	reset  bool
}

func NewController(cfg ControlsConfig) *Controller {
	return &Controller{cfg: cfg}
}

// SetKey records whether a pan key is held.
func (c *Controller) SetKey(k PanKey, pressed bool) {
	if k < PanLeft || k > PanDown {
		return
	}
	c.keys[k] = pressed
}

// SetRotating marks the rotate gesture button as held or released.
// Releasing drops any pending motion.
func (c *Controller) SetRotating(held bool) {
	c.rotating = held
	if !held && !c.panning {
		c.mouseDX, c.mouseDY = 0, 0
	}
}

func (c *Controller) SetPanning(held bool) {
	c.panning = held
	if !held && !c.rotating {
		c.mouseDX, c.mouseDY = 0, 0
	}
}

// MouseMotion accumulates cursor movement in pixels. Motion while no
// gesture button is held is ignored.
func (c *Controller) MouseMotion(dx, dy float32) {
	if !c.rotating && !c.panning {
		return
	}
	c.mouseDX += dx
	c.mouseDY += dy
}

// ScrollLines records a wheel movement in lines. Scrolling up zooms in.
func (c *Controller) ScrollLines(dy float32) {
	c.scroll += -dy
}

func (c *Controller) RequestReset() {
	c.reset = true
}

// UpdateCamera applies the pending input to cam and clears the one-shot
// parts (mouse motion, scroll, reset).
func (c *Controller) UpdateCamera(cam CameraMover, dt time.Duration) {
	secs := float32(dt.Seconds())

	if c.reset {
		cam.Reset()
		c.reset = false
	}

	right := c.axis(PanRight, PanLeft)
	up := c.axis(PanUp, PanDown)
	if right != 0 || up != 0 {
		cam.Pan(right*c.cfg.Speed*secs, up*c.cfg.Speed*secs)
	}

	if c.panning && (c.mouseDX != 0 || c.mouseDY != 0) {
		speed := c.cfg.Speed * c.cfg.Sensitivity * c.cfg.MousePanFactor
		cam.Pan(-c.mouseDX*speed, c.mouseDY*speed)
	} else if c.rotating && (c.mouseDX != 0 || c.mouseDY != 0) {
		cam.Orbit(-c.mouseDX*c.cfg.Sensitivity*secs, -c.mouseDY*c.cfg.Sensitivity*secs)
	}
	c.mouseDX, c.mouseDY = 0, 0

	if c.scroll != 0 {
		cam.Zoom(c.scroll)
		c.scroll = 0
	}
}

func (c *Controller) axis(pos, neg PanKey) float32 {
	var v float32
	if c.keys[pos] {
		v++
	}
	if c.keys[neg] {
		v--
	}
	return v
}
