package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/smasonuk/pipeview"
)

var panKeys = []struct {
	dir  pipeview.PanKey
	keys []ebiten.Key
}{
	{pipeview.PanLeft, []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft}},
	{pipeview.PanRight, []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}},
	{pipeview.PanUp, []ebiten.Key{ebiten.KeyW, ebiten.KeyArrowUp}},
	{pipeview.PanDown, []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown}},
}

var modeKeys = []ebiten.Key{
	ebiten.KeyDigit0,
	ebiten.KeyDigit1,
	ebiten.KeyDigit2,
	ebiten.KeyDigit3,
	ebiten.KeyDigit4,
	ebiten.KeyDigit5,
}

// inputReader classifies ebiten input and feeds it to a Controller.
type inputReader struct {
	lastX, lastY int
}

// read forwards this tick's input. It reports a render mode when a digit
// key was pressed.
func (r *inputReader) read(c *pipeview.Controller) (RenderMode, bool) {
	for _, pk := range panKeys {
		held := false
		for _, k := range pk.keys {
			if ebiten.IsKeyPressed(k) {
				held = true
				break
			}
		}
		c.SetKey(pk.dir, held)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		r.lastX, r.lastY = ebiten.CursorPosition()
	}
	c.SetRotating(ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight))
	c.SetPanning(ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle))

	x, y := ebiten.CursorPosition()
	c.MouseMotion(float32(x-r.lastX), float32(y-r.lastY))
	r.lastX, r.lastY = x, y

	if _, wy := ebiten.Wheel(); wy != 0 {
		c.ScrollLines(float32(wy))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		c.RequestReset()
	}

	for d, k := range modeKeys {
		if inpututil.IsKeyJustPressed(k) {
			return ModeForDigit(d)
		}
	}
	return 0, false
}
