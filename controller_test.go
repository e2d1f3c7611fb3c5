package pipeview

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type recordedMove struct {
	kind string
	a, b float32
}

type recordingCamera struct {
	moves []recordedMove
}

func (r *recordingCamera) Pan(right, up float32) {
	r.moves = append(r.moves, recordedMove{"pan", right, up})
}

func (r *recordingCamera) Orbit(yaw, pitch float32) {
	r.moves = append(r.moves, recordedMove{"orbit", yaw, pitch})
}

func (r *recordingCamera) Zoom(delta float32) {
	r.moves = append(r.moves, recordedMove{"zoom", delta, 0})
}

func (r *recordingCamera) Reset() {
	r.moves = append(r.moves, recordedMove{kind: "reset"})
}

func testControls() ControlsConfig {
	return DefaultConfig().Controls
}

func TestControllerKeyboardPan(t *testing.T) {
	c := NewController(testControls())
	cam := &recordingCamera{}

	c.SetKey(PanRight, true)
	c.SetKey(PanUp, true)
	c.SetKey(PanDown, true)
	c.UpdateCamera(cam, 500*time.Millisecond)

	// speed 4 for half a second, up and down cancel
	assert.Equal(t, []recordedMove{{"pan", 2, 0}}, cam.moves)

	c.SetKey(PanRight, false)
	c.SetKey(PanUp, false)
	c.SetKey(PanDown, false)
	c.UpdateCamera(cam, 500*time.Millisecond)
	assert.Len(t, cam.moves, 1)
}

func TestControllerMouseGestures(t *testing.T) {
	testCases := []struct {
		name     string
		rotating bool
		panning  bool
		dx, dy   float32
		dt       time.Duration
		want     []recordedMove
	}{
		{
			name:     "Rotate drag orbits",
			rotating: true,
			dx:       10, dy: -5,
			dt:   time.Second,
			want: []recordedMove{{"orbit", -4, 2}},
		},
		{
			name:    "Pan drag pans",
			panning: true,
			dx:      10, dy: 5,
			dt: time.Second,
			// speed 4 * sensitivity 0.4 * factor 0.1
			want: []recordedMove{{"pan", -1.6, 0.8}},
		},
		{
			name: "Motion without a button is ignored",
			dx:   10, dy: 10,
			dt:   time.Second,
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController(testControls())
			cam := &recordingCamera{}

			c.SetRotating(tc.rotating)
			c.SetPanning(tc.panning)
			c.MouseMotion(tc.dx, tc.dy)
			c.UpdateCamera(cam, tc.dt)

			assert.Equal(t, len(tc.want), len(cam.moves))
			for i := range tc.want {
				assert.Equal(t, tc.want[i].kind, cam.moves[i].kind)
				assert.InDelta(t, tc.want[i].a, cam.moves[i].a, 1e-5)
				assert.InDelta(t, tc.want[i].b, cam.moves[i].b, 1e-5)
			}

			// deltas are consumed
			c.UpdateCamera(cam, tc.dt)
			assert.Equal(t, len(tc.want), len(cam.moves))
		})
	}
}

func TestControllerReleaseDropsMotion(t *testing.T) {
	c := NewController(testControls())
	cam := &recordingCamera{}

	c.SetRotating(true)
	c.MouseMotion(30, 30)
	c.SetRotating(false)
	c.UpdateCamera(cam, time.Second)

	assert.Empty(t, cam.moves)
}

func TestControllerScrollAndReset(t *testing.T) {
	c := NewController(testControls())
	cam := &recordingCamera{}

	c.ScrollLines(1)
	c.ScrollLines(1)
	c.ScrollLines(-0.5)
	c.RequestReset()
	c.UpdateCamera(cam, 16*time.Millisecond)

	assert.Len(t, cam.moves, 2)
	assert.Equal(t, "reset", cam.moves[0].kind)
	assert.Equal(t, "zoom", cam.moves[1].kind)
	assert.InDelta(t, -1.5, cam.moves[1].a, 1e-5)

	c.UpdateCamera(cam, 16*time.Millisecond)
	assert.Len(t, cam.moves, 2)
}

func TestControllerDrivesOrbitCamera(t *testing.T) {
	c := NewController(testControls())
	cam := NewOrbitCamera(mgl32.Vec3{0, -10, 0}, mgl32.Vec3{}, DefaultCameraConfig())
	start := cam.Position()

	c.SetRotating(true)
	c.MouseMotion(50, 0)
	c.UpdateCamera(cam, 100*time.Millisecond)
	assert.False(t, vecNear(start, cam.Position(), 1e-3))
	assert.InDelta(t, 10, cam.Distance(), 1e-4)

	c.ScrollLines(-2)
	c.UpdateCamera(cam, 100*time.Millisecond)
	assert.InDelta(t, 11, cam.Distance(), 1e-4)

	c.RequestReset()
	c.UpdateCamera(cam, 100*time.Millisecond)
	assertVecNear(t, start, cam.Position())
}
