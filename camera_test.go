package pipeview

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vecTolerance = 1e-4

func vecNear(a, b mgl32.Vec3, tolerance float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > tolerance {
			return false
		}
	}
	return true
}

func assertVecNear(t *testing.T, expected, actual mgl32.Vec3) {
	t.Helper()
	assert.True(t, vecNear(expected, actual, vecTolerance), "expected %v, got %v", expected, actual)
}

func assertFiniteVec(t *testing.T, v mgl32.Vec3, name string) {
	t.Helper()
	assert.True(t, finiteVec(v), "%s is not finite: %v", name, v)
}

func newTestCamera(eye mgl32.Vec3) *OrbitCamera {
	return NewOrbitCamera(eye, mgl32.Vec3{}, DefaultCameraConfig())
}

func TestNewOrbitCamera(t *testing.T) {
	testCases := []struct {
		name         string
		eye          mgl32.Vec3
		target       mgl32.Vec3
		wantDistance float32
		wantPosition mgl32.Vec3
	}{
		{
			name:         "Level view",
			eye:          mgl32.Vec3{0, -10, 0},
			wantDistance: 10,
			wantPosition: mgl32.Vec3{0, -10, 0},
		},
		{
			name:         "Oblique view with offset target",
			eye:          mgl32.Vec3{4, -3, 7},
			target:       mgl32.Vec3{1, 1, 2},
			wantDistance: mgl32.Vec3{3, -4, 5}.Len(),
			wantPosition: mgl32.Vec3{4, -3, 7},
		},
		{
			name:         "Distance clamped to max zoom",
			eye:          mgl32.Vec3{0, -1000, 0},
			wantDistance: 100,
			wantPosition: mgl32.Vec3{0, -100, 0},
		},
		{
			name:         "Distance clamped to min zoom",
			eye:          mgl32.Vec3{0, -0.1, 0},
			wantDistance: 0.5,
			wantPosition: mgl32.Vec3{0, -0.5, 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewOrbitCamera(tc.eye, tc.target, DefaultCameraConfig())

			assert.InDelta(t, tc.wantDistance, c.Distance(), vecTolerance)
			assertVecNear(t, tc.wantPosition, c.Position())
			assertVecNear(t, tc.target, c.Target())
			assertVecNear(t, tc.target.Sub(tc.eye).Normalize(), c.Forward())
			assert.InDelta(t, 1, c.Orientation().Len(), 1e-5)
			assert.InDelta(t, 0, c.Right().Dot(c.Forward()), vecTolerance)
			assert.InDelta(t, 0, c.Up().Dot(c.Forward()), vecTolerance)
		})
	}
}

func TestNewOrbitCameraLevelBasis(t *testing.T) {
	c := newTestCamera(mgl32.Vec3{0, -10, 0})

	assertVecNear(t, mgl32.Vec3{1, 0, 0}, c.Right())
	assertVecNear(t, mgl32.Vec3{0, 0, 1}, c.Up())
	assertVecNear(t, mgl32.Vec3{0, 1, 0}, c.Forward())
}

func TestNewOrbitCameraDegenerate(t *testing.T) {
	testCases := []struct {
		name string
		eye  mgl32.Vec3
	}{
		{name: "Looking straight down", eye: mgl32.Vec3{0, 0, 10}},
		{name: "Looking straight up", eye: mgl32.Vec3{0, 0, -10}},
		{name: "Within pole cone", eye: mgl32.Vec3{0.05, 0, 10}},
		{name: "Eye on target", eye: mgl32.Vec3{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCamera(tc.eye)

			assertFiniteVec(t, c.Position(), "position")
			assertFiniteVec(t, c.Up(), "up")
			assertFiniteVec(t, c.Right(), "right")
			assert.InDelta(t, 1, c.Right().Len(), vecTolerance)
			assert.InDelta(t, 1, c.Up().Len(), vecTolerance)
			assert.InDelta(t, 0, c.Right().Dot(c.Forward()), vecTolerance)
			assert.GreaterOrEqual(t, c.Distance(), float32(0.5))

			view := c.ViewMatrix()
			for i := 0; i < 16; i++ {
				require.True(t, isFinite(view[i]), "view matrix element %d is %v", i, view[i])
			}
		})
	}
}

func TestStableRightPoleCone(t *testing.T) {
	assert.InDelta(t, 0.990268, constructionPoleThreshold, 1e-6)

	up := mgl32.Vec3{0, 0, 1}
	tilted := func(deg float32) mgl32.Vec3 {
		s, c := math32.Sincos(mgl32.DegToRad(deg))
		return mgl32.Vec3{s, 0, c}
	}

	// just outside the 8 degree cone the world up is still used
	assertVecNear(t, mgl32.Vec3{0, -1, 0}, stableRight(tilted(8.05), up))

	inside := stableRight(tilted(7.9), up)
	assert.InDelta(t, 1, inside.Len(), vecTolerance)
	assert.InDelta(t, 0, inside.Dot(tilted(7.9)), vecTolerance)
	assert.Greater(t, inside.Sub(mgl32.Vec3{0, -1, 0}).Len(), float32(0.5))
}

func TestOrbitKeepsOrientationNormalized(t *testing.T) {
	c := newTestCamera(mgl32.Vec3{3, -8, 4})
	deltas := [][2]float32{
		{0.05, 0.02}, {-0.3, 0.9}, {10, -10}, {0.001, 0.0001},
		{0.1, 0.1}, {-0.07, -0.1}, {0, 0.1}, {0.1, 0},
	}

	for round := 0; round < 50; round++ {
		for _, d := range deltas {
			c.Orbit(d[0], d[1])
			require.InDelta(t, 1, c.Orientation().Len(), 1e-5, "round %d delta %v", round, d)
		}
	}
	assert.InDelta(t, mgl32.Vec3{3, -8, 4}.Len(), c.Distance(), 1e-3)
	assert.InDelta(t, c.Distance(), c.Position().Sub(c.Target()).Len(), 1e-3)
}

func TestOrbitClampsLargeDeltas(t *testing.T) {
	a := newTestCamera(mgl32.Vec3{0, -10, 0})
	b := newTestCamera(mgl32.Vec3{0, -10, 0})

	a.Orbit(5, -5)
	b.Orbit(0.1, -0.1)

	assertVecNear(t, b.Position(), a.Position())
}

func TestOrbitIgnoresNonFinite(t *testing.T) {
	c := newTestCamera(mgl32.Vec3{0, -10, 0})
	before := c.Position()

	c.Orbit(math32.NaN(), 0)
	c.Orbit(0, math32.Inf(1))

	assert.Equal(t, before, c.Position())
}

func TestOrbitYawTurnsAroundWorldUp(t *testing.T) {
	c := newTestCamera(mgl32.Vec3{0, -10, 0})
	for i := 0; i < 10; i++ {
		c.Orbit(mgl32.DegToRad(4.5), 0)
	}

	// 45 degrees counter-clockwise about +Z
	s := math32.Sqrt(2) / 2 * 10
	assertVecNear(t, mgl32.Vec3{s, -s, 0}, c.Position())
	assertVecNear(t, mgl32.Vec3{0, 0, 1}, c.Up())
}

func TestUpdatePositionCrossesPoleWithoutFlip(t *testing.T) {
	testCases := []struct {
		name  string
		eye   mgl32.Vec3
		yaw   float32
		pitch float32
	}{
		{name: "Pure pitch over the top", eye: mgl32.Vec3{0, -10, 0}, pitch: 0.02},
		{name: "Pure pitch under the bottom", eye: mgl32.Vec3{0, -10, 0}, pitch: -0.02},
		{name: "Pitch with yaw", eye: mgl32.Vec3{6, -8, 1}, yaw: 0.005, pitch: 0.03},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCamera(tc.eye)
			maxStep := c.Distance() * 0.05

			prevRight, prevUp, prevPos := c.Right(), c.Up(), c.Position()
			crossed := false
			for i := 0; i < 250; i++ {
				c.Orbit(tc.yaw, tc.pitch)

				assert.Greater(t, c.Right().Dot(prevRight), float32(0.5), "right flipped at step %d", i)
				assert.Greater(t, c.Up().Dot(prevUp), float32(0.5), "up flipped at step %d", i)
				assert.Less(t, c.Position().Sub(prevPos).Len(), maxStep, "position jumped at step %d", i)

				if math32.Abs(c.Forward().Dot(c.WorldUp())) > poleThreshold {
					crossed = true
				}
				prevRight, prevUp, prevPos = c.Right(), c.Up(), c.Position()
			}
			assert.True(t, crossed, "sweep never reached the pole")
		})
	}
}

func TestZoomStaysClamped(t *testing.T) {
	c := newTestCamera(mgl32.Vec3{0, -10, 0})
	cfg := c.Config()
	deltas := []float32{1, 5, 100, 1e6, -1, -19, -20, -1e6, 0.3, -0.3, math32.NaN(), math32.Inf(-1)}

	for i := 0; i < 20; i++ {
		for _, d := range deltas {
			c.Zoom(d)
			require.GreaterOrEqual(t, c.Distance(), cfg.MinZoom)
			require.LessOrEqual(t, c.Distance(), cfg.MaxZoom)
			require.InDelta(t, c.Distance(), c.Position().Sub(c.Target()).Len(), 1e-3)
		}
	}
}

func TestZoomScalesDistance(t *testing.T) {
	c := newTestCamera(mgl32.Vec3{0, -10, 0})

	c.Zoom(2)
	assert.InDelta(t, 11, c.Distance(), vecTolerance)

	c.Zoom(-2)
	assert.InDelta(t, 9.9, c.Distance(), vecTolerance)
}

func TestPanMovesTargetAndEyeTogether(t *testing.T) {
	c := newTestCamera(mgl32.Vec3{0, -10, 0})
	forward := c.Forward()
	distance := c.Distance()

	c.Pan(3, -2)

	// offset = (right*3 + up*-2) * 10 * 0.01
	assertVecNear(t, mgl32.Vec3{0.3, 0, -0.2}, c.Target())
	assertVecNear(t, mgl32.Vec3{0.3, -10, -0.2}, c.Position())
	assertVecNear(t, forward, c.Forward())
	assert.InDelta(t, distance, c.Position().Sub(c.Target()).Len(), vecTolerance)
}

func TestPanScalesWithDistance(t *testing.T) {
	near := newTestCamera(mgl32.Vec3{0, -2, 0})
	far := newTestCamera(mgl32.Vec3{0, -20, 0})

	near.Pan(1, 0)
	far.Pan(1, 0)

	assert.InDelta(t, 10*near.Target().Len(), far.Target().Len(), vecTolerance)
}

func TestResetRestoresInitialView(t *testing.T) {
	c := NewOrbitCamera(mgl32.Vec3{2, -9, 3}, mgl32.Vec3{0, 0, 1}, DefaultCameraConfig())
	pos, target, dist, up := c.Position(), c.Target(), c.Distance(), c.Up()

	for i := 0; i < 40; i++ {
		c.Orbit(0.07, 0.05)
		c.Pan(0.5, -0.25)
		c.Zoom(0.4)
	}
	require.False(t, vecNear(pos, c.Position(), vecTolerance))

	c.Reset()

	assertVecNear(t, pos, c.Position())
	assertVecNear(t, target, c.Target())
	assertVecNear(t, up, c.Up())
	assert.InDelta(t, dist, c.Distance(), vecTolerance)

	c.Reset()
	assertVecNear(t, pos, c.Position())
}

func TestFrameBounds(t *testing.T) {
	c := newTestCamera(mgl32.Vec3{0, -10, 0})
	c.FrameBounds(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{3, 1, 4})

	assertVecNear(t, mgl32.Vec3{1, 0, 2}, c.Target())
	radius := mgl32.Vec3{4, 2, 4}.Len() / 2
	assert.InDelta(t, radius*2.5, c.Distance(), vecTolerance)

	c.Orbit(0.1, 0.1)
	c.Reset()
	assertVecNear(t, mgl32.Vec3{1, 0, 2}, c.Target())
}

func TestViewMatrixPutsTargetOnAxis(t *testing.T) {
	c := NewOrbitCamera(mgl32.Vec3{5, -5, 5}, mgl32.Vec3{1, 2, 3}, DefaultCameraConfig())
	c.Orbit(0.05, -0.08)

	v := c.ViewMatrix().Mul4x1(c.Target().Vec4(1)).Vec3()

	assertVecNear(t, mgl32.Vec3{0, 0, -c.Distance()}, v)
}
