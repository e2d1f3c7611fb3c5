package pipeview

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// poleThreshold is |forward . worldUp| above which the freshly derived
	// right vector is considered unstable and the cached one is reused.
	poleThreshold = 0.98

	minVectorLength = 1e-6
)

var (
	// constructionPoleThreshold is cos(8 deg).
	constructionPoleThreshold = math32.Cos(mgl32.DegToRad(8))

	localOffset  = mgl32.Vec3{0, -1, 0}
	localForward = mgl32.Vec3{0, 1, 0}
)

// CameraConfig holds the tunables of an OrbitCamera.
type CameraConfig struct {
	WorldUp      mgl32.Vec3
	MinZoom      float32
	MaxZoom      float32
	ZoomSpeed    float32
	PanSpeed     float32
	MaxOrbitStep float32
}

func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		WorldUp:      mgl32.Vec3{0, 0, 1},
		MinZoom:      0.5,
		MaxZoom:      100,
		ZoomSpeed:    0.05,
		PanSpeed:     0.01,
		MaxOrbitStep: 0.1,
	}
}

// OrbitCamera rotates around a target point. Orientation is a unit
// quaternion mapping the local camera frame (right +X, forward +Y, up +Z)
// into world space, and the eye sits at distance along local -Y.
type OrbitCamera struct {
	cfg CameraConfig

	target         mgl32.Vec3
	distance       float32
	orientation    mgl32.Quat
	worldUp        mgl32.Vec3
	referenceRight mgl32.Vec3

	position mgl32.Vec3
	forward  mgl32.Vec3
	right    mgl32.Vec3
	up       mgl32.Vec3

	initialPosition       mgl32.Vec3
	initialTarget         mgl32.Vec3
	initialOrientation    mgl32.Quat
	initialDistance       float32
	initialReferenceRight mgl32.Vec3
}

// NewOrbitCamera creates a camera at eye looking at target. The distance
// between them is clamped to the configured zoom range.
func NewOrbitCamera(eye, target mgl32.Vec3, cfg CameraConfig) *OrbitCamera {
	cfg = sanitizeCameraConfig(cfg)

	c := &OrbitCamera{
		cfg:     cfg,
		target:  target,
		worldUp: cfg.WorldUp,
	}

	offset := target.Sub(eye)
	c.distance = clampZoom(offset.Len(), cfg.MinZoom, cfg.MaxZoom)

	var forward mgl32.Vec3
	if offset.Len() < minVectorLength {
		forward = anyPerpendicular(c.worldUp)
	} else {
		forward = offset.Normalize()
	}

	right := stableRight(forward, c.worldUp)
	c.orientation = orientationFromBasis(right, forward)
	c.referenceRight = right

	c.initialTarget = c.target
	c.initialOrientation = c.orientation
	c.initialDistance = c.distance
	c.initialReferenceRight = right

	c.UpdatePosition()
	c.initialPosition = c.position

	return c
}

// Orbit rotates the camera around the target. Yaw turns about the world up
// axis, pitch about the cached right vector so crossing the poles does not
// flip the view.
func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	if !isFinite(deltaYaw) || !isFinite(deltaPitch) {
		return
	}
	deltaYaw = mgl32.Clamp(deltaYaw, -c.cfg.MaxOrbitStep, c.cfg.MaxOrbitStep)
	deltaPitch = mgl32.Clamp(deltaPitch, -c.cfg.MaxOrbitStep, c.cfg.MaxOrbitStep)

	yaw := mgl32.QuatRotate(deltaYaw, c.worldUp)
	pitch := mgl32.QuatRotate(deltaPitch, c.referenceRight)

	c.orientation = yaw.Mul(pitch).Mul(c.orientation).Normalize()
	c.referenceRight = yaw.Rotate(c.referenceRight)

	c.UpdatePosition()
}

// UpdatePosition recomputes the eye position and the right/up basis from
// the current orientation, target and distance.
func (c *OrbitCamera) UpdatePosition() {
	c.position = c.target.Add(c.orientation.Rotate(localOffset).Mul(c.distance))
	c.forward = c.orientation.Rotate(localForward).Normalize()

	right := c.forward.Cross(c.worldUp)
	if math32.Abs(c.forward.Dot(c.worldUp)) > poleThreshold || right.Len() < minVectorLength {
		right = orthogonalize(c.referenceRight, c.forward)
	} else {
		right = right.Normalize()
		if right.Dot(c.referenceRight) < 0 {
			right = right.Mul(-1)
		}
	}

	c.referenceRight = right
	c.right = right
	c.up = right.Cross(c.forward).Normalize()
}

// Pan moves target and eye together in the view plane. The step scales
// with distance so it feels the same at every zoom level.
func (c *OrbitCamera) Pan(rightAmount, upAmount float32) {
	if !isFinite(rightAmount) || !isFinite(upAmount) {
		return
	}
	scale := c.distance * c.cfg.PanSpeed
	offset := c.right.Mul(rightAmount * scale).Add(c.up.Mul(upAmount * scale))

	c.position = c.position.Add(offset)
	c.target = c.target.Add(offset)
}

func (c *OrbitCamera) Zoom(scrollDelta float32) {
	if !isFinite(scrollDelta) {
		return
	}
	c.distance = clampZoom(c.distance*(1+scrollDelta*c.cfg.ZoomSpeed), c.cfg.MinZoom, c.cfg.MaxZoom)
	c.UpdatePosition()
}

// Reset restores the view captured at construction (or by FrameBounds).
func (c *OrbitCamera) Reset() {
	c.target = c.initialTarget
	c.orientation = c.initialOrientation
	c.distance = c.initialDistance
	c.referenceRight = c.initialReferenceRight
	c.UpdatePosition()
	c.position = c.initialPosition
}

// FrameBounds retargets the camera on the center of the given box and backs
// off far enough to see all of it. The framed view becomes the reset view.
func (c *OrbitCamera) FrameBounds(min, max mgl32.Vec3) {
	center := min.Add(max).Mul(0.5)
	radius := max.Sub(min).Len() / 2

	c.target = center
	c.distance = clampZoom(radius*2.5, c.cfg.MinZoom, c.cfg.MaxZoom)
	c.UpdatePosition()

	c.initialTarget = c.target
	c.initialDistance = c.distance
	c.initialOrientation = c.orientation
	c.initialReferenceRight = c.referenceRight
	c.initialPosition = c.position
}

// ViewMatrix returns a right-handed look-at matrix.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.position, c.target, c.up)
}

func (c *OrbitCamera) Position() mgl32.Vec3    { return c.position }
func (c *OrbitCamera) Target() mgl32.Vec3      { return c.target }
func (c *OrbitCamera) Distance() float32       { return c.distance }
func (c *OrbitCamera) Orientation() mgl32.Quat { return c.orientation }
func (c *OrbitCamera) Up() mgl32.Vec3          { return c.up }
func (c *OrbitCamera) Right() mgl32.Vec3       { return c.right }
func (c *OrbitCamera) Forward() mgl32.Vec3     { return c.forward }
func (c *OrbitCamera) WorldUp() mgl32.Vec3     { return c.worldUp }
func (c *OrbitCamera) Config() CameraConfig    { return c.cfg }

func sanitizeCameraConfig(cfg CameraConfig) CameraConfig {
	def := DefaultCameraConfig()
	if cfg.WorldUp.Len() < minVectorLength {
		cfg.WorldUp = def.WorldUp
	}
	cfg.WorldUp = cfg.WorldUp.Normalize()
	if cfg.MinZoom <= 0 {
		cfg.MinZoom = def.MinZoom
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = cfg.MinZoom
	}
	if cfg.ZoomSpeed == 0 {
		cfg.ZoomSpeed = def.ZoomSpeed
	}
	if cfg.PanSpeed == 0 {
		cfg.PanSpeed = def.PanSpeed
	}
	if cfg.MaxOrbitStep <= 0 {
		cfg.MaxOrbitStep = def.MaxOrbitStep
	}
	return cfg
}

func clampZoom(d, min, max float32) float32 {
	if math32.IsNaN(d) {
		return min
	}
	return mgl32.Clamp(d, min, max)
}

// stableRight returns a unit vector perpendicular to forward, preferring
// forward x worldUp and falling back to another axis near the poles.
func stableRight(forward, worldUp mgl32.Vec3) mgl32.Vec3 {
	if math32.Abs(forward.Dot(worldUp)) > constructionPoleThreshold {
		return forward.Cross(leastAlignedAxis(forward)).Normalize()
	}
	return forward.Cross(worldUp).Normalize()
}

// orientationFromBasis builds the quaternion whose local X, Y and Z axes map
// to right, forward and right x forward.
func orientationFromBasis(right, forward mgl32.Vec3) mgl32.Quat {
	up := right.Cross(forward).Normalize()
	m := mgl32.Mat3FromCols(right, forward, up)
	return mgl32.Mat4ToQuat(m.Mat4()).Normalize()
}

// orthogonalize removes the component of v along unit vector n and
// renormalizes. Falls back to any perpendicular of n when v collapses.
func orthogonalize(v, n mgl32.Vec3) mgl32.Vec3 {
	p := v.Sub(n.Mul(v.Dot(n)))
	if p.Len() < minVectorLength {
		return anyPerpendicular(n)
	}
	return p.Normalize()
}

func anyPerpendicular(n mgl32.Vec3) mgl32.Vec3 {
	return n.Cross(leastAlignedAxis(n)).Normalize()
}

func leastAlignedAxis(v mgl32.Vec3) mgl32.Vec3 {
	ax, ay, az := math32.Abs(v.X()), math32.Abs(v.Y()), math32.Abs(v.Z())
	switch {
	case ax <= ay && ax <= az:
		return mgl32.Vec3{1, 0, 0}
	case ay <= az:
		return mgl32.Vec3{0, 1, 0}
	default:
		return mgl32.Vec3{0, 0, 1}
	}
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
