package pipeview

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ambientLight is the minimum brightness of any surface.
	ambientLight = 0.65
	// spotlightConePower sharpens the head light cone.
	spotlightConePower   = 10.0
	spotlightLightAmount = 1.0 - ambientLight
	minShadedChannel     = 7
)

// Shade darkens base with a head light placed at the eye. viewPoint and
// viewNormal are in view space, where the camera looks down -Z.
func Shade(base color.RGBA, viewPoint, viewNormal mgl32.Vec3) color.RGBA {
	diffuseFactor := float64(viewNormal.Z())
	if diffuseFactor < 0 {
		diffuseFactor = 0
	}

	var spotlightFactor float64
	if l := float64(viewPoint.Len()); l > 0 {
		cosAngle := -float64(viewPoint.Z()) / l
		if cosAngle < 0 {
			cosAngle = 0
		}
		spotlightFactor = math.Pow(cosAngle, spotlightConePower)
	} else {
		spotlightFactor = 1.0
	}

	brightness := ambientLight + diffuseFactor*spotlightFactor*spotlightLightAmount
	c := 240 - int(brightness*240)

	return color.RGBA{
		R: uint8(clampInt(int(base.R)-c, minShadedChannel, 255)),
		G: uint8(clampInt(int(base.G)-c, minShadedChannel, 255)),
		B: uint8(clampInt(int(base.B)-c, minShadedChannel, 255)),
		A: base.A,
	}
}

// RGBA converts a 0..1 color to 8 bit channels.
func RGBA(c mgl32.Vec3, alpha uint8) color.RGBA {
	return color.RGBA{
		R: unitToByte(c[0]),
		G: unitToByte(c[1]),
		B: unitToByte(c[2]),
		A: alpha,
	}
}

func unitToByte(v float32) uint8 {
	if !isFinite(v) {
		return 0
	}
	return uint8(clampInt(int(v*255+0.5), 0, 255))
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
