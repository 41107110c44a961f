package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Lerp linearly interpolates between a and b. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp01 clamps t to [0, 1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// BlendTo interpolates a toward b, saturating at the endpoints. Callers may
// pass fractions past 1; the result simply holds at b.
func BlendTo(a, b, t float64) float64 {
	return Lerp(a, b, Clamp01(t))
}

// BlendVec3 interpolates a toward b component-wise with a saturating fraction.
func BlendVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	t = Clamp01(t)
	return mgl64.Vec3{
		Lerp(a.X(), b.X(), t),
		Lerp(a.Y(), b.Y(), t),
		Lerp(a.Z(), b.Z(), t),
	}
}

// MoveToward steps from toward to by at most maxDelta, landing exactly on the
// target once within range.
func MoveToward(from, to mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	d := to.Sub(from)
	dist := d.Len()
	if dist <= maxDelta || dist == 0 {
		return to
	}
	return from.Add(d.Mul(maxDelta / dist))
}

// AngleBetween returns the angle in radians between two orientations.
func AngleBetween(a, b mgl64.Quat) float64 {
	d := a.Normalize().Dot(b.Normalize())
	if d < 0 {
		d = -d
	}
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// RotateTowards turns from toward to by at most maxDegrees, landing exactly on
// the target once within range.
func RotateTowards(from, to mgl64.Quat, maxDegrees float64) mgl64.Quat {
	angle := AngleBetween(from, to)
	if angle == 0 {
		return to
	}
	step := mgl64.DegToRad(maxDegrees)
	if step >= angle {
		return to
	}
	return mgl64.QuatSlerp(from, to, step/angle)
}

// FaceDirection returns the orientation whose forward axis points along dir,
// disambiguated by the up reference.
func FaceDirection(dir, up mgl64.Vec3) mgl64.Quat {
	return mgl64.QuatLookAtV(mgl64.Vec3{}, dir, up)
}
