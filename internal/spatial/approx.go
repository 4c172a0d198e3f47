package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Near reports whether a and b differ by at most eps. Unlike
// mgl64.FloatEqualThreshold the tolerance is absolute, so values that
// should vanish compare sensibly against zero.
func Near(a, b, eps float64) bool {
	return a == b || math.Abs(a-b) <= eps
}

// NearVec3 compares two vectors component-wise with an absolute tolerance.
func NearVec3(a, b mgl64.Vec3, eps float64) bool {
	return Near(a[0], b[0], eps) && Near(a[1], b[1], eps) && Near(a[2], b[2], eps)
}

// NearMat3 compares two matrices entry-wise with an absolute tolerance.
func NearMat3(a, b mgl64.Mat3, eps float64) bool {
	for i := range a {
		if !Near(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

// NearQuat compares two quaternions component-wise. q and -q are
// different quaternions here even though they encode the same rotation.
func NearQuat(a, b mgl64.Quat, eps float64) bool {
	return Near(a.W, b.W, eps) && NearVec3(a.V, b.V, eps)
}
