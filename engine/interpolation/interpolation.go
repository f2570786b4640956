// Package interpolation computes point positions between keyframes by spherical linear interpolation.
package interpolation

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/model"
)

// slerpEpsilon is the threshold on sin²θ below which two directions are treated as identical or
// anti-parallel and slerp falls back to a renormalized lerp.
const slerpEpsilon = 1e-6

// PositionAt returns the position of p at frame.
// Frames before the first keyframe clamp to it, frames after the last keyframe clamp to it, and frames in between
// are slerped between the bracketing pair. Keyframe frames reproduce the stored positions exactly.
//
// Parameters:
//   - p: the point to evaluate
//   - frame: the query frame
//
// Returns:
//   - common.Vec3: the position at frame
//   - bool: false if the point has no keyframes, in which case the position is not defined
func PositionAt(p *model.Point, frame int32) (common.Vec3, bool) {
	kfs := p.Keyframes
	if len(kfs) == 0 {
		return common.Vec3{}, false
	}

	first, last := kfs[0], kfs[len(kfs)-1]
	if frame <= first.Frame {
		return first.Position(), true
	}
	if frame >= last.Frame {
		return last.Position(), true
	}

	// first keyframe at or after frame; never 0 or len(kfs) after the clamps above
	i := sort.Search(len(kfs), func(i int) bool {
		return kfs[i].Frame >= frame
	})
	b := kfs[i]
	if b.Frame == frame {
		return b.Position(), true
	}
	a := kfs[i-1]
	if a.Frame == b.Frame {
		return a.Position(), true
	}

	// int64 spans so keyframes at opposite ends of the int32 range do not overflow
	t := float64(int64(frame)-int64(a.Frame)) / float64(int64(b.Frame)-int64(a.Frame))
	return Slerp(a.Position(), b.Position(), float32(t)), true
}

// Slerp rotates a toward b along the shorter great-circle arc by fraction t.
// The result radius is interpolated linearly between the radii of a and b, so inputs on the same sphere
// stay on that sphere. Identical directions fall back to lerp followed by renormalization. Anti-parallel
// directions have no unique arc; a half turn is taken around an axis perpendicular to a.
//
// Parameters:
//   - a: the start position (t = 0)
//   - b: the end position (t = 1)
//   - t: interpolation parameter in [0, 1]
//
// Returns:
//   - common.Vec3: the interpolated position
func Slerp(a, b common.Vec3, t float32) common.Vec3 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}

	ra, rb := a.Length(), b.Length()
	if ra == 0 || rb == 0 {
		return a.Lerp(b, t)
	}
	ua, ub := a.Scale(1/ra), b.Scale(1/rb)
	radius := ra + (rb-ra)*t

	cosTheta := common.Clamp(ua.Dot(ub), -1, 1)
	sinSqr := 1 - cosTheta*cosTheta
	if sinSqr < slerpEpsilon {
		if cosTheta < 0 {
			w := perpendicular(ua, ub)
			angle := t * math32.Pi
			return ua.Scale(math32.Cos(angle)).Add(w.Scale(math32.Sin(angle))).Scale(radius)
		}
		l := ua.Lerp(ub, t)
		return l.Scale(radius / l.Length())
	}

	sinTheta := math32.Sqrt(sinSqr)
	theta := math32.Atan2(sinTheta, cosTheta)
	wa := math32.Sin((1-t)*theta) / sinTheta
	wb := math32.Sin(t*theta) / sinTheta

	return ua.Scale(wa).Add(ub.Scale(wb)).Scale(radius)
}

// perpendicular returns a unit vector perpendicular to the unit vector u, preferring the component of v
// orthogonal to u so nearly anti-parallel inputs keep their arc plane.
func perpendicular(u, v common.Vec3) common.Vec3 {
	w := v.Sub(u.Scale(u.Dot(v)))
	if n := w.Length(); n > 1e-4 {
		return w.Scale(1 / n)
	}

	// cross with the basis axis least parallel to u
	axis := common.NewVec3(1, 0, 0)
	ax, ay, az := math32.Abs(u.X), math32.Abs(u.Y), math32.Abs(u.Z)
	switch {
	case ay <= ax && ay <= az:
		axis = common.NewVec3(0, 1, 0)
	case az <= ax && az <= ay:
		axis = common.NewVec3(0, 0, 1)
	}
	return u.Cross(axis).Normalize()
}

// AngleBetween returns the angle in radians between the directions of a and b.
// Zero-length inputs yield 0.
func AngleBetween(a, b common.Vec3) float32 {
	ra, rb := a.Length(), b.Length()
	if ra == 0 || rb == 0 {
		return 0
	}
	return math32.Acos(common.Clamp(a.Dot(b)/(ra*rb), -1, 1))
}
