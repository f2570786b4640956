package interpolation

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/klyja/geco/common"
	"github.com/klyja/geco/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func pointWith(kfs ...model.Keyframe) *model.Point {
	p := model.NewPoint("p", kfs[0])
	for _, kf := range kfs[1:] {
		p.SetKeyframe(kf)
	}
	return p
}

func TestPositionAtEmpty(t *testing.T) {
	_, ok := PositionAt(&model.Point{ID: "empty"}, 10)
	assert.False(t, ok)
}

func TestPositionAtSingleKeyframe(t *testing.T) {
	p := pointWith(model.NewKeyframe(5, 0, 0, 1))
	for _, frame := range []int32{-100, 0, 5, 6, 1 << 20} {
		pos, ok := PositionAt(p, frame)
		require.True(t, ok)
		assert.Equal(t, common.NewVec3(0, 0, 1), pos)
	}
}

func TestPositionAtQuarterTurn(t *testing.T) {
	p := pointWith(model.NewKeyframe(0, 1, 0, 0), model.NewKeyframe(100, 0, 1, 0))

	pos, ok := PositionAt(p, 50)
	require.True(t, ok)
	h := math32.Sqrt(2) / 2
	assert.True(t, pos.ApproxEqual(common.NewVec3(h, h, 0), eps), "got %+v", pos)
	assert.InDelta(t, 1.0, pos.Length(), eps)
}

func TestPositionAtKeyframesExact(t *testing.T) {
	p := pointWith(
		model.NewKeyframe(0, 1, 0, 0),
		model.NewKeyframe(10, 0, 1, 0),
		model.NewKeyframe(30, 0, 0, 1),
	)
	for _, kf := range p.Keyframes {
		pos, ok := PositionAt(p, kf.Frame)
		require.True(t, ok)
		assert.Equal(t, kf.Position(), pos, "frame %d", kf.Frame)
	}
}

func TestPositionAtClamps(t *testing.T) {
	p := pointWith(model.NewKeyframe(10, 1, 0, 0), model.NewKeyframe(20, 0, 1, 0))

	before, _ := PositionAt(p, -5)
	assert.Equal(t, common.NewVec3(1, 0, 0), before)

	after, _ := PositionAt(p, 25)
	assert.Equal(t, common.NewVec3(0, 1, 0), after)
}

func TestPositionAtStaysOnSphere(t *testing.T) {
	a := common.NewVec3(2, 1, -3)
	b := common.NewVec3(-1, 2, 0.5)
	radius := float32(3)
	a = a.Normalize().Scale(radius)
	b = b.Normalize().Scale(radius)
	p := pointWith(model.NewKeyframe(0, a.X, a.Y, a.Z), model.NewKeyframe(40, b.X, b.Y, b.Z))

	for frame := int32(0); frame <= 40; frame++ {
		pos, _ := PositionAt(p, frame)
		assert.InDelta(t, radius, pos.Length(), 1e-4, "frame %d", frame)
	}
}

func TestPositionAtMonotonicArc(t *testing.T) {
	a := common.NewVec3(1, 0, 0)
	b := common.NewVec3(0, 0.6, 0.8)
	p := pointWith(model.NewKeyframe(0, a.X, a.Y, a.Z), model.NewKeyframe(64, b.X, b.Y, b.Z))

	prev := float32(-1)
	for frame := int32(0); frame <= 64; frame++ {
		pos, _ := PositionAt(p, frame)
		angle := AngleBetween(a, pos)
		assert.GreaterOrEqual(t, angle, prev-1e-6, "frame %d", frame)
		prev = angle
	}
	assert.InDelta(t, AngleBetween(a, b), prev, eps)
}

func TestSlerpIdenticalDirections(t *testing.T) {
	a := common.NewVec3(0, 1, 0)
	got := Slerp(a, a, 0.3)
	assert.True(t, got.ApproxEqual(a, eps))
}

func TestSlerpAntiParallel(t *testing.T) {
	a := common.NewVec3(1, 0, 0)
	b := common.NewVec3(-1, 0, 0)

	mid := Slerp(a, b, 0.5)
	assert.InDelta(t, 1.0, mid.Length(), eps)
	assert.InDelta(t, 0.0, mid.Dot(a), eps)

	// a quarter of the half turn is 45 degrees from a
	q := Slerp(a, b, 0.25)
	assert.InDelta(t, 1.0, q.Length(), eps)
	assert.InDelta(t, math32.Pi/4, AngleBetween(a, q), 1e-4)

	// radius still interpolates on the anti-parallel path
	far := Slerp(a, common.NewVec3(-3, 0, 0), 0.5)
	assert.InDelta(t, 2.0, far.Length(), eps)
}

func TestPositionAtAntipodalMidpoint(t *testing.T) {
	p := pointWith(model.NewKeyframe(0, 1, 0, 0), model.NewKeyframe(100, -1, 0, 0))

	pos, ok := PositionAt(p, 50)
	require.True(t, ok)
	assert.InDelta(t, 1.0, pos.Length(), eps)

	prev := float32(0)
	for frame := int32(0); frame <= 100; frame += 10 {
		pos, _ := PositionAt(p, frame)
		angle := AngleBetween(common.NewVec3(1, 0, 0), pos)
		assert.GreaterOrEqual(t, angle, prev-1e-4, "frame %d", frame)
		prev = angle
	}
}

func TestPositionAtExtremeFrames(t *testing.T) {
	p := pointWith(
		model.NewKeyframe(math.MinInt32+1, 1, 0, 0),
		model.NewKeyframe(math.MaxInt32, 0, 1, 0),
	)

	pos, ok := PositionAt(p, 0)
	require.True(t, ok)
	want := common.NewVec3(1, 1, 0).Normalize()
	assert.True(t, pos.ApproxEqual(want, 1e-4), "got %+v", pos)
}

func TestSlerpRadiusInterpolates(t *testing.T) {
	got := Slerp(common.NewVec3(1, 0, 0), common.NewVec3(0, 3, 0), 0.5)
	assert.InDelta(t, 2.0, got.Length(), eps)
}

func TestSlerpZeroVector(t *testing.T) {
	got := Slerp(common.Vec3{}, common.NewVec3(0, 2, 0), 0.5)
	assert.True(t, got.ApproxEqual(common.NewVec3(0, 1, 0), eps))
}
