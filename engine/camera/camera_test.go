package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/klyja/geco/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrbitControllerDefaults(t *testing.T) {
	cc := NewOrbitController()
	assert.Equal(t, float32(3), cc.Radius())
	assert.InDelta(t, math32.Pi/6, cc.Elevation(), 1e-6)

	eye := cc.Position()
	assert.InDelta(t, 0, eye.X, 1e-5)
	assert.InDelta(t, 1.5, eye.Y, 1e-5)
	assert.InDelta(t, 2.598076, eye.Z, 1e-5)
	assert.InDelta(t, 3, eye.Length(), 1e-5)
}

func TestOrbitControllerClamps(t *testing.T) {
	cc := NewOrbitController(WithRadiusBounds(2, 4), WithElevationBounds(-1, 1))

	cc.Orbit(0, 5)
	assert.Equal(t, float32(1), cc.Elevation())
	cc.SetElevation(-3)
	assert.Equal(t, float32(-1), cc.Elevation())

	cc.SetRadius(10)
	assert.Equal(t, float32(4), cc.Radius())
	cc.Zoom(1000)
	assert.Equal(t, float32(2), cc.Radius())
}

func TestOrbitControllerTarget(t *testing.T) {
	cc := NewOrbitController(WithRadius(2), WithElevation(0), WithAzimuth(math32.Pi/2))
	eye := cc.Position()
	assert.True(t, eye.ApproxEqual(common.NewVec3(2, 0, 0), 1e-5), "eye %v", eye)

	cc.SetTarget(common.NewVec3(0, 1, 0))
	eye = cc.Position()
	assert.True(t, eye.ApproxEqual(common.NewVec3(2, 1, 0), 1e-5), "eye %v", eye)
	assert.Equal(t, common.NewVec3(0, 1, 0), cc.Target())
}

func TestCameraProject(t *testing.T) {
	c := NewCamera()

	x, y, ok := c.Project(common.NewVec3(0, 0, 0))
	require.True(t, ok)
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)

	_, _, ok = c.Project(c.Eye().Scale(2))
	assert.False(t, ok)

	f := c.Frustum()
	assert.True(t, f.ContainsPoint(common.NewVec3(0, 0, 0)))
}

func TestCameraFacesCamera(t *testing.T) {
	c := NewCamera(WithController(NewOrbitController(WithElevation(0))))
	assert.True(t, c.FacesCamera(common.NewVec3(0, 0, 1)))
	assert.False(t, c.FacesCamera(common.NewVec3(0, 0, -1)))
	assert.False(t, c.FacesCamera(common.NewVec3(1, 0, 0)))
}

func TestCameraUpdateFollowsController(t *testing.T) {
	c := NewCamera(WithAspect(2))
	before := c.ViewProjectionMatrix()

	c.Controller().Orbit(math32.Pi/2, 0)
	assert.Equal(t, before, c.ViewProjectionMatrix())

	c.Update()
	assert.NotEqual(t, before, c.ViewProjectionMatrix())
	assert.Equal(t, float32(2), c.Aspect())
}
