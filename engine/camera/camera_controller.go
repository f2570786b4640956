package camera

import "github.com/klyja/geco/common"

// OrbitController owns the eye position of a globe camera. The eye sits on a sphere of the current radius
// around the target, placed by azimuth (around the Y axis, 0 = +Z) and elevation (from the XZ plane).
type OrbitController interface {
	// Position returns the eye position in world space.
	//
	// Returns:
	//   - common.Vec3: the eye position
	Position() common.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - common.Vec3: the orbit pivot
	Target() common.Vec3

	// SetTarget moves the orbit pivot and recomputes the eye position.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target common.Vec3)

	// Orbit rotates the eye around the target. Elevation is clamped to its bounds.
	//
	// Parameters:
	//   - dAzimuth: azimuth change in radians
	//   - dElevation: elevation change in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves the eye toward the target. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Radius returns the distance from target to eye.
	Radius() float32

	// SetRadius sets the distance from target to eye, clamped to the radius bounds.
	//
	// Parameters:
	//   - radius: the new distance
	SetRadius(radius float32)

	// Azimuth returns the horizontal angle in radians.
	Azimuth() float32

	// SetAzimuth sets the horizontal angle.
	//
	// Parameters:
	//   - azimuth: the angle in radians
	SetAzimuth(azimuth float32)

	// Elevation returns the vertical angle in radians.
	Elevation() float32

	// SetElevation sets the vertical angle, clamped to the elevation bounds.
	//
	// Parameters:
	//   - elevation: the angle in radians
	SetElevation(elevation float32)
}
