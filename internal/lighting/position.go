package lighting

import (
	gomath "math"

	"github.com/Faultbox/plyview/pkg/math"
)

// PositionFromAngles places a light on a sphere around the origin.
// Longitude is rotation around the Y axis in degrees, latitude the elevation
// above the XZ plane in degrees.
func PositionFromAngles(longitude, latitude, distance float32) math.Vec3 {
	lonRad := float64(longitude) * gomath.Pi / 180.0
	latRad := float64(latitude) * gomath.Pi / 180.0

	// Spherical to Cartesian
	dir := math.Vec3{
		X: float32(gomath.Cos(latRad) * gomath.Sin(lonRad)),
		Y: float32(gomath.Sin(latRad)),
		Z: float32(gomath.Cos(latRad) * gomath.Cos(lonRad)),
	}
	return dir.Scale(distance)
}
