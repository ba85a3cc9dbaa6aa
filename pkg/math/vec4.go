package math

// Vec4 is a 4-component vector. Lighting code uses it for RGBA intensities.
type Vec4 [4]float32

// RGBA builds a Vec4 from four components.
func RGBA(r, g, b, a float32) Vec4 {
	return Vec4{r, g, b, a}
}

// Add returns v + other.
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v[0] + other[0], v[1] + other[1], v[2] + other[2], v[3] + other[3]}
}

// Scale returns v * s.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

// Mul returns the component-wise product.
func (v Vec4) Mul(other Vec4) Vec4 {
	return Vec4{v[0] * other[0], v[1] * other[1], v[2] * other[2], v[3] * other[3]}
}

// XYZ drops the fourth component.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}
