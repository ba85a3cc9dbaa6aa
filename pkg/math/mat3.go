package math

// Mat3 is a 3x3 matrix in row-major order:
//
//	[m0 m1 m2]
//	[m3 m4 m5]
//	[m6 m7 m8]
type Mat3 [9]float32

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// At returns the element at row, col.
func (m Mat3) At(row, col int) float32 {
	return m[row*3+col]
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Mul returns m * other.
func (m Mat3) Mul(other Mat3) Mat3 {
	var result Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			result[row*3+col] = m[row*3+0]*other[0*3+col] +
				m[row*3+1]*other[1*3+col] +
				m[row*3+2]*other[2*3+col]
		}
	}
	return result
}

// MulVec3 returns m * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Scale returns m * s.
func (m Mat3) Scale(s float32) Mat3 {
	var result Mat3
	for i := range m {
		result[i] = m[i] * s
	}
	return result
}

// Determinant returns the determinant.
func (m Mat3) Determinant() float32 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Inverse returns the inverse matrix, or identity if m is singular.
func (m Mat3) Inverse() Mat3 {
	det := m.Determinant()
	if det == 0 {
		return Identity3()
	}
	inv := 1 / det
	return Mat3{
		(m[4]*m[8] - m[5]*m[7]) * inv,
		(m[2]*m[7] - m[1]*m[8]) * inv,
		(m[1]*m[5] - m[2]*m[4]) * inv,
		(m[5]*m[6] - m[3]*m[8]) * inv,
		(m[0]*m[8] - m[2]*m[6]) * inv,
		(m[2]*m[3] - m[0]*m[5]) * inv,
		(m[3]*m[7] - m[4]*m[6]) * inv,
		(m[1]*m[6] - m[0]*m[7]) * inv,
		(m[0]*m[4] - m[1]*m[3]) * inv,
	}
}
