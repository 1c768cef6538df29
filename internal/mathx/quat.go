package mathx

// Quat is a unit quaternion used for SceneNode rotation.
type Quat struct {
	X, Y, Z, W float32
}

func IdentityQuat() Quat { return Quat{0, 0, 0, 1} }

// ToMat4 expands the quaternion into a rotation matrix.
func (q Quat) ToMat4() Mat4 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	m := Identity()
	m.Cols[0][0] = 1 - 2*(y*y+z*z)
	m.Cols[0][1] = 2 * (x*y + z*w)
	m.Cols[0][2] = 2 * (x*z - y*w)
	m.Cols[1][0] = 2 * (x*y - z*w)
	m.Cols[1][1] = 1 - 2*(x*x+z*z)
	m.Cols[1][2] = 2 * (y*z + x*w)
	m.Cols[2][0] = 2 * (x*z + y*w)
	m.Cols[2][1] = 2 * (y*z - x*w)
	m.Cols[2][2] = 1 - 2*(x*x+y*y)
	return m
}
