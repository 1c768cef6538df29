package mathx

import "math"

// Mat4 is a column-major 4x4 matrix, laid out the way the graphics API
// expects it: Cols[c][r].
type Mat4 struct {
	Cols [4][4]float32
}

func Identity() Mat4 {
	var m Mat4
	m.Cols[0][0] = 1
	m.Cols[1][1] = 1
	m.Cols[2][2] = 1
	m.Cols[3][3] = 1
	return m
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var r Mat4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.Cols[k][row] * n.Cols[c][k]
			}
			r.Cols[c][row] = sum
		}
	}
	return r
}

// LookAt builds a right-handed view matrix.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Norm()
	s := f.Cross(up).Norm()
	u := s.Cross(f)

	m := Identity()
	m.Cols[0][0], m.Cols[1][0], m.Cols[2][0] = s.X, s.Y, s.Z
	m.Cols[0][1], m.Cols[1][1], m.Cols[2][1] = u.X, u.Y, u.Z
	m.Cols[0][2], m.Cols[1][2], m.Cols[2][2] = -f.X, -f.Y, -f.Z
	m.Cols[3][0] = -s.Dot(eye)
	m.Cols[3][1] = -u.Dot(eye)
	m.Cols[3][2] = f.Dot(eye)
	return m
}

// Perspective builds a right-handed projection matrix for clip-space depth
// range [0,1] (Vulkan convention).
func Perspective(fovY, aspect, near, far float32) Mat4 {
	t := float32(math.Tan(float64(fovY) / 2))
	var m Mat4
	m.Cols[0][0] = 1 / (aspect * t)
	m.Cols[1][1] = 1 / t
	m.Cols[2][2] = far / (near - far)
	m.Cols[2][3] = -1
	m.Cols[3][2] = -(far * near) / (far - near)
	return m
}

// Translation returns a translation matrix.
func Translation(v Vec3) Mat4 {
	m := Identity()
	m.Cols[3][0], m.Cols[3][1], m.Cols[3][2] = v.X, v.Y, v.Z
	return m
}

// Scaling returns a scale matrix.
func Scaling(v Vec3) Mat4 {
	m := Identity()
	m.Cols[0][0], m.Cols[1][1], m.Cols[2][2] = v.X, v.Y, v.Z
	return m
}

// Bytes returns the matrix laid out as 16 consecutive float32s, matching
// the GPU's expected column-major byte layout.
func (m Mat4) Bytes() []byte {
	out := make([]byte, 0, 64)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out = append(out, float32Bytes(m.Cols[c][r])...)
		}
	}
	return out
}

func float32Bytes(f float32) []byte {
	bits := math.Float32bits(f)
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}
