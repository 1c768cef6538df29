package mathx

import "testing"

func TestIdentityMul(t *testing.T) {
	m := Translation(Vec3{1, 2, 3})
	r := m.Mul(Identity())
	if r.Cols[3][0] != 1 || r.Cols[3][1] != 2 || r.Cols[3][2] != 3 {
		t.Fatalf("identity multiply changed translation: %+v", r.Cols[3])
	}
}

func TestLookAtRightVectorUnitLength(t *testing.T) {
	m := LookAt(Vec3{0, 0, 5}, Vec3{0, 0, 0}, Vec3{0, 1, 0})
	s := Vec3{m.Cols[0][0], m.Cols[1][0], m.Cols[2][0]}
	if l := s.Len(); l < 0.99 || l > 1.01 {
		t.Fatalf("right vector not unit length: %f", l)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := x.Cross(y)
	if z != (Vec3{0, 0, 1}) {
		t.Fatalf("cross(x,y) = %+v, want (0,0,1)", z)
	}
}
