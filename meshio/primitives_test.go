package meshio

import (
	"math"
	"testing"

	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
)

func TestCreateCubeCounts(t *testing.T) {
	mesh := CreateCube(2, mathx.Vec4{X: 1, Y: 1, Z: 1, W: 1})
	if len(mesh.Vertices) != 24 {
		t.Errorf("vertices = %d, want 24", len(mesh.Vertices))
	}
	if len(mesh.Indices) != 36 {
		t.Errorf("indices = %d, want 36", len(mesh.Indices))
	}
	for _, v := range mesh.Vertices {
		for _, c := range []float32{v.Position.X, v.Position.Y, v.Position.Z} {
			if c < -1.0001 || c > 1.0001 {
				t.Errorf("position component %v outside [-1,1] for size=2", c)
			}
		}
	}
}

func TestCreateSphereVertexCountAndRadius(t *testing.T) {
	const r, segs, rings = float32(2.5), 8, 6
	mesh := CreateSphere(r, segs, rings)

	want := (rings + 1) * (segs + 1)
	if len(mesh.Vertices) != want {
		t.Fatalf("vertices = %d, want %d", len(mesh.Vertices), want)
	}
	for _, v := range mesh.Vertices {
		length := math.Sqrt(float64(v.Position.X*v.Position.X + v.Position.Y*v.Position.Y + v.Position.Z*v.Position.Z))
		if math.Abs(length-float64(r)) > 1e-4 {
			t.Errorf("position length = %v, want %v", length, r)
		}
		normalLen := math.Sqrt(float64(v.Normal.X*v.Normal.X + v.Normal.Y*v.Normal.Y + v.Normal.Z*v.Normal.Z))
		if math.Abs(normalLen-1) > 1e-4 {
			t.Errorf("normal length = %v, want 1", normalLen)
		}
		expectedNormal := v.Position.Scale(1 / r)
		if math.Abs(float64(v.Normal.X-expectedNormal.X)) > 1e-4 ||
			math.Abs(float64(v.Normal.Y-expectedNormal.Y)) > 1e-4 ||
			math.Abs(float64(v.Normal.Z-expectedNormal.Z)) > 1e-4 {
			t.Errorf("normal %v != position/r %v", v.Normal, expectedNormal)
		}
	}
}
