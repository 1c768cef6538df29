package meshio

import (
	"strings"
	"testing"
)

func TestParseOBJQuadFanTriangulation(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	mesh, err := parseOBJ(strings.NewReader(src), "quad.obj")
	if err != nil {
		t.Fatalf("parseOBJ: %v", err)
	}
	if len(mesh.Indices) != 6 {
		t.Fatalf("indices = %d, want 6", len(mesh.Indices))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	for i, idx := range want {
		if mesh.Indices[i] != idx {
			t.Errorf("indices[%d] = %d, want %d", i, mesh.Indices[i], idx)
		}
	}
}

func TestParseOBJNegativeIndex(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 1 1 0
f -3 -2 -1
`
	mesh, err := parseOBJ(strings.NewReader(src), "neg.obj")
	if err != nil {
		t.Fatalf("parseOBJ: %v", err)
	}
	if len(mesh.Vertices) != 3 || len(mesh.Indices) != 3 {
		t.Fatalf("got %d vertices / %d indices, want 3/3", len(mesh.Vertices), len(mesh.Indices))
	}
}
