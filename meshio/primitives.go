package meshio

import (
	"math"

	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
)

// CreateCube builds the engine's default_cube primitive: 24 vertices (one
// set of 4 per face, so normals and UVs stay flat-shaded per face) and 36
// indices, centered at the origin with extents [-size/2, size/2].
func CreateCube(size float32, color mathx.Vec4) Data {
	h := size / 2
	type face struct {
		normal mathx.Vec3
		verts  [4]mathx.Vec3
	}
	faces := [6]face{
		{mathx.Vec3{Z: 1}, [4]mathx.Vec3{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}},
		{mathx.Vec3{Z: -1}, [4]mathx.Vec3{{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}},
		{mathx.Vec3{X: 1}, [4]mathx.Vec3{{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}}},
		{mathx.Vec3{X: -1}, [4]mathx.Vec3{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}},
		{mathx.Vec3{Y: 1}, [4]mathx.Vec3{{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}},
		{mathx.Vec3{Y: -1}, [4]mathx.Vec3{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}},
	}
	uvs := [4]mathx.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	mesh := Data{DebugName: "default_cube"}
	for _, f := range faces {
		base := uint32(len(mesh.Vertices))
		for i, p := range f.verts {
			mesh.Vertices = append(mesh.Vertices, Vertex{Position: p, Normal: f.normal, TexCoord: uvs[i], Color: color})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}

// CreateSphere builds a UV sphere of radius r with segs longitude
// divisions and rings latitude divisions, yielding (rings+1)*(segs+1)
// vertices whose positions and normals are exactly radius r / unit
// length from the origin.
func CreateSphere(r float32, segs, rings int) Data {
	mesh := Data{DebugName: "default_sphere"}
	for ring := 0; ring <= rings; ring++ {
		v := float32(ring) / float32(rings)
		phi := v * math.Pi
		for seg := 0; seg <= segs; seg++ {
			u := float32(seg) / float32(segs)
			theta := u * 2 * math.Pi

			sinPhi, cosPhi := float32(math.Sin(float64(phi))), float32(math.Cos(float64(phi)))
			sinTheta, cosTheta := float32(math.Sin(float64(theta))), float32(math.Cos(float64(theta)))

			dir := mathx.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: dir.Scale(r),
				Normal:   dir,
				TexCoord: mathx.Vec2{X: u, Y: v},
				Color:    mathx.Vec4{X: 1, Y: 1, Z: 1, W: 1},
			})
		}
	}

	stride := segs + 1
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segs; seg++ {
			a := uint32(ring*stride + seg)
			b := a + uint32(stride)
			mesh.Indices = append(mesh.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return mesh
}
