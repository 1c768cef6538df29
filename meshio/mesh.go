// Package meshio loads MeshData from OBJ and STL files and builds the
// engine's built-in primitives (cube, sphere). It is the mesh-format
// counterpart to celer-vkg's textureutil.go, which only loads textures;
// the teacher never parses geometry files, so the parsers here are
// grounded directly on the fixed Vertex layout and format contracts.
package meshio

import (
	"unsafe"

	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
)

// Vertex is the fixed attribute layout every mesh pipeline in the core
// consumes: position, normal, texCoord, color.
type Vertex struct {
	Position mathx.Vec3
	Normal   mathx.Vec3
	TexCoord mathx.Vec2
	Color    mathx.Vec4
}

// Data is a loaded or generated mesh: valid iff len(Vertices) > 0.
// Polygons wider than a triangle are always fanned during load, so
// Indices always describe a triangle list.
type Data struct {
	DebugName string
	Vertices  []Vertex
	Indices   []uint32
}

// Valid reports whether this mesh has at least one vertex.
func (d Data) Valid() bool { return len(d.Vertices) > 0 }

// VertexBytes reinterprets Vertices as a raw byte slice for upload into
// a vertex buffer, mirroring celer-vkg's ToBytes idiom (utils.go).
func (d Data) VertexBytes() []byte {
	if len(d.Vertices) == 0 {
		return nil
	}
	size := len(d.Vertices) * int(unsafe.Sizeof(Vertex{}))
	return (*[1 << 30]byte)(unsafe.Pointer(&d.Vertices[0]))[:size:size]
}

// IndexBytes reinterprets Indices as a raw byte slice for upload into an
// index buffer.
func (d Data) IndexBytes() []byte {
	if len(d.Indices) == 0 {
		return nil
	}
	size := len(d.Indices) * int(unsafe.Sizeof(uint32(0)))
	return (*[1 << 30]byte)(unsafe.Pointer(&d.Indices[0]))[:size:size]
}
