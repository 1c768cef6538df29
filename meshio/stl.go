package meshio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// LoadSTL parses an STL file, auto-detecting binary vs ASCII by the
// 5-byte header rule: binary if the first 5 bytes are not "solid".
func LoadSTL(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("meshio: open %q: %w", path, renderr.FileSystem)
	}
	defer f.Close()

	header := make([]byte, 5)
	n, _ := io.ReadFull(f, header)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Data{}, fmt.Errorf("meshio: seek %q: %w", path, renderr.FileSystem)
	}

	if n == 5 && string(header) == "solid" {
		return parseASCIISTL(f, path)
	}
	return parseBinarySTL(f, path)
}

func parseBinarySTL(r io.Reader, debugName string) (Data, error) {
	var header [80]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Data{}, fmt.Errorf("meshio: read STL header %q: %w", debugName, renderr.FileSystem)
	}
	var triCount uint32
	if err := binary.Read(r, binary.LittleEndian, &triCount); err != nil {
		return Data{}, fmt.Errorf("meshio: read STL triangle count %q: %w", debugName, renderr.FileSystem)
	}

	mesh := Data{DebugName: debugName}
	for i := uint32(0); i < triCount; i++ {
		var rec struct {
			Normal            [3]float32
			V0, V1, V2        [3]float32
			AttributeByteCount uint16
		}
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return Data{}, fmt.Errorf("meshio: truncated STL triangle %d in %q: %w", i, debugName, renderr.FileSystem)
		}
		n := mathx.Vec3{X: rec.Normal[0], Y: rec.Normal[1], Z: rec.Normal[2]}
		appendTriangle(&mesh, toVec3(rec.V0), toVec3(rec.V1), toVec3(rec.V2), n)
	}
	return mesh, nil
}

func toVec3(a [3]float32) mathx.Vec3 { return mathx.Vec3{X: a[0], Y: a[1], Z: a[2]} }

func appendTriangle(mesh *Data, a, b, c, n mathx.Vec3) {
	base := uint32(len(mesh.Vertices))
	white := mathx.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	mesh.Vertices = append(mesh.Vertices,
		Vertex{Position: a, Normal: n, Color: white},
		Vertex{Position: b, Normal: n, Color: white},
		Vertex{Position: c, Normal: n, Color: white},
	)
	mesh.Indices = append(mesh.Indices, base, base+1, base+2)
}

func parseASCIISTL(r io.Reader, debugName string) (Data, error) {
	mesh := Data{DebugName: debugName}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var normal mathx.Vec3
	var verts []mathx.Vec3
	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) < 5 || fields[1] != "normal" {
				continue
			}
			x, y, z, err := parseVec3(fields[2:5])
			if err != nil {
				return Data{}, err
			}
			normal = mathx.Vec3{X: x, Y: y, Z: z}
			verts = verts[:0]
		case "vertex":
			if len(fields) < 4 {
				return Data{}, fmt.Errorf("meshio: malformed STL vertex line: %w", renderr.FileSystem)
			}
			var v [3]float32
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return Data{}, fmt.Errorf("meshio: malformed STL vertex component: %w", renderr.FileSystem)
				}
				v[i] = float32(f)
			}
			verts = append(verts, mathx.Vec3{X: v[0], Y: v[1], Z: v[2]})
		case "endfacet":
			if len(verts) != 3 {
				return Data{}, fmt.Errorf("meshio: STL facet with %d vertices, want 3: %w", len(verts), renderr.FileSystem)
			}
			appendTriangle(&mesh, verts[0], verts[1], verts[2], normal)
		}
	}
	if err := scanner.Err(); err != nil {
		return Data{}, fmt.Errorf("meshio: read %q: %w", debugName, renderr.FileSystem)
	}
	return mesh, nil
}
