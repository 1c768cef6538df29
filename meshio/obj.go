package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// LoadOBJ parses an ASCII Wavefront OBJ file, handling v/vn/vt/f with the
// `v[/vt][/vn]` face-corner syntax. Polygons with more than three corners
// are fan-triangulated: for corners c0..cN-1, triangles are
// (c0, c1, c2), (c0, c2, c3), ...
func LoadOBJ(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("meshio: open %q: %w", path, renderr.FileSystem)
	}
	defer f.Close()
	return parseOBJ(f, path)
}

func parseOBJ(r io.Reader, debugName string) (Data, error) {
	var positions []mathx.Vec3
	var normals []mathx.Vec3
	var texcoords []mathx.Vec2

	mesh := Data{DebugName: debugName}
	corner := make(map[string]uint32)

	resolve := func(tok string) (uint32, error) {
		if idx, ok := corner[tok]; ok {
			return idx, nil
		}
		parts := strings.Split(tok, "/")
		pi, err := parseIndex(parts[0], len(positions))
		if err != nil {
			return 0, err
		}
		v := Vertex{Position: positions[pi]}
		if len(parts) > 1 && parts[1] != "" {
			ti, err := parseIndex(parts[1], len(texcoords))
			if err != nil {
				return 0, err
			}
			v.TexCoord = texcoords[ti]
		}
		if len(parts) > 2 && parts[2] != "" {
			ni, err := parseIndex(parts[2], len(normals))
			if err != nil {
				return 0, err
			}
			v.Normal = normals[ni]
		}
		v.Color = mathx.Vec4{X: 1, Y: 1, Z: 1, W: 1}
		idx := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, v)
		corner[tok] = idx
		return idx, nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			x, y, z, err := parseVec3(fields[1:])
			if err != nil {
				return Data{}, err
			}
			positions = append(positions, mathx.Vec3{X: x, Y: y, Z: z})
		case "vn":
			x, y, z, err := parseVec3(fields[1:])
			if err != nil {
				return Data{}, err
			}
			normals = append(normals, mathx.Vec3{X: x, Y: y, Z: z})
		case "vt":
			if len(fields) < 3 {
				return Data{}, fmt.Errorf("meshio: malformed vt line %q: %w", line, renderr.FileSystem)
			}
			u, err := strconv.ParseFloat(fields[1], 32)
			if err != nil {
				return Data{}, fmt.Errorf("meshio: malformed vt line %q: %w", line, renderr.FileSystem)
			}
			v, err := strconv.ParseFloat(fields[2], 32)
			if err != nil {
				return Data{}, fmt.Errorf("meshio: malformed vt line %q: %w", line, renderr.FileSystem)
			}
			texcoords = append(texcoords, mathx.Vec2{X: float32(u), Y: float32(v)})
		case "f":
			corners := fields[1:]
			if len(corners) < 3 {
				return Data{}, fmt.Errorf("meshio: face with fewer than 3 corners: %w", renderr.FileSystem)
			}
			resolved := make([]uint32, len(corners))
			for i, c := range corners {
				idx, err := resolve(c)
				if err != nil {
					return Data{}, err
				}
				resolved[i] = idx
			}
			for i := 1; i < len(resolved)-1; i++ {
				mesh.Indices = append(mesh.Indices, resolved[0], resolved[i], resolved[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Data{}, fmt.Errorf("meshio: read %q: %w", debugName, renderr.FileSystem)
	}
	return mesh, nil
}

func parseVec3(fields []string) (float32, float32, float32, error) {
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("meshio: expected 3 components, got %d: %w", len(fields), renderr.FileSystem)
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("meshio: malformed float %q: %w", fields[i], renderr.FileSystem)
		}
		out[i] = float32(f)
	}
	return out[0], out[1], out[2], nil
}

// parseIndex resolves an OBJ index token, which is 1-based and may be
// negative (relative to the end of the list seen so far).
func parseIndex(tok string, count int) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("meshio: malformed index %q: %w", tok, renderr.FileSystem)
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("meshio: index %d out of range (have %d): %w", n, count, renderr.OutOfRange)
	}
	return n - 1, nil
}
