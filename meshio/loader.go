package meshio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// reservedFormats are enumerated but have no implemented parser.
var reservedFormats = map[string]bool{".ply": true, ".fbx": true, ".gltf": true}

// Load dispatches to the loader matching path's extension.
func Load(path string) (Data, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj":
		return LoadOBJ(path)
	case ".stl":
		return LoadSTL(path)
	default:
		if reservedFormats[ext] {
			return Data{}, fmt.Errorf("meshio: format %q is reserved but unimplemented: %w", ext, renderr.UnsupportedFormat)
		}
		return Data{}, fmt.Errorf("meshio: unrecognized mesh extension %q: %w", ext, renderr.UnsupportedFormat)
	}
}
