package rescache

import (
	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
	"github.com/Shanyu-Yun/RenderV2/meshio"
)

// MeshCache is the mesh-specific instantiation of the generic
// loaded/loading cache, primed with "default_cube" at construction.
type MeshCache struct {
	c *cache[meshio.Data]
}

// NewMeshCache returns a cache primed with the default_cube primitive.
func NewMeshCache() *MeshCache {
	mc := &MeshCache{c: newCache[meshio.Data]()}
	cube := meshio.CreateCube(1.0, mathx.Vec4{X: 1, Y: 1, Z: 1, W: 1})
	mc.c.put("default_cube", &cube)
	return mc
}

// Load implements §4.3's sync loadMesh.
func (mc *MeshCache) Load(path string) (string, error) {
	id, err := normalize(path)
	if err != nil {
		return "", err
	}
	return loadSync(mc.c, id, func() (*meshio.Data, error) {
		m, err := meshio.Load(path)
		if err != nil {
			return nil, err
		}
		return &m, nil
	})
}

// LoadAsync implements §4.3's async loadMeshAsync.
func (mc *MeshCache) LoadAsync(path string) (*Future, error) {
	id, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return loadAsync(mc.c, id, func() (*meshio.Data, error) {
		m, err := meshio.Load(path)
		if err != nil {
			return nil, err
		}
		return &m, nil
	}), nil
}

// Get returns the mesh stored under id, if loaded.
func (mc *MeshCache) Get(id string) (*meshio.Data, bool) { return mc.c.get(id) }

// Unload removes id, returning whether it was present. "default_cube" is
// never removable.
func (mc *MeshCache) Unload(id string) bool {
	if id == "default_cube" {
		return false
	}
	return mc.c.unload(id)
}
