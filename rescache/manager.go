package rescache

import (
	"golang.org/x/sync/errgroup"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/descriptor"
	"github.com/Shanyu-Yun/RenderV2/texio"
)

// Manager is the single entry point onto the mesh, texture, and shader
// caches, matching the "rescache.New()" construction site referenced
// throughout §4.3.
type Manager struct {
	Meshes   *MeshCache
	Textures *TextureCache
	Shaders  *ShaderCache
}

// New builds a Manager with default_cube and default_white already
// resident, and a shader cache bound to device/layouts.
func New(device vk.Device, layouts *descriptor.LayoutCache) *Manager {
	return &Manager{
		Meshes:   NewMeshCache(),
		Textures: NewTextureCache(),
		Shaders:  NewShaderCache(device, layouts),
	}
}

// LoadMeshesAsync fans out a batch of mesh loads and joins them,
// returning the resolved ids in input order or the first error
// encountered.
func (m *Manager) LoadMeshesAsync(paths []string) ([]string, error) {
	ids := make([]string, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := m.Meshes.LoadAsync(path)
			if err != nil {
				return err
			}
			id, err := f.Wait()
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// LoadTexturesAsync mirrors LoadMeshesAsync for textures.
func (m *Manager) LoadTexturesAsync(paths []string, opts texio.Options) ([]string, error) {
	ids := make([]string, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := m.Textures.LoadAsync(path, opts)
			if err != nil {
				return err
			}
			id, err := f.Wait()
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}
