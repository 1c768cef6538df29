package rescache

import "github.com/Shanyu-Yun/RenderV2/texio"

// TextureCache is the texture-specific instantiation of the generic
// cache, primed with "default_white" at construction.
type TextureCache struct {
	c *cache[texio.Data]
}

// NewTextureCache returns a cache primed with the default_white
// 4x4 solid texture.
func NewTextureCache() *TextureCache {
	tc := &TextureCache{c: newCache[texio.Data]()}
	white := texio.SolidColor(4, 4, 255, 255, 255, 255)
	tc.c.put("default_white", &white)
	return tc
}

// Load implements §4.3's sync loadTexture.
func (tc *TextureCache) Load(path string, opts texio.Options) (string, error) {
	id, err := normalize(path)
	if err != nil {
		return "", err
	}
	return loadSync(tc.c, id, func() (*texio.Data, error) {
		d, err := texio.Load(path, opts)
		if err != nil {
			return nil, err
		}
		return &d, nil
	})
}

// LoadAsync implements §4.3's async loadTextureAsync.
func (tc *TextureCache) LoadAsync(path string, opts texio.Options) (*Future, error) {
	id, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return loadAsync(tc.c, id, func() (*texio.Data, error) {
		d, err := texio.Load(path, opts)
		if err != nil {
			return nil, err
		}
		return &d, nil
	}), nil
}

// Get returns the texture stored under id, if loaded.
func (tc *TextureCache) Get(id string) (*texio.Data, bool) { return tc.c.get(id) }

// Unload removes id, returning whether it was present. "default_white" is
// never removable.
func (tc *TextureCache) Unload(id string) bool {
	if id == "default_white" {
		return false
	}
	return tc.c.unload(id)
}
