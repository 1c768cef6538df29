package material

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Shanyu-Yun/RenderV2/rescache"
)

func TestLoadDefaultsNoTextures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.json")
	src := `{"name":"plain","alpha":{"mode":"MASK","cutoff":0.3}}`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m, err := Load(path, rescache.NewTextureCache())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "plain" {
		t.Errorf("Name = %q, want plain", m.Name)
	}
	if m.Alpha.Mode != Mask {
		t.Errorf("Alpha.Mode = %v, want Mask", m.Alpha.Mode)
	}
	if m.Alpha.Cutoff != 0.3 {
		t.Errorf("Alpha.Cutoff = %v, want 0.3", m.Alpha.Cutoff)
	}
	if m.Factors.Metallic != 1 || m.Factors.Roughness != 1 {
		t.Errorf("default factors = %+v, want metallic/roughness 1", m.Factors)
	}
	if m.Textures.BaseColor != "" {
		t.Errorf("BaseColor = %q, want empty (no texture specified)", m.Textures.BaseColor)
	}
}
