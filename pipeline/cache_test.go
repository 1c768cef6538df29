package pipeline

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestKeyDistinguishesFormats(t *testing.T) {
	a := Key("gbuffer", []vk.Format{vk.FormatR8g8b8a8Unorm}, vk.FormatD32Sfloat)
	b := Key("gbuffer", []vk.Format{vk.FormatR8g8b8a8Srgb}, vk.FormatD32Sfloat)
	if a == b {
		t.Fatalf("keys collided for different color formats: %q", a)
	}

	c := Key("gbuffer", []vk.Format{vk.FormatR8g8b8a8Unorm}, vk.FormatD32Sfloat)
	if a != c {
		t.Fatalf("identical inputs produced different keys: %q vs %q", a, c)
	}
}

func TestDefaultGraphicsPipelineConfig(t *testing.T) {
	cfg := DefaultGraphicsPipelineConfig()
	if cfg.PrimitiveTopology != vk.PrimitiveTopologyTriangleList {
		t.Errorf("topology = %v, want triangle list", cfg.PrimitiveTopology)
	}
	if !cfg.DepthTestEnable || !cfg.DepthWriteEnable {
		t.Errorf("depth test/write should default to enabled")
	}
	if len(cfg.VertexInputAttributeDescriptions) != 4 {
		t.Fatalf("attribute count = %d, want 4", len(cfg.VertexInputAttributeDescriptions))
	}
	locs := map[uint32]bool{}
	for _, a := range cfg.VertexInputAttributeDescriptions {
		locs[a.Location] = true
	}
	for _, want := range []uint32{0, 1, 2, 3} {
		if !locs[want] {
			t.Errorf("missing attribute location %d", want)
		}
	}
}
