package descriptor

import (
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

func TestMergeModuleBindingsOrsStageFlags(t *testing.T) {
	dst := []DescriptorBindingInfo{
		{Name: "camera", Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1, StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit)},
	}
	src := []DescriptorBindingInfo{
		{Name: "camera", Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1, StageFlags: vk.ShaderStageFlags(vk.ShaderStageFragmentBit)},
	}
	merged, err := mergeModuleBindings(dst, src)
	if err != nil {
		t.Fatalf("mergeModuleBindings: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(merged))
	}
	want := vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit)
	if merged[0].StageFlags != want {
		t.Errorf("stage flags = %#x, want %#x", merged[0].StageFlags, want)
	}
}

func TestMergeModuleBindingsCountMismatch(t *testing.T) {
	dst := []DescriptorBindingInfo{
		{Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1},
	}
	src := []DescriptorBindingInfo{
		{Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 4},
	}
	_, err := mergeModuleBindings(dst, src)
	if !errors.Is(err, renderr.IncompatibleSchema) {
		t.Fatalf("expected IncompatibleSchema, got %v", err)
	}
}

func TestMergeModuleBindingsKeepsFirstSeenName(t *testing.T) {
	dst := []DescriptorBindingInfo{
		{Name: "uLight", Binding: 1, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1},
	}
	src := []DescriptorBindingInfo{
		{Name: "lights", Binding: 1, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1},
	}
	merged, err := mergeModuleBindings(dst, src)
	if err != nil {
		t.Fatalf("mergeModuleBindings: %v", err)
	}
	if merged[0].Name != "uLight" {
		t.Errorf("name = %q, want %q (first seen wins)", merged[0].Name, "uLight")
	}
}

func TestStructuralKeyIgnoresNameButNotSetIndex(t *testing.T) {
	a := []DescriptorBindingInfo{
		{Name: "a", Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1, StageFlags: 1},
	}
	b := []DescriptorBindingInfo{
		{Name: "different-name", Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1, StageFlags: 1},
	}
	if structuralKey(0, a) != structuralKey(0, b) {
		t.Errorf("structural keys should match across differing Name: %q vs %q", structuralKey(0, a), structuralKey(0, b))
	}
	if structuralKey(1, a) == structuralKey(0, a) {
		t.Errorf("structural keys should differ across set index")
	}
}

func TestBindingsEqual(t *testing.T) {
	a := []DescriptorBindingInfo{{Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1}}
	b := []DescriptorBindingInfo{{Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 1}}
	if !bindingsEqual(a, b) {
		t.Errorf("expected equal binding sets to compare equal")
	}
	c := []DescriptorBindingInfo{{Binding: 0, DescriptorType: vk.DescriptorTypeUniformBuffer, DescriptorCount: 2}}
	if bindingsEqual(a, c) {
		t.Errorf("expected differing DescriptorCount to compare unequal")
	}
}
