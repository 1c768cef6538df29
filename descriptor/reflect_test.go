package descriptor

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func encodeWords(s string) []uint32 {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	}
	return words
}

func inst(op uint32, operands ...uint32) []uint32 {
	out := make([]uint32, 0, len(operands)+1)
	out = append(out, (uint32(len(operands)+1)<<16)|op)
	out = append(out, operands...)
	return out
}

// buildUniformBufferModule synthesizes a minimal SPIR-V module declaring
// a single uniform-buffer variable named "camera" at set 0, binding 0.
func buildUniformBufferModule() []uint32 {
	const structID, ptrID, varID = 10, 11, 12

	words := []uint32{spirvMagic, 0x00010300, 0, 20, 0}
	words = append(words, inst(opTypeStruct, structID)...)
	words = append(words, inst(opTypePointer, ptrID, storageClassUniform, structID)...)
	words = append(words, inst(opVariable, ptrID, varID, storageClassUniform)...)

	nameOperands := append([]uint32{varID}, encodeWords("camera")...)
	words = append(words, inst(opName, nameOperands...)...)
	words = append(words, inst(opDecorate, varID, decorationDescriptorSet, 0)...)
	words = append(words, inst(opDecorate, varID, decorationBinding, 0)...)
	return words
}

func TestReflectModuleRecoversUniformBuffer(t *testing.T) {
	code := buildUniformBufferModule()
	bindings, err := reflectModule(code, vk.ShaderStageVertexBit)
	if err != nil {
		t.Fatalf("reflectModule: %v", err)
	}
	set0, ok := bindings[0]
	if !ok || len(set0) != 1 {
		t.Fatalf("expected one binding in set 0, got %#v", bindings)
	}
	b := set0[0]
	if b.Name != "camera" {
		t.Errorf("name = %q, want %q", b.Name, "camera")
	}
	if b.Binding != 0 {
		t.Errorf("binding = %d, want 0", b.Binding)
	}
	if b.DescriptorType != vk.DescriptorTypeUniformBuffer {
		t.Errorf("descriptorType = %v, want UniformBuffer", b.DescriptorType)
	}
	if b.DescriptorCount != 1 {
		t.Errorf("descriptorCount = %d, want 1", b.DescriptorCount)
	}
	if b.StageFlags != vk.ShaderStageFlags(vk.ShaderStageVertexBit) {
		t.Errorf("stageFlags = %#x, want vertex-only", b.StageFlags)
	}
}

func TestReflectModuleRejectsBadMagic(t *testing.T) {
	_, err := reflectModule([]uint32{0, 0, 0, 0, 0}, vk.ShaderStageVertexBit)
	if err == nil {
		t.Fatal("expected error for bad magic number")
	}
}
