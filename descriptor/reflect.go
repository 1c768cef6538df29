// Package descriptor turns compiled shader bytecode into reusable
// descriptor-set layouts, allocates descriptor sets against them, and
// exposes a by-name writer. It generalizes celer-vkg's
// descriptorsetlayout.go/descriptorpool.go/descriptorset.go, which only
// wrap raw Vulkan create/allocate/write calls with no structural
// identity or reflection, into the schema-driven cache §4.2 requires.
package descriptor

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// Minimal SPIR-V opcodes and decorations: enough to recover
// (set, binding, descriptorType, arraySize) per OpVariable in the
// Uniform/UniformConstant/StorageBuffer storage classes. No ecosystem
// library in the retrieval pack performs SPIR-V introspection, so this
// word-stream walker is hand-rolled rather than borrowed.
const (
	opName             = 5
	opTypeImage        = 25
	opTypeSampler      = 26
	opTypeSampledImage = 27
	opTypeArray        = 28
	opTypeRuntimeArray = 29
	opTypeStruct       = 30
	opTypePointer      = 32
	opConstant         = 43
	opVariable         = 59
	opDecorate         = 71

	decorationBinding       = 33
	decorationDescriptorSet = 34

	storageClassUniformConstant = 0
	storageClassUniform         = 2
	storageClassStorageBuffer   = 12

	spirvMagic = 0x07230203
)

type typeInfo struct {
	opcode      uint32
	elementType uint32 // OpTypeArray/OpTypeRuntimeArray/OpTypePointer: underlying type id
	lengthConst uint32 // OpTypeArray: id of the constant giving the array length
	storageCls  uint32 // OpTypePointer: storage class
}

type module struct {
	types       map[uint32]typeInfo
	constants   map[uint32]uint32
	names       map[uint32]string
	setDeco     map[uint32]uint32
	bindingDeco map[uint32]uint32
	variables   []variable
}

type variable struct {
	resultType uint32
	resultID   uint32
	storageCls uint32
}

// reflectModule walks one SPIR-V module and returns its descriptor
// bindings grouped by set index, with stageFlags set to exactly stage.
func reflectModule(code []uint32, stage vk.ShaderStageFlagBits) (map[uint32][]DescriptorBindingInfo, error) {
	if len(code) < 5 || code[0] != spirvMagic {
		return nil, fmt.Errorf("descriptor: not a SPIR-V module: %w", renderr.IncompatibleSchema)
	}

	m := &module{
		types:       make(map[uint32]typeInfo),
		constants:   make(map[uint32]uint32),
		names:       make(map[uint32]string),
		setDeco:     make(map[uint32]uint32),
		bindingDeco: make(map[uint32]uint32),
	}

	words := code[5:]
	for i := 0; i < len(words); {
		first := words[i]
		wordCount := first >> 16
		op := first & 0xffff
		if wordCount == 0 || int(i)+int(wordCount) > len(words) {
			return nil, fmt.Errorf("descriptor: malformed SPIR-V instruction stream: %w", renderr.IncompatibleSchema)
		}
		operands := words[i+1 : i+int(wordCount)]
		m.visit(op, operands)
		i += int(wordCount)
	}

	return m.resolveBindings(stage)
}

func (m *module) visit(op uint32, ops []uint32) {
	switch op {
	case opName:
		if len(ops) >= 1 {
			m.names[ops[0]] = decodeString(ops[1:])
		}
	case opTypeImage:
		if len(ops) >= 1 {
			m.types[ops[0]] = typeInfo{opcode: opTypeImage}
		}
	case opTypeSampler:
		if len(ops) >= 1 {
			m.types[ops[0]] = typeInfo{opcode: opTypeSampler}
		}
	case opTypeSampledImage:
		if len(ops) >= 1 {
			m.types[ops[0]] = typeInfo{opcode: opTypeSampledImage}
		}
	case opTypeStruct:
		if len(ops) >= 1 {
			m.types[ops[0]] = typeInfo{opcode: opTypeStruct}
		}
	case opTypeArray:
		if len(ops) >= 3 {
			m.types[ops[0]] = typeInfo{opcode: opTypeArray, elementType: ops[1], lengthConst: ops[2]}
		}
	case opTypeRuntimeArray:
		if len(ops) >= 2 {
			m.types[ops[0]] = typeInfo{opcode: opTypeRuntimeArray, elementType: ops[1]}
		}
	case opTypePointer:
		if len(ops) >= 3 {
			m.types[ops[0]] = typeInfo{opcode: opTypePointer, storageCls: ops[1], elementType: ops[2]}
		}
	case opConstant:
		if len(ops) >= 3 {
			m.constants[ops[1]] = ops[2]
		}
	case opVariable:
		if len(ops) >= 3 {
			m.variables = append(m.variables, variable{resultType: ops[0], resultID: ops[1], storageCls: ops[2]})
		}
	case opDecorate:
		if len(ops) >= 3 {
			switch ops[1] {
			case decorationDescriptorSet:
				m.setDeco[ops[0]] = ops[2]
			case decorationBinding:
				m.bindingDeco[ops[0]] = ops[2]
			}
		}
	}
}

func decodeString(words []uint32) string {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		for shift := uint(0); shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return string(b)
			}
			b = append(b, c)
		}
	}
	return string(b)
}

func (m *module) resolveBindings(stage vk.ShaderStageFlagBits) (map[uint32][]DescriptorBindingInfo, error) {
	out := make(map[uint32][]DescriptorBindingInfo)
	for _, v := range m.variables {
		if v.storageCls != storageClassUniform && v.storageCls != storageClassUniformConstant && v.storageCls != storageClassStorageBuffer {
			continue
		}
		set, hasSet := m.setDeco[v.resultID]
		binding, hasBinding := m.bindingDeco[v.resultID]
		if !hasSet || !hasBinding {
			continue
		}

		ptr, ok := m.types[v.resultType]
		if !ok || ptr.opcode != opTypePointer {
			continue
		}
		dtype, count, err := m.describeType(ptr.elementType, v.storageCls)
		if err != nil {
			return nil, err
		}

		out[set] = append(out[set], DescriptorBindingInfo{
			Name:            m.names[v.resultID],
			Binding:         binding,
			DescriptorType:  dtype,
			DescriptorCount: count,
			StageFlags:      vk.ShaderStageFlags(stage),
		})
	}
	return out, nil
}

// describeType resolves a pointee type id to a (descriptorType, count)
// pair, unwrapping one level of array.
func (m *module) describeType(typeID, storageCls uint32) (vk.DescriptorType, uint32, error) {
	t, ok := m.types[typeID]
	if !ok {
		return 0, 0, fmt.Errorf("descriptor: unresolved type id %d: %w", typeID, renderr.IncompatibleSchema)
	}

	switch t.opcode {
	case opTypeArray:
		dtype, _, err := m.describeType(t.elementType, storageCls)
		if err != nil {
			return 0, 0, err
		}
		length, ok := m.constants[t.lengthConst]
		if !ok || length == 0 {
			length = 1
		}
		return dtype, length, nil
	case opTypeRuntimeArray:
		dtype, _, err := m.describeType(t.elementType, storageCls)
		if err != nil {
			return 0, 0, err
		}
		return dtype, 1, nil
	case opTypeStruct:
		if storageCls == storageClassStorageBuffer {
			return vk.DescriptorTypeStorageBuffer, 1, nil
		}
		return vk.DescriptorTypeUniformBuffer, 1, nil
	case opTypeSampledImage:
		return vk.DescriptorTypeCombinedImageSampler, 1, nil
	case opTypeImage:
		return vk.DescriptorTypeStorageImage, 1, nil
	case opTypeSampler:
		return vk.DescriptorTypeSampler, 1, nil
	default:
		return 0, 0, fmt.Errorf("descriptor: unsupported descriptor variable type: %w", renderr.UnsupportedFormat)
	}
}
