package descriptor

import (
	"fmt"
	"sort"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// DescriptorBindingInfo is one binding within a descriptor set.
type DescriptorBindingInfo struct {
	Name            string
	Binding         uint32
	DescriptorType  vk.DescriptorType
	DescriptorCount uint32
	StageFlags      vk.ShaderStageFlags
}

// DescriptorSetSchema is immutable after creation. Its structural
// identity is (SetIndex, sorted bindings by {Binding, DescriptorType,
// DescriptorCount, StageFlags}); Name is metadata only.
type DescriptorSetSchema struct {
	Name     string
	SetIndex uint32
	Layout   vk.DescriptorSetLayout
	Bindings []DescriptorBindingInfo
}

// mergeModuleBindings implements §4.2's cross-stage merge: bindings key
// by (binding, descriptorType); a count mismatch is an error; matched
// bindings OR their stage flags; unmatched bindings append unchanged.
// Stages are merged in call order, so the first stage's binding name
// wins ties, matching "if name differs, keeps the first seen."
func mergeModuleBindings(dst []DescriptorBindingInfo, src []DescriptorBindingInfo) ([]DescriptorBindingInfo, error) {
	for _, s := range src {
		matched := false
		for i := range dst {
			if dst[i].Binding == s.Binding && dst[i].DescriptorType == s.DescriptorType {
				if dst[i].DescriptorCount != s.DescriptorCount {
					return nil, fmt.Errorf("descriptor: binding %d descriptor count mismatch (%d vs %d): %w",
						s.Binding, dst[i].DescriptorCount, s.DescriptorCount, renderr.IncompatibleSchema)
				}
				dst[i].StageFlags |= s.StageFlags
				matched = true
				break
			}
		}
		if !matched {
			dst = append(dst, s)
		}
	}
	return dst, nil
}

// mergeReflections merges the per-set binding maps from up to three
// shader-stage reflections (vertex/fragment/compute) and sorts each
// set's bindings by binding index ascending.
func mergeReflections(perStage ...map[uint32][]DescriptorBindingInfo) (map[uint32][]DescriptorBindingInfo, error) {
	merged := make(map[uint32][]DescriptorBindingInfo)
	for _, stage := range perStage {
		if stage == nil {
			continue
		}
		for set, bindings := range stage {
			next, err := mergeModuleBindings(merged[set], bindings)
			if err != nil {
				return nil, err
			}
			merged[set] = next
		}
	}
	for set := range merged {
		sort.Slice(merged[set], func(i, j int) bool { return merged[set][i].Binding < merged[set][j].Binding })
	}
	return merged, nil
}

// structuralKey builds the identity key for a set's bindings: the
// bindings are assumed already sorted by binding index.
func structuralKey(setIndex uint32, bindings []DescriptorBindingInfo) string {
	key := fmt.Sprintf("%d", setIndex)
	for _, b := range bindings {
		key += fmt.Sprintf("|%d:%d:%d:%d", b.Binding, b.DescriptorType, b.DescriptorCount, b.StageFlags)
	}
	return key
}

func bindingsEqual(a, b []DescriptorBindingInfo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Binding != b[i].Binding || a[i].DescriptorType != b[i].DescriptorType ||
			a[i].DescriptorCount != b[i].DescriptorCount || a[i].StageFlags != b[i].StageFlags {
			return false
		}
	}
	return true
}
