package descriptor

import vk "github.com/vulkan-go/vulkan"

// ReflectAndMerge reflects each stage's bytecode independently and
// merges the results, implementing §4.2's "reflected and merged"
// contract for a shader program assembled from up to three stages.
func ReflectAndMerge(codes map[vk.ShaderStageFlagBits][]uint32) (map[uint32][]DescriptorBindingInfo, error) {
	reflections := make([]map[uint32][]DescriptorBindingInfo, 0, len(codes))
	for stage, code := range codes {
		r, err := reflectModule(code, stage)
		if err != nil {
			return nil, err
		}
		reflections = append(reflections, r)
	}
	return mergeReflections(reflections...)
}

// RegisterSchemas registers every set recovered by ReflectAndMerge
// against cache under namePrefix, returning the schemas keyed by set
// index.
func RegisterSchemas(cache *LayoutCache, namePrefix string, perSet map[uint32][]DescriptorBindingInfo) (map[uint32]*DescriptorSetSchema, error) {
	out := make(map[uint32]*DescriptorSetSchema, len(perSet))
	for set, bindings := range perSet {
		schema, err := cache.GetOrCreate(namePrefix, set, bindings)
		if err != nil {
			return nil, err
		}
		out[set] = schema
	}
	return out, nil
}
