package descriptor

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// PoolConfig sizes one descriptor pool. Defaults match §4.2's "sized
// generously for a mixed workload" guidance.
type PoolConfig struct {
	MaxSets      uint32
	PerTypeBudget uint32
}

// DefaultPoolConfig returns the 1024-sets / 1024-per-type defaults §4.2
// suggests.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxSets: 1024, PerTypeBudget: 1024}
}

var poolDescriptorTypes = []vk.DescriptorType{
	vk.DescriptorTypeUniformBuffer,
	vk.DescriptorTypeStorageBuffer,
	vk.DescriptorTypeCombinedImageSampler,
	vk.DescriptorTypeStorageImage,
	vk.DescriptorTypeSampler,
	vk.DescriptorTypeSampledImage,
}

// PoolAllocator is the ring of descriptor pools from §4.2: one current
// pool at a time, exhausted pools moved to a used list, a free list of
// reusable pools. Generalizes celer-vkg's DescriptorPool, which wraps a
// single non-reusable vk.DescriptorPool with no ring/exhaustion logic.
type PoolAllocator struct {
	device vk.Device
	cfg    PoolConfig

	current vk.DescriptorPool
	used    []vk.DescriptorPool
	free    []vk.DescriptorPool
}

// NewPoolAllocator creates an allocator with an initial current pool.
func NewPoolAllocator(device vk.Device, cfg PoolConfig) (*PoolAllocator, error) {
	a := &PoolAllocator{device: device, cfg: cfg}
	pool, err := a.createPool()
	if err != nil {
		return nil, err
	}
	a.current = pool
	return a, nil
}

func (a *PoolAllocator) createPool() (vk.DescriptorPool, error) {
	sizes := make([]vk.DescriptorPoolSize, len(poolDescriptorTypes))
	for i, t := range poolDescriptorTypes {
		sizes[i] = vk.DescriptorPoolSize{Type: t, DescriptorCount: a.cfg.PerTypeBudget}
	}
	info := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       a.cfg.MaxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	var pool vk.DescriptorPool
	if err := vk.Error(vk.CreateDescriptorPool(a.device, &info, nil, &pool)); err != nil {
		return nil, fmt.Errorf("descriptor: create descriptor pool: %w", renderr.DeviceError)
	}
	return pool, nil
}

// Allocate allocates count sets against schema.Layout from the current
// pool, rotating to a free or fresh pool on exhaustion and retrying
// exactly once.
func (a *PoolAllocator) Allocate(schema *DescriptorSetSchema, count int) ([]vk.DescriptorSet, error) {
	sets, err := a.tryAllocate(a.current, schema.Layout, count)
	if err == nil {
		return sets, nil
	}

	a.used = append(a.used, a.current)
	if n := len(a.free); n > 0 {
		a.current = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		pool, cerr := a.createPool()
		if cerr != nil {
			return nil, cerr
		}
		a.current = pool
	}
	return a.tryAllocate(a.current, schema.Layout, count)
}

func (a *PoolAllocator) tryAllocate(pool vk.DescriptorPool, layout vk.DescriptorSetLayout, count int) ([]vk.DescriptorSet, error) {
	layouts := make([]vk.DescriptorSetLayout, count)
	for i := range layouts {
		layouts[i] = layout
	}
	info := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(count),
		PSetLayouts:        layouts,
	}
	sets := make([]vk.DescriptorSet, count)
	if err := vk.Error(vk.AllocateDescriptorSets(a.device, &info, &sets[0])); err != nil {
		return nil, fmt.Errorf("descriptor: allocate descriptor sets: %w", renderr.DeviceError)
	}
	return sets, nil
}

// ResetPools returns all in-use pools to the free list without
// destroying them, per §4.2's resetPools.
func (a *PoolAllocator) ResetPools() error {
	for _, p := range a.used {
		if err := vk.Error(vk.ResetDescriptorPool(a.device, p, 0)); err != nil {
			return fmt.Errorf("descriptor: reset pool: %w", renderr.DeviceError)
		}
		a.free = append(a.free, p)
	}
	a.used = nil
	if err := vk.Error(vk.ResetDescriptorPool(a.device, a.current, 0)); err != nil {
		return fmt.Errorf("descriptor: reset pool: %w", renderr.DeviceError)
	}
	return nil
}

// Cleanup destroys every pool this allocator owns, per §4.2's cleanup.
func (a *PoolAllocator) Cleanup() {
	vk.DestroyDescriptorPool(a.device, a.current, nil)
	for _, p := range a.used {
		vk.DestroyDescriptorPool(a.device, p, nil)
	}
	for _, p := range a.free {
		vk.DestroyDescriptorPool(a.device, p, nil)
	}
	a.current, a.used, a.free = nil, nil, nil
}
