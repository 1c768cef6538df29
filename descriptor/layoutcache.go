package descriptor

import (
	"fmt"
	"sync"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// LayoutCache deduplicates descriptor-set layouts by structural
// identity and additionally indexes them by (schemaName, setIndex) for
// lookups from rendering code, per §4.2. Go has no weak-reference
// primitive in the toolchain version this module targets, so the name
// index holds a strong reference rather than the spec's weak handle;
// this is recorded as a deliberate deviation rather than silently
// dropped behavior.
type LayoutCache struct {
	device vk.Device

	mu         sync.RWMutex
	byStruct   map[string]*DescriptorSetSchema
	byName     map[string]*DescriptorSetSchema
}

// NewLayoutCache creates an empty cache bound to device.
func NewLayoutCache(device vk.Device) *LayoutCache {
	return &LayoutCache{
		device:   device,
		byStruct: make(map[string]*DescriptorSetSchema),
		byName:   make(map[string]*DescriptorSetSchema),
	}
}

func nameKey(schemaName string, setIndex uint32) string {
	return fmt.Sprintf("%s#%d", schemaName, setIndex)
}

// GetOrCreate implements §4.2's layout cache identity rule: two
// requests with the same structural key return the same schema
// instance; re-registering (schemaName, setIndex) with a different
// structure is a hard error, with an identical structure returning the
// existing schema unchanged.
func (c *LayoutCache) GetOrCreate(schemaName string, setIndex uint32, bindings []DescriptorBindingInfo) (*DescriptorSetSchema, error) {
	key := structuralKey(setIndex, bindings)
	nk := nameKey(schemaName, setIndex)

	c.mu.RLock()
	if existing, ok := c.byName[nk]; ok {
		c.mu.RUnlock()
		if !bindingsEqual(existing.Bindings, bindings) {
			return nil, fmt.Errorf("descriptor: schema structure mismatch for %q set %d: %w", schemaName, setIndex, renderr.IncompatibleSchema)
		}
		return existing, nil
	}
	if existing, ok := c.byStruct[key]; ok {
		c.mu.RUnlock()
		c.mu.Lock()
		c.byName[nk] = existing
		c.mu.Unlock()
		return existing, nil
	}
	c.mu.RUnlock()

	layout, err := c.createLayout(bindings)
	if err != nil {
		return nil, err
	}
	schema := &DescriptorSetSchema{Name: schemaName, SetIndex: setIndex, Layout: layout, Bindings: bindings}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byStruct[key]; ok {
		vk.DestroyDescriptorSetLayout(c.device, layout, nil)
		c.byName[nk] = existing
		return existing, nil
	}
	c.byStruct[key] = schema
	c.byName[nk] = schema
	return schema, nil
}

// Lookup resolves a schema by its (schemaName, setIndex) name key.
func (c *LayoutCache) Lookup(schemaName string, setIndex uint32) (*DescriptorSetSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byName[nameKey(schemaName, setIndex)]
	return s, ok
}

func (c *LayoutCache) createLayout(bindings []DescriptorBindingInfo) (vk.DescriptorSetLayout, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		vkBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  b.DescriptorType,
			DescriptorCount: b.DescriptorCount,
			StageFlags:      b.StageFlags,
		}
	}
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vkBindings)),
		PBindings:    vkBindings,
	}
	var layout vk.DescriptorSetLayout
	if err := vk.Error(vk.CreateDescriptorSetLayout(c.device, &info, nil, &layout)); err != nil {
		return nil, fmt.Errorf("descriptor: create descriptor set layout: %w", renderr.DeviceError)
	}
	return layout, nil
}

// Destroy releases every layout this cache created.
func (c *LayoutCache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.byStruct {
		vk.DestroyDescriptorSetLayout(c.device, s.Layout, nil)
	}
	c.byStruct = nil
	c.byName = nil
}
