package frame

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/descriptor"
	"github.com/Shanyu-Yun/RenderV2/gpu"
)

// PerFrameGpuResources is the per-frame-in-flight allocation described
// in §4.4: the camera/light uniform buffers plus one descriptor set per
// schema registered under a pass's shader prefix.
type PerFrameGpuResources struct {
	CameraBuffer *gpu.ManagedBuffer
	LightBuffer  *gpu.ManagedBuffer

	Schemas map[uint32]*descriptor.DescriptorSetSchema
	Sets    map[uint32]vk.DescriptorSet
}

// Close releases the per-frame buffers. Descriptor sets are owned by
// the pool allocator and are not individually freed.
func (r *PerFrameGpuResources) Close() {
	if r == nil {
		return
	}
	r.CameraBuffer.Close()
	r.LightBuffer.Close()
}

func newPerFrameResources(alloc *gpu.Allocator, pool *descriptor.PoolAllocator, cameraSize, lightSize uint64,
	schemas map[uint32]*descriptor.DescriptorSetSchema) (*PerFrameGpuResources, error) {
	cameraBuf, err := alloc.CreateBuffer(cameraSize, gpu.BufferUsageUniform, gpu.CpuToGpu, "frame.cameraUBO")
	if err != nil {
		return nil, err
	}
	lightBuf, err := alloc.CreateBuffer(lightSize, gpu.BufferUsageUniform, gpu.CpuToGpu, "frame.lightUBO")
	if err != nil {
		cameraBuf.Close()
		return nil, err
	}

	sets := make(map[uint32]vk.DescriptorSet, len(schemas))
	for set, schema := range schemas {
		allocated, err := pool.Allocate(schema, 1)
		if err != nil {
			cameraBuf.Close()
			lightBuf.Close()
			return nil, err
		}
		sets[set] = allocated[0]
	}

	return &PerFrameGpuResources{
		CameraBuffer: cameraBuf,
		LightBuffer:  lightBuf,
		Schemas:      schemas,
		Sets:         sets,
	}, nil
}
