// Package gpu owns the device-side buffer, image, view, and sampler
// handles, and the allocator that backs them with device memory. It
// generalizes celer-vkg's Buffer/Image/DeviceMemory/ResourceManager into
// owning, move-only handles keyed off a semantic usage bitset instead of
// raw Vulkan usage flags.
package gpu

import vk "github.com/vulkan-go/vulkan"

// BufferUsage is the semantic usage bitset callers build createBuffer
// requests from; the allocator translates it into vk.BufferUsageFlags.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageStagingSrc
	BufferUsageStagingDst
	BufferUsageIndirect
	BufferUsageTransferSrc
	BufferUsageTransferDst
)

func (u BufferUsage) toVK() vk.BufferUsageFlags {
	var f vk.BufferUsageFlagBits
	if u&BufferUsageVertex != 0 {
		f |= vk.BufferUsageVertexBufferBit
	}
	if u&BufferUsageIndex != 0 {
		f |= vk.BufferUsageIndexBufferBit
	}
	if u&BufferUsageUniform != 0 {
		f |= vk.BufferUsageUniformBufferBit
	}
	if u&BufferUsageStorage != 0 {
		f |= vk.BufferUsageStorageBufferBit
	}
	if u&(BufferUsageStagingSrc|BufferUsageTransferSrc) != 0 {
		f |= vk.BufferUsageTransferSrcBit
	}
	if u&(BufferUsageStagingDst|BufferUsageTransferDst) != 0 {
		f |= vk.BufferUsageTransferDstBit
	}
	if u&BufferUsageIndirect != 0 {
		f |= vk.BufferUsageIndirectBufferBit
	}
	return vk.BufferUsageFlags(f)
}

// MemoryMode selects the device-memory property set a resource is
// allocated from.
type MemoryMode int

const (
	// GpuOnly is device-local, not host-visible.
	GpuOnly MemoryMode = iota
	// CpuToGpu is host-visible + host-coherent, for frequent host writes.
	CpuToGpu
	// GpuToCpu is host-visible + host-cached, for device-to-host readback.
	GpuToCpu
)

func (m MemoryMode) toVK() vk.MemoryPropertyFlags {
	switch m {
	case CpuToGpu:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	case GpuToCpu:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCachedBit)
	default:
		return vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	}
}

// ImageUsage is the semantic usage bitset for createImage requests.
type ImageUsage uint32

const (
	ImageUsageColorRT ImageUsage = 1 << iota
	ImageUsageDepthStencil
	ImageUsageSampled
	ImageUsageStorage
	ImageUsageTransferSrc
	ImageUsageTransferDst
	ImageUsageInputAttachment
)

func (u ImageUsage) toVK() vk.ImageUsageFlags {
	var f vk.ImageUsageFlagBits
	if u&ImageUsageColorRT != 0 {
		f |= vk.ImageUsageColorAttachmentBit
	}
	if u&ImageUsageDepthStencil != 0 {
		f |= vk.ImageUsageDepthStencilAttachmentBit
	}
	if u&ImageUsageSampled != 0 {
		f |= vk.ImageUsageSampledBit
	}
	if u&ImageUsageStorage != 0 {
		f |= vk.ImageUsageStorageBit
	}
	if u&ImageUsageTransferSrc != 0 {
		f |= vk.ImageUsageTransferSrcBit
	}
	if u&ImageUsageTransferDst != 0 {
		f |= vk.ImageUsageTransferDstBit
	}
	if u&ImageUsageInputAttachment != 0 {
		f |= vk.ImageUsageInputAttachmentBit
	}
	return vk.ImageUsageFlags(f)
}
