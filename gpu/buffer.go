package gpu

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// ManagedBuffer is a move-only owning handle over a vk.Buffer and its
// backing device memory span. Close releases both exactly once; calling
// it twice is a no-op, matching the spec's "releases exactly once" rule
// for RAII handles the way celer-vkg's BufferResource.Free guards against
// double-free via its nil-out-on-free fields.
type ManagedBuffer struct {
	owner     *Allocator
	handle    vk.Buffer
	alloc     *allocation
	Size      uint64
	Usage     BufferUsage
	Mode      MemoryMode
	DebugName string

	closed bool
}

// Handle returns the underlying vk.Buffer for use by transfer/descriptor
// call sites. It does not transfer ownership.
func (b *ManagedBuffer) Handle() vk.Buffer { return b.handle }

// DeviceMemory and Offset expose the backing allocation for host-visible
// mapping by the transfer engine.
func (b *ManagedBuffer) DeviceMemory() vk.DeviceMemory { return b.alloc.memory }
func (b *ManagedBuffer) Offset() uint64                { return b.alloc.offset }

// Close releases the buffer and its memory span. Safe to call more than
// once.
func (b *ManagedBuffer) Close() {
	if b == nil || b.closed {
		return
	}
	b.closed = true
	if b.handle != vk.NullBuffer {
		vk.DestroyBuffer(b.owner.ctx.Device, b.handle, nil)
	}
	b.owner.releaseAllocation(b.alloc)
}

// CreateBuffer implements the §4.1 resource-creation contract.
func (a *Allocator) CreateBuffer(size uint64, usage BufferUsage, mode MemoryMode, debugName string) (*ManagedBuffer, error) {
	if a == nil || a.ctx == nil {
		return nil, fmt.Errorf("gpu: createBuffer: %w", renderr.NotInitialized)
	}
	if size == 0 {
		return nil, fmt.Errorf("gpu: createBuffer: zero size: %w", renderr.InvalidArgument)
	}

	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage.toVK(),
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if err := vk.Error(vk.CreateBuffer(a.ctx.Device, &info, nil, &handle)); err != nil {
		return nil, fmt.Errorf("gpu: create buffer: %w", renderr.DeviceError)
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(a.ctx.Device, handle, &req)
	req.Deref()

	al, err := a.allocate(req, mode)
	if err != nil {
		vk.DestroyBuffer(a.ctx.Device, handle, nil)
		return nil, err
	}
	if err := vk.Error(vk.BindBufferMemory(a.ctx.Device, handle, al.memory, vk.DeviceSize(al.offset))); err != nil {
		a.releaseAllocation(al)
		vk.DestroyBuffer(a.ctx.Device, handle, nil)
		return nil, fmt.Errorf("gpu: bind buffer memory: %w", renderr.DeviceError)
	}

	return &ManagedBuffer{
		owner: a, handle: handle, alloc: al,
		Size: size, Usage: usage, Mode: mode, DebugName: debugName,
	}, nil
}

// Map maps the full buffer and returns a byte slice over its memory. Only
// valid for CpuToGpu/GpuToCpu buffers.
func (b *ManagedBuffer) Map() ([]byte, error) {
	var ptr unsafe.Pointer
	if err := vk.Error(vk.MapMemory(b.owner.ctx.Device, b.alloc.memory, vk.DeviceSize(b.alloc.offset), vk.DeviceSize(b.Size), 0, &ptr)); err != nil {
		return nil, fmt.Errorf("gpu: map buffer: %w", renderr.DeviceError)
	}
	const m = 0x7fffffff
	return (*[m]byte)(ptr)[:b.Size], nil
}

// Unmap unmaps a previously mapped buffer.
func (b *ManagedBuffer) Unmap() {
	vk.UnmapMemory(b.owner.ctx.Device, b.alloc.memory)
}

// DescriptorInfo returns the whole-buffer descriptor range, the default
// used by the writer's convenience overloads.
func (b *ManagedBuffer) DescriptorInfo() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{Buffer: b.handle, Offset: 0, Range: vk.DeviceSize(b.Size)}
}
