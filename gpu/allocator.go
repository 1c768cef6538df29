package gpu

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/devicectx"
	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

const defaultArenaSize uint64 = 64 << 20

// block is one vk.DeviceMemory allocation carved up by an arena.
type block struct {
	memory vk.DeviceMemory
	arena  *arena
	mapped bool
	ptr    []byte
}

// Allocator creates buffers, images, views, and samplers against a
// device context, sub-allocating device memory out of per-memory-type
// arenas the way celer-vkg's ResourceManager grouped allocations into
// named pools, but keyed structurally by memory-type index instead of by
// a caller-chosen pool name.
type Allocator struct {
	ctx    *devicectx.Context
	blocks map[uint32][]*block
}

// New creates an Allocator bound to ctx. ctx must already have a logical
// device; passing a nil ctx is a programming error the callers of
// createBuffer/createImage/createSampler surface as NotInitialized.
func New(ctx *devicectx.Context) *Allocator {
	return &Allocator{ctx: ctx, blocks: make(map[uint32][]*block)}
}

// allocation is the handle a ManagedBuffer/ManagedImage keeps so it can
// release its span back to the arena on drop.
type allocation struct {
	block  *block
	span   *span
	memory vk.DeviceMemory
	offset uint64
}

func (a *Allocator) allocate(req vk.MemoryRequirements, mode MemoryMode) (*allocation, error) {
	if a == nil || a.ctx == nil {
		return nil, fmt.Errorf("gpu: allocator not initialized: %w", renderr.NotInitialized)
	}
	typeIndex, err := a.ctx.FindMemoryType(req.MemoryTypeBits, vk.MemoryPropertyFlagBits(mode.toVK()))
	if err != nil {
		return nil, fmt.Errorf("gpu: find memory type: %w", renderr.DeviceError)
	}

	for _, b := range a.blocks[typeIndex] {
		if s := b.arena.allocate(uint64(req.Size), uint64(req.Alignment)); s != nil {
			return &allocation{block: b, span: s, memory: b.memory, offset: s.offset}, nil
		}
	}

	capacity := defaultArenaSize
	if uint64(req.Size) > capacity {
		capacity = uint64(req.Size)
	}
	info := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(capacity),
		MemoryTypeIndex: typeIndex,
	}
	var mem vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(a.ctx.Device, &info, nil, &mem)); err != nil {
		return nil, fmt.Errorf("gpu: allocate memory: %w", renderr.DeviceError)
	}
	b := &block{memory: mem, arena: newArena(capacity)}
	a.blocks[typeIndex] = append(a.blocks[typeIndex], b)
	s := b.arena.allocate(uint64(req.Size), uint64(req.Alignment))
	if s == nil {
		return nil, fmt.Errorf("gpu: fresh arena rejected its own allocation: %w", renderr.DeviceError)
	}
	return &allocation{block: b, span: s, memory: mem, offset: s.offset}, nil
}

func (a *Allocator) releaseAllocation(al *allocation) {
	if al == nil || al.block == nil {
		return
	}
	al.block.arena.free(al.span)
}
