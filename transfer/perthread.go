package transfer

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/devicectx"
	"github.com/Shanyu-Yun/RenderV2/gpu"
	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// submission records one queue.submit call's bookkeeping: the fence
// backing its token, the command buffer it used, the pool it came from,
// and any staging-buffer indices to release once the fence signals.
type submission struct {
	token      Token
	cmd        vk.CommandBuffer
	pool       vk.CommandPool
	staging    []int
	stagingOwn *stagingPool
}

// threadState is the lazily-created per-thread {transferPool,
// graphicsPool, stagingPool, activeSubmissions, fenceFreeList} bundle
// from §4.1/§5. A threadState must never be touched from a goroutine
// other than the one that obtained it from Engine.forThread.
type threadState struct {
	device vk.Device

	transferPool vk.CommandPool
	graphicsPool vk.CommandPool

	staging *stagingPool

	active    []*submission
	fenceFree []vk.Fence
}

func newThreadState(ctx *devicectx.Context, cfg Config, alloc *gpu.Allocator) (*threadState, error) {
	ts := &threadState{device: ctx.Device, staging: newStagingPool(cfg, alloc)}

	tp, err := createCommandPool(ctx.Device, uint32(ctx.TransferFamily))
	if err != nil {
		return nil, err
	}
	ts.transferPool = tp

	gp, err := createCommandPool(ctx.Device, uint32(ctx.GraphicsFamily))
	if err != nil {
		vk.DestroyCommandPool(ctx.Device, tp, nil)
		return nil, err
	}
	ts.graphicsPool = gp
	return ts, nil
}

func createCommandPool(device vk.Device, family uint32) (vk.CommandPool, error) {
	info := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit | vk.CommandPoolCreateTransientBit),
		QueueFamilyIndex: family,
	}
	var pool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(device, &info, nil, &pool)); err != nil {
		return nil, fmt.Errorf("transfer: create command pool: %w", renderr.DeviceError)
	}
	return pool, nil
}

func (ts *threadState) allocateCommandBuffer(pool vk.CommandPool) (vk.CommandBuffer, error) {
	info := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	bufs := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(ts.device, &info, bufs)); err != nil {
		return nil, fmt.Errorf("transfer: allocate command buffer: %w", renderr.DeviceError)
	}
	return bufs[0], nil
}

func (ts *threadState) acquireFence() (vk.Fence, error) {
	if n := len(ts.fenceFree); n > 0 {
		f := ts.fenceFree[n-1]
		ts.fenceFree = ts.fenceFree[:n-1]
		return f, nil
	}
	info := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	var f vk.Fence
	if err := vk.Error(vk.CreateFence(ts.device, &info, nil, &f)); err != nil {
		return nil, fmt.Errorf("transfer: create fence: %w", renderr.DeviceError)
	}
	return f, nil
}

// reap scans active submissions, recycling the fence and releasing
// staging buffers for any whose fence has signaled and whose token has
// no external references left, per §4.1's recycling algorithm.
func (ts *threadState) reap() {
	kept := ts.active[:0]
	for _, s := range ts.active {
		signaled := vk.GetFenceStatus(ts.device, s.token.state.fence) == vk.Success
		if signaled && s.token.liveRefs() <= 0 {
			vk.ResetFences(ts.device, 1, []vk.Fence{s.token.state.fence})
			ts.fenceFree = append(ts.fenceFree, s.token.state.fence)
			vk.FreeCommandBuffers(ts.device, s.pool, 1, []vk.CommandBuffer{s.cmd})
			for _, idx := range s.staging {
				s.stagingOwn.release(idx)
			}
			continue
		}
		kept = append(kept, s)
	}
	ts.active = kept
}

func (ts *threadState) destroy() {
	ts.staging.destroyAll()
	for _, f := range ts.fenceFree {
		vk.DestroyFence(ts.device, f, nil)
	}
	for _, s := range ts.active {
		vk.DestroyFence(ts.device, s.token.state.fence, nil)
	}
	vk.DestroyCommandPool(ts.device, ts.transferPool, nil)
	vk.DestroyCommandPool(ts.device, ts.graphicsPool, nil)
}
