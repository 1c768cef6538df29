package transfer

import (
	"fmt"
	"sync"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/devicectx"
	"github.com/Shanyu-Yun/RenderV2/gpu"
	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// Engine is the transfer engine from §4.1: staging-buffer pooling,
// one-shot upload/copy/barrier submissions, and completion tokens. Its
// per-thread state (command pools, staging pool, submission tracking) is
// created lazily per caller-supplied thread id, per §5's per-thread
// transfer-state model; a process-level mutex guards only the registry,
// never a hot submission path.
type Engine struct {
	ctx   *devicectx.Context
	alloc *gpu.Allocator
	cfg   Config

	mu      sync.Mutex
	threads map[int]*threadState
}

// New creates a transfer Engine bound to ctx and alloc.
func New(ctx *devicectx.Context, alloc *gpu.Allocator, cfg Config) *Engine {
	return &Engine{ctx: ctx, alloc: alloc, cfg: cfg, threads: make(map[int]*threadState)}
}

func (e *Engine) forThread(id int) (*threadState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ts, ok := e.threads[id]; ok {
		return ts, nil
	}
	ts, err := newThreadState(e.ctx, e.cfg, e.alloc)
	if err != nil {
		return nil, err
	}
	e.threads[id] = ts
	return ts, nil
}

// Close tears down every thread's pools, fences, and staging buffers.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ts := range e.threads {
		ts.destroy()
	}
	e.threads = nil
}

// submit records one-shot work onto a fresh command buffer from pool,
// submits it on queue with a recycled fence, and returns its token. It
// first reaps ts's finished submissions so fences and staging buffers
// recycle before new ones are created.
func (e *Engine) submit(ts *threadState, pool vk.CommandPool, queue vk.Queue,
	record func(cmd vk.CommandBuffer) error, stagingIdx []int) (Token, error) {
	ts.reap()

	cmd, err := ts.allocateCommandBuffer(pool)
	if err != nil {
		return Token{}, err
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(cmd, &beginInfo)); err != nil {
		vk.FreeCommandBuffers(ts.device, pool, 1, []vk.CommandBuffer{cmd})
		return Token{}, fmt.Errorf("transfer: begin command buffer: %w", renderr.DeviceError)
	}
	if err := record(cmd); err != nil {
		vk.EndCommandBuffer(cmd)
		vk.FreeCommandBuffers(ts.device, pool, 1, []vk.CommandBuffer{cmd})
		return Token{}, err
	}
	if err := vk.Error(vk.EndCommandBuffer(cmd)); err != nil {
		vk.FreeCommandBuffers(ts.device, pool, 1, []vk.CommandBuffer{cmd})
		return Token{}, fmt.Errorf("transfer: end command buffer: %w", renderr.DeviceError)
	}

	fence, err := ts.acquireFence()
	if err != nil {
		vk.FreeCommandBuffers(ts.device, pool, 1, []vk.CommandBuffer{cmd})
		return Token{}, err
	}

	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	if err := vk.Error(vk.QueueSubmit(queue, 1, []vk.SubmitInfo{info}, fence)); err != nil {
		vk.FreeCommandBuffers(ts.device, pool, 1, []vk.CommandBuffer{cmd})
		ts.fenceFree = append(ts.fenceFree, fence)
		return Token{}, fmt.Errorf("transfer: submit: %w", renderr.DeviceError)
	}

	token := newToken(ts.device, fence)
	ts.active = append(ts.active, &submission{
		token: token, cmd: cmd, pool: pool, staging: stagingIdx, stagingOwn: ts.staging,
	})
	return token, nil
}

func checkRange(size, offset, bufSize uint64) error {
	if offset >= bufSize {
		return fmt.Errorf("transfer: offset %d >= buffer size %d: %w", offset, bufSize, renderr.OutOfRange)
	}
	if size > bufSize-offset {
		return fmt.Errorf("transfer: size %d exceeds remaining range at offset %d: %w", size, offset, renderr.OutOfRange)
	}
	return nil
}

// UploadToBuffer implements §4.1's uploadToBuffer.
func (e *Engine) UploadToBuffer(threadID int, dst *gpu.ManagedBuffer, data []byte, dstOffset uint64) (Token, error) {
	size := uint64(len(data))
	if err := checkRange(size, dstOffset, dst.Size); err != nil {
		return Token{}, err
	}
	ts, err := e.forThread(threadID)
	if err != nil {
		return Token{}, err
	}

	idx, err := ts.staging.acquire(size)
	if err != nil {
		return Token{}, err
	}
	staged := ts.staging.buffer(idx)
	mapped, err := staged.Map()
	if err != nil {
		ts.staging.release(idx)
		return Token{}, err
	}
	copy(mapped, data)
	staged.Unmap()

	token, err := e.submit(ts, ts.transferPool, e.ctx.TransferQueue, func(cmd vk.CommandBuffer) error {
		vk.CmdCopyBuffer(cmd, staged.Handle(), dst.Handle(), 1, []vk.BufferCopy{
			{SrcOffset: 0, DstOffset: vk.DeviceSize(dstOffset), Size: vk.DeviceSize(size)},
		})
		return nil
	}, []int{idx})
	if err != nil {
		ts.staging.release(idx)
		return Token{}, err
	}
	return token, nil
}

// CopyBuffer implements §4.1's copyBuffer.
func (e *Engine) CopyBuffer(threadID int, src, dst *gpu.ManagedBuffer, size, srcOffset, dstOffset uint64) (Token, error) {
	if err := checkRange(size, srcOffset, src.Size); err != nil {
		return Token{}, err
	}
	if err := checkRange(size, dstOffset, dst.Size); err != nil {
		return Token{}, err
	}
	ts, err := e.forThread(threadID)
	if err != nil {
		return Token{}, err
	}
	return e.submit(ts, ts.transferPool, e.ctx.TransferQueue, func(cmd vk.CommandBuffer) error {
		vk.CmdCopyBuffer(cmd, src.Handle(), dst.Handle(), 1, []vk.BufferCopy{
			{SrcOffset: vk.DeviceSize(srcOffset), DstOffset: vk.DeviceSize(dstOffset), Size: vk.DeviceSize(size)},
		})
		return nil
	}, nil)
}

func imageCopyRegion(w, h, d, mipLevel, arrayLayer uint32) vk.BufferImageCopy {
	return vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       mipLevel,
			BaseArrayLayer: arrayLayer,
			LayerCount:     1,
		},
		ImageExtent: vk.Extent3D{Width: w, Height: h, Depth: d},
	}
}

// UploadToImage implements §4.1's uploadToImage: barrier to
// TransferDstOptimal, copy, barrier to ShaderReadOnlyOptimal, submitted
// on the graphics queue because the layout transitions cross into
// fragment-shader stage.
func (e *Engine) UploadToImage(threadID int, dst *gpu.ManagedImage, data []byte, w, h, d, mipLevel, arrayLayer uint32) (Token, error) {
	size := uint64(len(data))
	ts, err := e.forThread(threadID)
	if err != nil {
		return Token{}, err
	}
	idx, err := ts.staging.acquire(size)
	if err != nil {
		return Token{}, err
	}
	staged := ts.staging.buffer(idx)
	mapped, err := staged.Map()
	if err != nil {
		ts.staging.release(idx)
		return Token{}, err
	}
	copy(mapped, data)
	staged.Unmap()

	region := imageCopyRegion(w, h, d, mipLevel, arrayLayer)
	token, err := e.submit(ts, ts.graphicsPool, e.ctx.GraphicsQueue, func(cmd vk.CommandBuffer) error {
		preBarrier, srcStage, dstStage := barrierFor(dst.Handle(), vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
			dst.AspectMask, mipLevel, 1, arrayLayer, 1)
		vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{preBarrier})

		vk.CmdCopyBufferToImage(cmd, staged.Handle(), dst.Handle(), vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})

		postBarrier, srcStage2, dstStage2 := barrierFor(dst.Handle(), vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
			dst.AspectMask, mipLevel, 1, arrayLayer, 1)
		vk.CmdPipelineBarrier(cmd, srcStage2, dstStage2, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{postBarrier})
		return nil
	}, []int{idx})
	if err != nil {
		ts.staging.release(idx)
		return Token{}, err
	}
	return token, nil
}

// CopyBufferToImage implements §4.1's copyBufferToImage.
func (e *Engine) CopyBufferToImage(threadID int, src *gpu.ManagedBuffer, dst *gpu.ManagedImage, w, h, d, mipLevel, arrayLayer uint32) (Token, error) {
	ts, err := e.forThread(threadID)
	if err != nil {
		return Token{}, err
	}
	region := imageCopyRegion(w, h, d, mipLevel, arrayLayer)
	return e.submit(ts, ts.graphicsPool, e.ctx.GraphicsQueue, func(cmd vk.CommandBuffer) error {
		preBarrier, srcStage, dstStage := barrierFor(dst.Handle(), vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
			dst.AspectMask, mipLevel, 1, arrayLayer, 1)
		vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{preBarrier})
		vk.CmdCopyBufferToImage(cmd, src.Handle(), dst.Handle(), vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
		postBarrier, srcStage2, dstStage2 := barrierFor(dst.Handle(), vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
			dst.AspectMask, mipLevel, 1, arrayLayer, 1)
		vk.CmdPipelineBarrier(cmd, srcStage2, dstStage2, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{postBarrier})
		return nil
	}, nil)
}

// WriteToUniformBuffer implements the host-visible synchronous path:
// maps dst, memcpys, unmaps. Callers are responsible for not writing a
// buffer the device is actively reading (see §4.1).
func (e *Engine) WriteToUniformBuffer(dst *gpu.ManagedBuffer, data []byte, dstOffset uint64) error {
	size := uint64(len(data))
	if err := checkRange(size, dstOffset, dst.Size); err != nil {
		return err
	}
	mapped, err := dst.Map()
	if err != nil {
		return err
	}
	copy(mapped[dstOffset:], data)
	dst.Unmap()
	return nil
}

// TransitionImageLayout implements §4.1's transitionImageLayout: derives
// (srcAccess, srcStage, dstAccess, dstStage) from the layout pair and
// submits on the graphics queue if either side touches more than
// transfer/pipe-ends, or if the caller requests it.
func (e *Engine) TransitionImageLayout(threadID int, image *gpu.ManagedImage, old, new_ vk.ImageLayout, aspect vk.ImageAspectFlags,
	baseMip, levelCount, baseLayer, layerCount uint32, useGraphicsQueue bool) (Token, error) {
	ts, err := e.forThread(threadID)
	if err != nil {
		return Token{}, err
	}
	src := layoutSpec(old)
	dst := layoutSpec(new_)
	onGraphics := useGraphicsQueue || needsGraphicsQueue(src, dst)
	pool, queue := ts.transferPool, e.ctx.TransferQueue
	if onGraphics {
		pool, queue = ts.graphicsPool, e.ctx.GraphicsQueue
	}
	return e.submit(ts, pool, queue, func(cmd vk.CommandBuffer) error {
		barrier, srcStage, dstStage := barrierFor(image.Handle(), old, new_, aspect, baseMip, levelCount, baseLayer, layerCount)
		vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
		return nil
	}, nil)
}

// supportsLinearBlit queries vkGetPhysicalDeviceFormatProperties for
// optimalTilingFeatures & SampledImageFilterLinear, the precondition
// generateMipmaps enforces per §4.1.
func (e *Engine) supportsLinearBlit(format vk.Format) bool {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(e.ctx.PhysicalDevice, format, &props)
	props.Deref()
	return props.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureSampledImageFilterLinearBit) != 0
}

// recordMipmapBlits walks levels 1..levels-1, blitting each from the
// level below it. It requires the entire [0, levels) mip range to
// already be in TransferDstOptimal when called; level 0's texels must
// already be populated. Level levels-1 is left in ShaderReadOnlyOptimal,
// as is every level blitted from once its blit source barrier fires.
func recordMipmapBlits(cmd vk.CommandBuffer, image *gpu.ManagedImage, width, height int, levels uint32) {
	w, h := width, height
	for i := uint32(1); i < levels; i++ {
		srcBarrier, s1, d1 := barrierFor(image.Handle(), vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal,
			image.AspectMask, i-1, 1, 0, 1)
		vk.CmdPipelineBarrier(cmd, s1, d1, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{srcBarrier})

		nw, nh := w/2, h/2
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		blit := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{AspectMask: image.AspectMask, MipLevel: i - 1, LayerCount: 1},
			DstSubresource: vk.ImageSubresourceLayers{AspectMask: image.AspectMask, MipLevel: i, LayerCount: 1},
		}
		blit.SrcOffsets[1] = vk.Offset3D{X: int32(w), Y: int32(h), Z: 1}
		blit.DstOffsets[1] = vk.Offset3D{X: int32(nw), Y: int32(nh), Z: 1}
		vk.CmdBlitImage(cmd, image.Handle(), vk.ImageLayoutTransferSrcOptimal, image.Handle(), vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, vk.FilterLinear)

		doneBarrier, s2, d2 := barrierFor(image.Handle(), vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
			image.AspectMask, i-1, 1, 0, 1)
		vk.CmdPipelineBarrier(cmd, s2, d2, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{doneBarrier})

		w, h = nw, nh
	}
	finalBarrier, s3, d3 := barrierFor(image.Handle(), vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
		image.AspectMask, levels-1, 1, 0, 1)
	vk.CmdPipelineBarrier(cmd, s3, d3, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{finalBarrier})
}

// GenerateMipmaps implements §4.1's generateMipmaps. It requires every
// level in [0, levels) to already be in TransferDstOptimal with level 0
// populated; UploadTextureWithMipmaps establishes that precondition and
// is the entry point ordinary texture uploads should use. Exported
// separately for callers that manage their own upload/layout sequencing.
func (e *Engine) GenerateMipmaps(threadID int, image *gpu.ManagedImage, width, height int, levels uint32) (Token, error) {
	if !e.supportsLinearBlit(image.Desc.Format) {
		return Token{}, fmt.Errorf("transfer: format %v has no linear-filter blit support: %w", image.Desc.Format, renderr.UnsupportedFormat)
	}
	ts, err := e.forThread(threadID)
	if err != nil {
		return Token{}, err
	}

	return e.submit(ts, ts.graphicsPool, e.ctx.GraphicsQueue, func(cmd vk.CommandBuffer) error {
		recordMipmapBlits(cmd, image, width, height, levels)
		return nil
	}, nil)
}

// UploadTextureWithMipmaps implements §4.1's uploadToImage followed by
// generateMipmaps as a single unit: it brings every level in the chain
// into TransferDstOptimal (the precondition GenerateMipmaps' blit loop
// requires), uploads the base level, then blits the chain down,
// leaving the whole image in ShaderReadOnlyOptimal. This is the
// supported way to populate a mipmapped texture; GenerateMipmaps alone
// has no way to establish its own entry layout.
func (e *Engine) UploadTextureWithMipmaps(threadID int, dst *gpu.ManagedImage, data []byte, width, height, levels uint32) (Token, error) {
	if !e.supportsLinearBlit(dst.Desc.Format) {
		return Token{}, fmt.Errorf("transfer: format %v has no linear-filter blit support: %w", dst.Desc.Format, renderr.UnsupportedFormat)
	}
	size := uint64(len(data))
	ts, err := e.forThread(threadID)
	if err != nil {
		return Token{}, err
	}
	idx, err := ts.staging.acquire(size)
	if err != nil {
		return Token{}, err
	}
	staged := ts.staging.buffer(idx)
	mapped, err := staged.Map()
	if err != nil {
		ts.staging.release(idx)
		return Token{}, err
	}
	copy(mapped, data)
	staged.Unmap()

	region := imageCopyRegion(width, height, 1, 0, 0)
	token, err := e.submit(ts, ts.graphicsPool, e.ctx.GraphicsQueue, func(cmd vk.CommandBuffer) error {
		toDst, s1, d1 := barrierFor(dst.Handle(), vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
			dst.AspectMask, 0, levels, 0, 1)
		vk.CmdPipelineBarrier(cmd, s1, d1, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{toDst})

		vk.CmdCopyBufferToImage(cmd, staged.Handle(), dst.Handle(), vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})

		recordMipmapBlits(cmd, dst, int(width), int(height), levels)
		return nil
	}, []int{idx})
	if err != nil {
		ts.staging.release(idx)
		return Token{}, err
	}
	return token, nil
}
