package transfer

import vk "github.com/vulkan-go/vulkan"

// RecordImageBarrier issues a pipeline barrier for image directly into
// an already-recording command buffer, using the same fixed
// layout-transition table as the one-shot transfer path. Unlike
// TransitionImageLayout it does not submit or wait; callers own the
// command buffer's lifecycle, which is how the frame orchestrator
// threads barriers into its per-pass command recording.
func RecordImageBarrier(cmd vk.CommandBuffer, image vk.Image, old, new_ vk.ImageLayout, aspect vk.ImageAspectFlags,
	baseMip, levelCount, baseLayer, layerCount uint32) {
	barrier, srcStage, dstStage := barrierFor(image, old, new_, aspect, baseMip, levelCount, baseLayer, layerCount)
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}
