package transfer

import vk "github.com/vulkan-go/vulkan"

// transitionSpec is one row of the glossary's layout transition table.
type transitionSpec struct {
	access vk.AccessFlags
	stage  vk.PipelineStageFlags
}

// layoutSpec returns the (access, stage) pair a layout implies, per the
// fixed table in the spec glossary. Undefined and PresentSrc carry no
// access mask and sit at the top/bottom of the pipe.
func layoutSpec(layout vk.ImageLayout) transitionSpec {
	switch layout {
	case vk.ImageLayoutUndefined:
		return transitionSpec{0, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)}
	case vk.ImageLayoutGeneral:
		return transitionSpec{
			vk.AccessFlags(vk.AccessShaderReadBit | vk.AccessShaderWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit),
		}
	case vk.ImageLayoutColorAttachmentOptimal:
		return transitionSpec{
			vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		}
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		return transitionSpec{
			vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit),
		}
	case vk.ImageLayoutShaderReadOnlyOptimal:
		return transitionSpec{
			vk.AccessFlags(vk.AccessShaderReadBit),
			vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}
	case vk.ImageLayoutTransferSrcOptimal:
		return transitionSpec{vk.AccessFlags(vk.AccessTransferReadBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)}
	case vk.ImageLayoutTransferDstOptimal:
		return transitionSpec{vk.AccessFlags(vk.AccessTransferWriteBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)}
	case vk.ImageLayoutPresentSrc:
		return transitionSpec{0, vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)}
	default:
		return transitionSpec{0, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)}
	}
}

// needsGraphicsQueue reports whether either side of the transition
// touches anything beyond transfer or top/bottom-of-pipe, per §4.1's
// transitionImageLayout contract.
func needsGraphicsQueue(src, dst transitionSpec) bool {
	onlyTransferOrPipeEnds := func(s vk.PipelineStageFlags) bool {
		allowed := vk.PipelineStageFlags(vk.PipelineStageTransferBit | vk.PipelineStageTopOfPipeBit | vk.PipelineStageBottomOfPipeBit)
		return s&^allowed == 0
	}
	return !onlyTransferOrPipeEnds(src.stage) || !onlyTransferOrPipeEnds(dst.stage)
}

func barrierFor(image vk.Image, old, new_ vk.ImageLayout, aspect vk.ImageAspectFlags,
	baseMip, levelCount, baseLayer, layerCount uint32) (vk.ImageMemoryBarrier, vk.PipelineStageFlags, vk.PipelineStageFlags) {
	src := layoutSpec(old)
	dst := layoutSpec(new_)
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           old,
		NewLayout:           new_,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image,
		SrcAccessMask:       src.access,
		DstAccessMask:       dst.access,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   baseMip,
			LevelCount:     levelCount,
			BaseArrayLayer: baseLayer,
			LayerCount:     layerCount,
		},
	}
	return barrier, src.stage, dst.stage
}
