package gpu

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// ManagedImageView is a non-owning-of-image view wrapper: Close destroys
// the view only, never the underlying image, so it is safe to create many
// alias views over one ManagedImage.
type ManagedImageView struct {
	owner     *Allocator
	handle    vk.ImageView
	DebugName string
	closed    bool
}

func (v *ManagedImageView) Handle() vk.ImageView { return v.handle }

// DescriptorInfoAt synthesizes an image descriptor over this view, for
// the descriptor writer's owning-resource convenience overload.
func (v *ManagedImageView) DescriptorInfoAt(layout vk.ImageLayout, sampler vk.Sampler) vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{ImageView: v.handle, ImageLayout: layout, Sampler: sampler}
}

func (v *ManagedImageView) Close() {
	if v == nil || v.closed {
		return
	}
	v.closed = true
	if v.handle != vk.NullImageView {
		vk.DestroyImageView(v.owner.ctx.Device, v.handle, nil)
	}
}

// CreateImageView implements the §4.1 alias-view contract.
func (a *Allocator) CreateImageView(baseImage *ManagedImage, aspectMask vk.ImageAspectFlags,
	baseMip, levelCount, baseLayer, layerCount uint32, viewType vk.ImageViewType, debugName string) (*ManagedImageView, error) {
	if a == nil || a.ctx == nil {
		return nil, fmt.Errorf("gpu: createImageView: %w", renderr.NotInitialized)
	}
	if baseImage == nil {
		return nil, fmt.Errorf("gpu: createImageView: nil base image: %w", renderr.InvalidArgument)
	}

	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    baseImage.handle,
		ViewType: viewType,
		Format:   baseImage.Desc.Format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectMask,
			BaseMipLevel:   baseMip,
			LevelCount:     levelCount,
			BaseArrayLayer: baseLayer,
			LayerCount:     layerCount,
		},
	}
	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(a.ctx.Device, &info, nil, &view)); err != nil {
		return nil, fmt.Errorf("gpu: create image view: %w", renderr.DeviceError)
	}
	return &ManagedImageView{owner: a, handle: view, DebugName: debugName}, nil
}
