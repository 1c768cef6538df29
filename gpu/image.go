package gpu

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// ImageDesc describes an image to be created by CreateImage.
type ImageDesc struct {
	Width, Height, Depth uint32
	MipLevels            uint32
	ArrayLayers          uint32
	Format               vk.Format
	Samples              vk.SampleCountFlagBits
	Tiling               vk.ImageTiling
	Usage                ImageUsage
	Cube                 bool
}

func (d ImageDesc) normalized() ImageDesc {
	if d.Depth == 0 {
		d.Depth = 1
	}
	if d.MipLevels == 0 {
		d.MipLevels = 1
	}
	if d.ArrayLayers == 0 {
		d.ArrayLayers = 1
	}
	if d.Samples == 0 {
		d.Samples = vk.SampleCount1Bit
	}
	if d.Tiling == 0 {
		d.Tiling = vk.ImageTilingOptimal
	}
	return d
}

// inferViewType picks 1D/2D/3D/Cube the way §4.1 requires, from the
// image's extent, array-layer count, and the cube flag.
func inferViewType(d ImageDesc) vk.ImageViewType {
	switch {
	case d.Cube:
		return vk.ImageViewTypeCube
	case d.Depth > 1:
		return vk.ImageViewType3d
	case d.Height <= 1 && d.ArrayLayers == 1:
		return vk.ImageViewType1d
	case d.ArrayLayers > 1:
		return vk.ImageViewType2dArray
	default:
		return vk.ImageViewType2d
	}
}

func vkImageType(d ImageDesc) vk.ImageType {
	switch {
	case d.Depth > 1:
		return vk.ImageType3d
	case d.Height <= 1:
		return vk.ImageType1d
	default:
		return vk.ImageType2d
	}
}

// ManagedImage owns both an image allocation and its default view (the
// view-only alias case is represented separately by ManagedImageView).
type ManagedImage struct {
	owner       *Allocator
	handle      vk.Image
	defaultView vk.ImageView
	alloc       *allocation
	Desc        ImageDesc
	AspectMask  vk.ImageAspectFlags
	DebugName   string

	closed bool
}

func (i *ManagedImage) Handle() vk.Image          { return i.handle }
func (i *ManagedImage) DefaultView() vk.ImageView { return i.defaultView }

// DescriptorInfoAt synthesizes an image descriptor over the image's
// default view, for the descriptor writer's owning-resource convenience
// overload.
func (i *ManagedImage) DescriptorInfoAt(layout vk.ImageLayout, sampler vk.Sampler) vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{ImageView: i.defaultView, ImageLayout: layout, Sampler: sampler}
}

// Close releases the default view, the image, and its memory span. Safe
// to call more than once.
func (i *ManagedImage) Close() {
	if i == nil || i.closed {
		return
	}
	i.closed = true
	if i.defaultView != vk.NullImageView {
		vk.DestroyImageView(i.owner.ctx.Device, i.defaultView, nil)
	}
	if i.handle != vk.NullImage {
		vk.DestroyImage(i.owner.ctx.Device, i.handle, nil)
	}
	i.owner.releaseAllocation(i.alloc)
}

// CreateImage implements the §4.1 resource-creation contract.
func (a *Allocator) CreateImage(desc ImageDesc, aspectMask vk.ImageAspectFlags) (*ManagedImage, error) {
	if a == nil || a.ctx == nil {
		return nil, fmt.Errorf("gpu: createImage: %w", renderr.NotInitialized)
	}
	desc = desc.normalized()
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("gpu: createImage: zero extent: %w", renderr.InvalidArgument)
	}

	flags := vk.ImageCreateFlags(0)
	arrayLayers := desc.ArrayLayers
	if desc.Cube {
		flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
		if arrayLayers < 6 {
			arrayLayers = 6
		}
	}

	info := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		Flags:     flags,
		ImageType: vkImageType(desc),
		Format:    desc.Format,
		Extent:    vk.Extent3D{Width: desc.Width, Height: desc.Height, Depth: desc.Depth},
		MipLevels:     desc.MipLevels,
		ArrayLayers:   arrayLayers,
		Samples:       desc.Samples,
		Tiling:        desc.Tiling,
		Usage:         desc.Usage.toVK(),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var handle vk.Image
	if err := vk.Error(vk.CreateImage(a.ctx.Device, &info, nil, &handle)); err != nil {
		return nil, fmt.Errorf("gpu: create image: %w", renderr.DeviceError)
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(a.ctx.Device, handle, &req)
	req.Deref()

	al, err := a.allocate(req, GpuOnly)
	if err != nil {
		vk.DestroyImage(a.ctx.Device, handle, nil)
		return nil, err
	}
	if err := vk.Error(vk.BindImageMemory(a.ctx.Device, handle, al.memory, vk.DeviceSize(al.offset))); err != nil {
		a.releaseAllocation(al)
		vk.DestroyImage(a.ctx.Device, handle, nil)
		return nil, fmt.Errorf("gpu: bind image memory: %w", renderr.DeviceError)
	}

	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: inferViewType(desc),
		Format:   desc.Format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectMask,
			LevelCount:     desc.MipLevels,
			LayerCount:     arrayLayers,
		},
	}
	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(a.ctx.Device, &viewInfo, nil, &view)); err != nil {
		a.releaseAllocation(al)
		vk.DestroyImage(a.ctx.Device, handle, nil)
		return nil, fmt.Errorf("gpu: create default image view: %w", renderr.DeviceError)
	}

	return &ManagedImage{
		owner: a, handle: handle, defaultView: view, alloc: al,
		Desc: desc, AspectMask: aspectMask,
	}, nil
}
