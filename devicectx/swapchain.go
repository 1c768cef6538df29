package devicectx

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

func (c *Context) createSwapchain(preferredFormat vk.Format, old vk.Swapchain) error {
	var presentModeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(c.PhysicalDevice, c.Surface, &presentModeCount, nil)
	presentModes := make([]vk.PresentMode, presentModeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(c.PhysicalDevice, c.Surface, &presentModeCount, presentModes)

	presentMode := vk.PresentModeFifo
	want := c.presentMode
	if want == 0 {
		want = vk.PresentModeMailbox
	}
	for _, m := range presentModes {
		if m == want {
			presentMode = m
			break
		}
	}

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(c.PhysicalDevice, c.Surface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(c.PhysicalDevice, c.Surface, &formatCount, formats)

	wantFormat := preferredFormat
	if wantFormat == 0 {
		wantFormat = vk.FormatB8g8r8a8Unorm
	}
	chosen := formats[0]
	chosen.Deref()
	for _, f := range formats {
		f.Deref()
		if f.Format == wantFormat {
			chosen = f
			break
		}
	}

	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(c.PhysicalDevice, c.Surface, &caps)); err != nil {
		return fmt.Errorf("devicectx: surface capabilities: %w", err)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()

	extent := caps.CurrentExtent
	if extent.Width == maxUint32 {
		extent = caps.MinImageExtent
	}

	imageCount := caps.MinImageCount + 1
	if want := uint32(c.framesInFlight); want > imageCount {
		imageCount = want
	}
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          c.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      chosen.Format,
		ImageColorSpace:  chosen.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}

	if c.PresentFamily != c.GraphicsFamily {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{uint32(c.GraphicsFamily), uint32(c.PresentFamily)}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(c.Device, &createInfo, nil, &swapchain)); err != nil {
		return fmt.Errorf("devicectx: create swapchain: %w", err)
	}

	var imgCount uint32
	vk.GetSwapchainImages(c.Device, swapchain, &imgCount, nil)
	images := make([]vk.Image, imgCount)
	vk.GetSwapchainImages(c.Device, swapchain, &imgCount, images)

	views := make([]vk.ImageView, imgCount)
	for i, img := range images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   chosen.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount:     1,
				LayerCount:     1,
			},
		}
		if err := vk.Error(vk.CreateImageView(c.Device, &viewInfo, nil, &views[i])); err != nil {
			return fmt.Errorf("devicectx: create swapchain image view %d: %w", i, err)
		}
	}

	c.Swapchain = swapchain
	c.SwapchainImages = images
	c.SwapchainViews = views
	c.SwapchainFormat = chosen.Format
	c.SwapchainExtent = extent
	return nil
}

func (c *Context) destroySwapchain() {
	for _, v := range c.SwapchainViews {
		vk.DestroyImageView(c.Device, v, nil)
	}
	c.SwapchainViews = nil
	if c.Swapchain != vk.NullSwapchain && c.Swapchain != nil {
		vk.DestroySwapchain(c.Device, c.Swapchain, nil)
	}
	c.Swapchain = nil
	c.SwapchainImages = nil
}

// RecreateSwapchain implements onResize: it waits for the device to be
// idle, recreates the swapchain at the new surface extent, and reports
// whether the surface format changed (callers use this to decide whether
// pipeline caches keyed by format need rebuilding).
func (c *Context) RecreateSwapchain() (formatChanged bool, err error) {
	if err := c.WaitIdle(); err != nil {
		return false, fmt.Errorf("devicectx: wait idle before resize: %w", err)
	}
	prevFormat := c.SwapchainFormat
	old := c.Swapchain

	for _, v := range c.SwapchainViews {
		vk.DestroyImageView(c.Device, v, nil)
	}
	c.SwapchainViews = nil

	if err := c.createSwapchain(prevFormat, old); err != nil {
		return false, err
	}
	if old != vk.NullSwapchain && old != nil {
		vk.DestroySwapchain(c.Device, old, nil)
	}
	return c.SwapchainFormat != prevFormat, nil
}
