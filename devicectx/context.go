package devicectx

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

const maxUint32 = 0xFFFFFFFF

// Options configures Context creation.
type Options struct {
	App               AppInfo
	Surface           vk.Surface
	DeviceExtensions  []string
	PreferredFormat   vk.Format
	PreferredPresent  vk.PresentMode
	FramesInFlight    int
}

// Context is the engine's device context: instance, physical device,
// logical device, queues, surface, and swapchain, per the external
// device-context contract.
type Context struct {
	Instance       vk.Instance
	PhysicalDevice vk.PhysicalDevice
	Device         vk.Device

	Surface vk.Surface

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
	TransferQueue vk.Queue
	ComputeQueue  vk.Queue

	GraphicsFamily int
	PresentFamily  int
	TransferFamily int
	ComputeFamily  int

	Swapchain       vk.Swapchain
	SwapchainImages []vk.Image
	SwapchainViews  []vk.ImageView
	SwapchainFormat vk.Format
	SwapchainExtent vk.Extent2D

	presentMode    vk.PresentMode
	deviceExts     []string
	framesInFlight int
}

// New walks the instance -> physical device -> logical device -> swapchain
// chain and returns a ready-to-use Context.
func New(opts Options) (*Context, error) {
	instance, err := CreateInstance(opts.App)
	if err != nil {
		return nil, err
	}

	pd, err := pickPhysicalDevice(instance)
	if err != nil {
		return nil, err
	}

	families := queueFamilies(pd)
	ctx := &Context{
		Instance:       instance,
		PhysicalDevice: pd,
		Surface:        opts.Surface,
		presentMode:    opts.PreferredPresent,
		deviceExts:     opts.DeviceExtensions,
		framesInFlight: opts.FramesInFlight,
	}

	ctx.GraphicsFamily = -1
	ctx.PresentFamily = -1
	ctx.TransferFamily = -1
	ctx.ComputeFamily = -1
	for _, f := range families {
		if f.IsGraphics() && ctx.GraphicsFamily == -1 {
			ctx.GraphicsFamily = f.Index
		}
		if f.IsCompute() && ctx.ComputeFamily == -1 {
			ctx.ComputeFamily = f.Index
		}
		if f.IsTransfer() && !f.IsGraphics() && ctx.TransferFamily == -1 {
			ctx.TransferFamily = f.Index
		}
		if opts.Surface != vk.NullSurface && f.SupportsPresent(pd, opts.Surface) && ctx.PresentFamily == -1 {
			ctx.PresentFamily = f.Index
		}
	}
	if ctx.GraphicsFamily == -1 {
		return nil, fmt.Errorf("devicectx: no graphics-capable queue family")
	}
	if ctx.TransferFamily == -1 {
		ctx.TransferFamily = ctx.GraphicsFamily
	}
	if opts.Surface != vk.NullSurface && ctx.PresentFamily == -1 {
		return nil, fmt.Errorf("devicectx: no present-capable queue family")
	}

	if err := ctx.createLogicalDevice(opts.DeviceExtensions); err != nil {
		return nil, err
	}

	if opts.Surface != vk.NullSurface {
		if ctx.framesInFlight <= 0 {
			ctx.framesInFlight = 3
		}
		if err := ctx.createSwapchain(opts.PreferredFormat, vk.NullSwapchain); err != nil {
			return nil, err
		}
	}

	return ctx, nil
}

func pickPhysicalDevice(instance vk.Instance) (vk.PhysicalDevice, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, fmt.Errorf("devicectx: enumerate physical devices: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("devicectx: no physical devices available")
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, devices)); err != nil {
		return nil, fmt.Errorf("devicectx: enumerate physical devices: %w", err)
	}
	// Prefer a discrete GPU, otherwise take the first device reported.
	for _, d := range devices {
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(d, &props)
		props.Deref()
		if props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu {
			return d, nil
		}
	}
	return devices[0], nil
}

func (c *Context) createLogicalDevice(extensions []string) error {
	uniqueFamilies := map[int]bool{c.GraphicsFamily: true}
	if c.PresentFamily != -1 {
		uniqueFamilies[c.PresentFamily] = true
	}
	uniqueFamilies[c.TransferFamily] = true
	if c.ComputeFamily != -1 {
		uniqueFamilies[c.ComputeFamily] = true
	}

	priorities := []float32{1.0}
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(uniqueFamilies))
	for idx := range uniqueFamilies {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: uint32(idx),
			QueueCount:       1,
			PQueuePriorities: priorities,
		})
	}

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(c.PhysicalDevice, &features)

	exts := safeStrings(extensions)
	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
	}

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(c.PhysicalDevice, &createInfo, nil, &device)); err != nil {
		return fmt.Errorf("devicectx: create logical device: %w", err)
	}
	c.Device = device

	var q vk.Queue
	vk.GetDeviceQueue(device, uint32(c.GraphicsFamily), 0, &q)
	c.GraphicsQueue = q

	if c.PresentFamily != -1 {
		vk.GetDeviceQueue(device, uint32(c.PresentFamily), 0, &q)
		c.PresentQueue = q
	}
	vk.GetDeviceQueue(device, uint32(c.TransferFamily), 0, &q)
	c.TransferQueue = q
	if c.ComputeFamily != -1 {
		vk.GetDeviceQueue(device, uint32(c.ComputeFamily), 0, &q)
		c.ComputeQueue = q
	}
	return nil
}

// FindMemoryType mirrors celer-vkg's physicaldevice.go FindMemoryType.
func (c *Context) FindMemoryType(typeBits uint32, properties vk.MemoryPropertyFlagBits) (uint32, error) {
	var mp vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(c.PhysicalDevice, &mp)
	mp.Deref()

	for i := uint32(0); i < mp.MemoryTypeCount; i++ {
		mt := mp.MemoryTypes[i]
		mt.Deref()
		if typeBits&(1<<i) != 0 && vk.MemoryPropertyFlagBits(mt.PropertyFlags)&properties == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("devicectx: no matching memory type for bits=%#x properties=%#x", typeBits, properties)
}

// WaitIdle blocks until the device has completed all outstanding work.
func (c *Context) WaitIdle() error {
	return vk.Error(vk.DeviceWaitIdle(c.Device))
}

// Destroy tears the context down in reverse order of creation.
func (c *Context) Destroy() {
	c.destroySwapchain()
	if c.Device != nil {
		vk.DestroyDevice(c.Device, nil)
	}
	if c.Surface != vk.NullSurface {
		vk.DestroySurface(c.Instance, c.Surface, nil)
	}
	if c.Instance != nil {
		vk.DestroyInstance(c.Instance, nil)
	}
}
