package devicectx

import vk "github.com/vulkan-go/vulkan"

// QueueFamily describes one physical-device queue family and its
// capabilities, mirroring celer-vkg's queuefamily.go.
type QueueFamily struct {
	Index      int
	Properties vk.QueueFamilyProperties
}

func (q QueueFamily) IsGraphics() bool {
	return q.Properties.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
}

func (q QueueFamily) IsCompute() bool {
	return q.Properties.QueueFlags&vk.QueueFlags(vk.QueueComputeBit) != 0
}

func (q QueueFamily) IsTransfer() bool {
	return q.Properties.QueueFlags&vk.QueueFlags(vk.QueueTransferBit) != 0
}

func (q QueueFamily) SupportsPresent(physicalDevice vk.PhysicalDevice, surface vk.Surface) bool {
	var supported vk.Bool32
	vk.GetPhysicalDeviceSurfaceSupport(physicalDevice, uint32(q.Index), surface, &supported)
	return supported == vk.True
}

func queueFamilies(pd vk.PhysicalDevice) []QueueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	if count == 0 {
		return nil
	}
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, props)

	out := make([]QueueFamily, count)
	for i := range props {
		props[i].Deref()
		out[i] = QueueFamily{Index: i, Properties: props[i]}
	}
	return out
}
