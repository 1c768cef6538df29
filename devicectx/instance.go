// Package devicectx owns the Vulkan instance/physical-device/logical-device
// chain, the presentation queues, and the swapchain — the device context
// external collaborator every other package in this module is built on top
// of.
package devicectx

import (
	"fmt"
	"log"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// AppInfo describes the application to the Vulkan instance.
type AppInfo struct {
	Name              string
	EngineName        string
	APIVersion        uint32
	EnabledLayers     []string
	EnabledExtensions []string
}

func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}

func safeStrings(in []string) []string {
	out := make([]string, len(in))
	for i := range in {
		out[i] = safeString(in[i])
	}
	return out
}

// CreateInstance creates the Vulkan instance for this application.
func CreateInstance(info AppInfo) (vk.Instance, error) {
	apiVersion := info.APIVersion
	if apiVersion == 0 {
		apiVersion = vk.MakeVersion(1, 1, 0)
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         apiVersion,
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(info.Name),
		PEngineName:        safeString(info.EngineName),
	}

	extensions := safeStrings(info.EnabledExtensions)
	layers := safeStrings(info.EnabledLayers)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return vk.NullInstance, fmt.Errorf("devicectx: create instance: %w", err)
	}
	vk.InitInstance(instance)
	return instance, nil
}

// DebugCallback matches vulkan-go's debug-report callback signature; kept
// for parity with the teacher's validation-layer hookup.
func DebugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Printf("vulkan ERROR: [%s] %d: %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		log.Printf("vulkan WARNING: [%s] %d: %s", pLayerPrefix, messageCode, pMessage)
	default:
		log.Printf("vulkan: [%s] %d: %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
