// Package frame is the frame record orchestrator of §4.4: it consumes
// a declarative pass sequence, acquires per-frame GPU resources,
// records barriers and dynamic-rendering commands, and invokes
// registered draw callbacks per pass. It generalizes celer-vkg's
// DrawFrameSync (graphicsapp.go) from a single hardcoded render pass
// into a data-driven, dynamic-rendering pass sequence.
package frame

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/material"
	"github.com/Shanyu-Yun/RenderV2/rescache"
	"github.com/Shanyu-Yun/RenderV2/scene"
)

// SwapchainAttachment is the reserved attachment name that resolves to
// the current frame's swapchain image view.
const SwapchainAttachment = "Swapchain"

// AttachmentType selects what an Attachment binds to.
type AttachmentType int

const (
	AttachmentColor AttachmentType = iota
	AttachmentDepthStencil
	AttachmentSampledImage
	AttachmentStorageImage
	AttachmentBufferInput
	AttachmentBufferOutput
)

// Attachment describes one pass resource binding, per §4.4.
type Attachment struct {
	Type         AttachmentType
	ResourceName string
	Format       vk.Format
	SampleCount  vk.SampleCountFlagBits
	LoadOp       vk.AttachmentLoadOp
	StoreOp      vk.AttachmentStoreOp
	ClearValue   vk.ClearValue
}

// PassResources groups a pass's attachment and binding declarations.
type PassResources struct {
	ColorOutputs      []Attachment
	DepthStencilOutput *Attachment
	SampledImages     []Attachment
	StorageImages     []Attachment
	BufferInputs      []Attachment
	BufferOutputs     []Attachment
}

// DrawCallback is invoked once per pass per frame to record draw
// commands. It receives everything it needs to write descriptors and
// issue draws; the orchestrator only forwards the scene and material
// cache and records no draws itself.
type DrawCallback func(ctx DrawContext)

// DrawContext is passed to a pass's DrawCallback, matching §4.4 step
// (f): command list, frame slot, pipeline layout, per-frame resources,
// scene, resource cache, and an optional material cache. The callback
// writes descriptors, binds vertex/index buffers, and issues draws.
type DrawContext struct {
	CommandBuffer  vk.CommandBuffer
	FrameSlot      int
	PipelineLayout vk.PipelineLayout
	Resources      *PerFrameGpuResources
	Scene          *scene.Scene
	Cache          *rescache.Manager
	Materials      map[string]*material.PBRMaterial
}

// Pass is one entry in a render-pass declaration sequence.
type Pass struct {
	Name         string
	ShaderPrefix string
	Resources    PassResources
	RenderExtent vk.Extent2D

	OnDraw DrawCallback
}
