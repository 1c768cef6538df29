// Package pipeline builds graphics pipelines for dynamic rendering (no
// render-pass/framebuffer objects) and caches them by
// shaderPrefix|colorFormats|depthFormat, generalizing celer-vkg's
// GraphicsPipelineConfig and its per-string map[string]vk.Pipeline cache
// in graphicsapp.go.
package pipeline

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/meshio"
)

// Config mirrors celer-vkg's GraphicsPipelineConfig, generalized to
// dynamic rendering: it carries color/depth attachment formats instead
// of a render pass handle.
type Config struct {
	ShaderStages         []vk.PipelineShaderStageCreateInfo
	DescriptorSetLayouts []vk.DescriptorSetLayout
	PushConstantRanges   []vk.PushConstantRange

	ColorFormats []vk.Format
	DepthFormat  vk.Format

	VertexInputBindingDescriptions   []vk.VertexInputBindingDescription
	VertexInputAttributeDescriptions []vk.VertexInputAttributeDescription

	PrimitiveTopology      vk.PrimitiveTopology
	PrimitiveRestartEnable vk.Bool32
	PolygonMode            vk.PolygonMode
	LineWidth              float32
	CullMode               vk.CullModeFlagBits
	FrontFace              vk.FrontFace
	DynamicState           []vk.DynamicState

	BlendAttachments []vk.PipelineColorBlendAttachmentState

	DepthTestEnable  bool
	DepthWriteEnable bool
	DepthCompareOp   vk.CompareOp
}

// vertexLocations gives the fixed mesh-pipeline attribute layout of
// §3/§4.4: position at location 1, normal at 2, texCoord at 3, color at
// 0, one binding at index 0 with stride sizeof(meshio.Vertex).
func vertexLocations() []vk.VertexInputAttributeDescription {
	var v meshio.Vertex
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: uint32(unsafe.Offsetof(v.Color))},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(v.Position))},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(v.Normal))},
		{Location: 3, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(v.TexCoord))},
	}
}

// DefaultGraphicsPipelineConfig returns the §4.4 default pipeline
// parameters: triangle-list topology, dynamic viewport/scissor, fill
// polygon mode, back-face cull, CCW front face, depth test+write on
// with compare-less, blending disabled, one vertex binding matching
// meshio.Vertex.
func DefaultGraphicsPipelineConfig() *Config {
	return &Config{
		PrimitiveTopology:      vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
		PolygonMode:            vk.PolygonModeFill,
		LineWidth:              1.0,
		CullMode:               vk.CullModeBackBit,
		FrontFace:              vk.FrontFaceCounterClockwise,
		DynamicState:           []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
		DepthTestEnable:        true,
		DepthWriteEnable:       true,
		DepthCompareOp:         vk.CompareOpLess,
		VertexInputBindingDescriptions: []vk.VertexInputBindingDescription{
			{Binding: 0, Stride: uint32(unsafe.Sizeof(meshio.Vertex{})), InputRate: vk.VertexInputRateVertex},
		},
		VertexInputAttributeDescriptions: vertexLocations(),
	}
}

// AddShaderStage appends a pre-built shader stage (module + entry
// point) to the config.
func (c *Config) AddShaderStage(stage vk.PipelineShaderStageCreateInfo) *Config {
	c.ShaderStages = append(c.ShaderStages, stage)
	return c
}

// AddDescriptorSetLayout appends a descriptor-set layout to the
// pipeline layout this config will build.
func (c *Config) AddDescriptorSetLayout(layout vk.DescriptorSetLayout) *Config {
	c.DescriptorSetLayouts = append(c.DescriptorSetLayouts, layout)
	return c
}
