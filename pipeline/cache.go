package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// Entry is a built pipeline plus the layout it was created with.
type Entry struct {
	Pipeline vk.Pipeline
	Layout   vk.PipelineLayout
}

// Cache deduplicates pipeline builds by a string key of
// shaderPrefix|colorFormats|depthFormat, matching the original
// renderer's string-concatenation cache key, generalized from the
// teacher's map[string]vk.Pipeline in graphicsapp.go.
type Cache struct {
	device vk.Device

	mu      sync.Mutex
	entries map[string]*Entry
}

// New returns an empty pipeline cache bound to device.
func New(device vk.Device) *Cache {
	return &Cache{device: device, entries: make(map[string]*Entry)}
}

// Key builds the cache key for a shader prefix and target attachment
// formats.
func Key(shaderPrefix string, colorFormats []vk.Format, depthFormat vk.Format) string {
	var b strings.Builder
	b.WriteString(shaderPrefix)
	b.WriteByte('|')
	for i, f := range colorFormats {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", f)
	}
	b.WriteByte('|')
	fmt.Fprintf(&b, "%d", depthFormat)
	return b.String()
}

// GetOrBuild returns the cached pipeline for key, building it via
// cfg/colorFormats/depthFormat if absent.
func (c *Cache) GetOrBuild(key string, cfg *Config) (*Entry, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	e, err := c.build(cfg)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		vk.DestroyPipeline(c.device, e.Pipeline, nil)
		vk.DestroyPipelineLayout(c.device, e.Layout, nil)
		return existing, nil
	}
	c.entries[key] = e
	return e, nil
}

func (c *Cache) build(cfg *Config) (*Entry, error) {
	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(cfg.DescriptorSetLayouts)),
		PSetLayouts:            cfg.DescriptorSetLayouts,
		PushConstantRangeCount: uint32(len(cfg.PushConstantRanges)),
		PPushConstantRanges:    cfg.PushConstantRanges,
	}
	var layout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(c.device, &layoutInfo, nil, &layout)); err != nil {
		return nil, fmt.Errorf("pipeline: create pipeline layout: %w", renderr.DeviceError)
	}

	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(cfg.VertexInputBindingDescriptions)),
		PVertexBindingDescriptions:      cfg.VertexInputBindingDescriptions,
		VertexAttributeDescriptionCount: uint32(len(cfg.VertexInputAttributeDescriptions)),
		PVertexAttributeDescriptions:    cfg.VertexInputAttributeDescriptions,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               cfg.PrimitiveTopology,
		PrimitiveRestartEnable: cfg.PrimitiveRestartEnable,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	raster := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             cfg.PolygonMode,
		LineWidth:               cfg.LineWidth,
		CullMode:                vk.CullModeFlags(cfg.CullMode),
		FrontFace:               cfg.FrontFace,
		DepthBiasEnable:         vk.False,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: vk.SampleCount1Bit,
	}

	blendAttachments := cfg.BlendAttachments
	if blendAttachments == nil {
		mask := vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit)
		blendAttachments = make([]vk.PipelineColorBlendAttachmentState, len(cfg.ColorFormats))
		for i := range blendAttachments {
			blendAttachments[i] = vk.PipelineColorBlendAttachmentState{ColorWriteMask: mask, BlendEnable: vk.False}
		}
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
	}

	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(cfg.DynamicState)),
		PDynamicStates:    cfg.DynamicState,
	}

	dte, dwe := vk.False, vk.False
	if cfg.DepthTestEnable {
		dte = vk.True
	}
	if cfg.DepthWriteEnable {
		dwe = vk.True
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.Bool32(dte),
		DepthWriteEnable: vk.Bool32(dwe),
		DepthCompareOp:   cfg.DepthCompareOp,
		MinDepthBounds:   0.0,
		MaxDepthBounds:   1.0,
	}

	renderingInfo := vk.PipelineRenderingCreateInfo{
		SType:                   vk.StructureTypePipelineRenderingCreateInfo,
		ColorAttachmentCount:    uint32(len(cfg.ColorFormats)),
		PColorAttachmentFormats: cfg.ColorFormats,
		DepthAttachmentFormat:   cfg.DepthFormat,
	}

	createInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		PNext:               unsafe.Pointer(&renderingInfo),
		StageCount:          uint32(len(cfg.ShaderStages)),
		PStages:             cfg.ShaderStages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &raster,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              layout,
	}

	pipelines := make([]vk.Pipeline, 1)
	if err := vk.Error(vk.CreateGraphicsPipelines(c.device, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{createInfo}, nil, pipelines)); err != nil {
		vk.DestroyPipelineLayout(c.device, layout, nil)
		return nil, fmt.Errorf("pipeline: create graphics pipeline: %w", renderr.DeviceError)
	}

	return &Entry{Pipeline: pipelines[0], Layout: layout}, nil
}

// Destroy releases every pipeline and layout this cache created.
func (c *Cache) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		vk.DestroyPipeline(c.device, e.Pipeline, nil)
		vk.DestroyPipelineLayout(c.device, e.Layout, nil)
	}
	c.entries = nil
}
