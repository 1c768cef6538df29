package frame

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/descriptor"
	"github.com/Shanyu-Yun/RenderV2/devicectx"
	"github.com/Shanyu-Yun/RenderV2/gpu"
	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
	"github.com/Shanyu-Yun/RenderV2/material"
	"github.com/Shanyu-Yun/RenderV2/pipeline"
	"github.com/Shanyu-Yun/RenderV2/rescache"
	"github.com/Shanyu-Yun/RenderV2/scene"
	"github.com/Shanyu-Yun/RenderV2/transfer"
)

// Orchestrator is the frame record orchestrator of §4.4: it owns a
// declarative pass sequence, one PerFrameGpuResources per in-flight
// frame, and a pipeline cache keyed by shaderPrefix|colorFormats|
// depthFormat, generalizing celer-vkg's single hardcoded render loop
// (graphicsapp.go's DrawFrameSync) into data-driven passes over
// dynamic rendering.
type Orchestrator struct {
	ctx      *devicectx.Context
	alloc    *gpu.Allocator
	transfer *transfer.Engine
	layouts  *descriptor.LayoutCache
	pool     *descriptor.PoolAllocator
	pipes     *pipeline.Cache
	resources *rescache.Manager
	materials map[string]*material.PBRMaterial

	framesInFlight int
	cameraUBOSize  int
	lightUBOSize   int

	passNames map[string]bool
	passes    []*Pass
	perFrame  []*PerFrameGpuResources

	swapchainName string
	namedImages   map[string]*gpu.ManagedImage
}

// SetMaterials installs the optional material cache forwarded to draw
// callbacks via DrawContext.Materials. Passing nil clears it.
func (o *Orchestrator) SetMaterials(materials map[string]*material.PBRMaterial) {
	o.materials = materials
}

// RegisterImage binds name so any pass Attachment referencing it
// resolves to image's handle and default view. Names are looked up only
// in this registry, not in the resource cache. Re-registering a name
// replaces the previous binding; it does not close it.
func (o *Orchestrator) RegisterImage(name string, image *gpu.ManagedImage) {
	o.namedImages[name] = image
}

// NewOrchestrator builds an empty orchestrator with framesInFlight (>=1)
// per-frame resource slots not yet allocated (the first AddPass
// allocates them for that pass's shader prefix).
func NewOrchestrator(ctx *devicectx.Context, alloc *gpu.Allocator, xfer *transfer.Engine,
	layouts *descriptor.LayoutCache, pool *descriptor.PoolAllocator, resources *rescache.Manager,
	framesInFlight, cameraUBOSize, lightUBOSize int) (*Orchestrator, error) {
	if framesInFlight < 1 {
		return nil, fmt.Errorf("frame: framesInFlight must be >= 1: %w", renderr.InvalidArgument)
	}
	return &Orchestrator{
		ctx: ctx, alloc: alloc, transfer: xfer, layouts: layouts, pool: pool,
		pipes: pipeline.New(ctx.Device), resources: resources,
		framesInFlight: framesInFlight, cameraUBOSize: cameraUBOSize, lightUBOSize: lightUBOSize,
		passNames:     make(map[string]bool),
		swapchainName: SwapchainAttachment,
		namedImages:   make(map[string]*gpu.ManagedImage),
	}, nil
}

// AddPass registers a pass; duplicate names are an error, matching
// §4.4's "the sequence guarantees name uniqueness" rule.
func (o *Orchestrator) AddPass(p Pass) error {
	if p.Name == "" {
		return fmt.Errorf("frame: pass name is empty: %w", renderr.InvalidArgument)
	}
	if o.passNames[p.Name] {
		return fmt.Errorf("frame: duplicate pass name %q: %w", p.Name, renderr.InvalidArgument)
	}

	program, ok := o.resources.Shaders.Get(p.ShaderPrefix)
	if !ok {
		return fmt.Errorf("frame: unknown shader prefix %q: %w", p.ShaderPrefix, renderr.NotFound)
	}

	if o.perFrame == nil {
		o.perFrame = make([]*PerFrameGpuResources, o.framesInFlight)
		for i := range o.perFrame {
			pf, err := newPerFrameResources(o.alloc, o.pool, uint64(o.cameraUBOSize), uint64(o.lightUBOSize), program.Schemas)
			if err != nil {
				return err
			}
			o.perFrame[i] = pf
		}
	}

	o.passNames[p.Name] = true
	o.passes = append(o.passes, &p)
	return nil
}

func colorFormatsOf(p *Pass) []vk.Format {
	out := make([]vk.Format, len(p.Resources.ColorOutputs))
	for i, a := range p.Resources.ColorOutputs {
		out[i] = a.Format
	}
	return out
}

func depthFormatOf(p *Pass) vk.Format {
	if p.Resources.DepthStencilOutput != nil {
		return p.Resources.DepthStencilOutput.Format
	}
	return vk.FormatUndefined
}

func (o *Orchestrator) pipelineFor(p *Pass, program *rescache.ShaderProgram, extent vk.Extent2D) (*pipeline.Entry, error) {
	key := pipeline.Key(p.ShaderPrefix, colorFormatsOf(p), depthFormatOf(p))
	cfg := pipeline.DefaultGraphicsPipelineConfig()
	cfg.ColorFormats = colorFormatsOf(p)
	cfg.DepthFormat = depthFormatOf(p)
	if program.VertexModule != nil {
		cfg.AddShaderStage(vk.PipelineShaderStageCreateInfo{
			SType: vk.StructureTypePipelineShaderStageCreateInfo,
			Stage: vk.ShaderStageVertexBit, Module: program.VertexModule, PName: safeString("main"),
		})
	}
	if program.FragmentModule != nil {
		cfg.AddShaderStage(vk.PipelineShaderStageCreateInfo{
			SType: vk.StructureTypePipelineShaderStageCreateInfo,
			Stage: vk.ShaderStageFragmentBit, Module: program.FragmentModule, PName: safeString("main"),
		})
	}
	for set := uint32(0); ; set++ {
		schema, ok := program.Schemas[set]
		if !ok {
			break
		}
		cfg.AddDescriptorSetLayout(schema.Layout)
	}
	return o.pipes.GetOrBuild(key, cfg)
}

// RecordFrame implements §4.4's "record frame" steps 1-2 against an
// already-recording command buffer: builds and uploads the camera/light
// UBOs, then walks the pass sequence issuing barriers, dynamic
// rendering, pipeline binds, and draw callbacks.
func (o *Orchestrator) RecordFrame(cmd vk.CommandBuffer, frameSlot, imageIndex int, s *scene.Scene, windowExtent vk.Extent2D) error {
	pf := o.perFrame[frameSlot]

	var cam *scene.Camera
	if node := s.GetActiveCamera(); node != nil {
		cam = node.Camera
	} else {
		cam = &scene.Camera{FovY: 1, Aspect: 1, NearClip: 0.1, FarClip: 100}
	}
	cameraBytes := scene.BuildCameraUBO(cam)
	lightBytes := scene.BuildLightUBO(s.Lights())

	if err := o.transfer.WriteToUniformBuffer(pf.CameraBuffer, cameraBytes, 0); err != nil {
		return err
	}
	if err := o.transfer.WriteToUniformBuffer(pf.LightBuffer, lightBytes, 0); err != nil {
		return err
	}

	for _, p := range o.passes {
		program, ok := o.resources.Shaders.Get(p.ShaderPrefix)
		if !ok {
			return fmt.Errorf("frame: pass %q: unknown shader prefix %q: %w", p.Name, p.ShaderPrefix, renderr.NotFound)
		}

		extent := p.RenderExtent
		if extent.Width == 0 || extent.Height == 0 {
			extent = windowExtent
		}

		colorAttachments := make([]vk.RenderingAttachmentInfo, len(p.Resources.ColorOutputs))
		for i, a := range p.Resources.ColorOutputs {
			view, image := o.resolveAttachment(a, imageIndex)
			if a.ResourceName == o.swapchainName {
				transfer.RecordImageBarrier(cmd, image, vk.ImageLayoutUndefined, vk.ImageLayoutColorAttachmentOptimal,
					vk.ImageAspectFlags(vk.ImageAspectColorBit), 0, 1, 0, 1)
			}
			colorAttachments[i] = vk.RenderingAttachmentInfo{
				SType:       vk.StructureTypeRenderingAttachmentInfo,
				ImageView:   view,
				ImageLayout: vk.ImageLayoutColorAttachmentOptimal,
				LoadOp:      a.LoadOp,
				StoreOp:     a.StoreOp,
				ClearValue:  a.ClearValue,
			}
		}

		var depthAttachment *vk.RenderingAttachmentInfo
		if d := p.Resources.DepthStencilOutput; d != nil {
			view, image := o.resolveAttachment(*d, imageIndex)
			transfer.RecordImageBarrier(cmd, image, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal,
				vk.ImageAspectFlags(vk.ImageAspectDepthBit), 0, 1, 0, 1)
			depthAttachment = &vk.RenderingAttachmentInfo{
				SType:       vk.StructureTypeRenderingAttachmentInfo,
				ImageView:   view,
				ImageLayout: vk.ImageLayoutDepthStencilAttachmentOptimal,
				LoadOp:      d.LoadOp,
				StoreOp:     d.StoreOp,
				ClearValue:  d.ClearValue,
			}
		}

		renderingInfo := vk.RenderingInfo{
			SType:                vk.StructureTypeRenderingInfo,
			RenderArea:           vk.Rect2D{Offset: vk.Offset2D{}, Extent: extent},
			LayerCount:           1,
			ColorAttachmentCount: uint32(len(colorAttachments)),
			PColorAttachments:    colorAttachments,
			PDepthAttachment:     depthAttachment,
		}
		vk.CmdBeginRendering(cmd, &renderingInfo)

		vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
			Width: float32(extent.Width), Height: float32(extent.Height), MinDepth: 0, MaxDepth: 1,
		}})
		vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{Extent: extent}})

		entry, err := o.pipelineFor(p, program, extent)
		if err != nil {
			return err
		}
		vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, entry.Pipeline)

		if p.OnDraw != nil {
			p.OnDraw(DrawContext{
				CommandBuffer:  cmd,
				FrameSlot:      frameSlot,
				PipelineLayout: entry.Layout,
				Resources:      pf,
				Scene:          s,
				Cache:          o.resources,
				Materials:      o.materials,
			})
		}

		vk.CmdEndRendering(cmd)

		for _, a := range p.Resources.ColorOutputs {
			if a.ResourceName == o.swapchainName {
				_, image := o.resolveAttachment(a, imageIndex)
				transfer.RecordImageBarrier(cmd, image, vk.ImageLayoutColorAttachmentOptimal, vk.ImageLayoutPresentSrc,
					vk.ImageAspectFlags(vk.ImageAspectColorBit), 0, 1, 0, 1)
			}
		}
	}
	return nil
}

// resolveAttachment implements §6's reserved attachment name: "Swapchain"
// binds the current frame's swapchain image (modulo image count); any
// other name binds to whatever RegisterImage last associated with it.
// An unregistered non-Swapchain name resolves to null handles, which
// the validation layers will flag; names are not looked up in the
// resource cache.
func (o *Orchestrator) resolveAttachment(a Attachment, imageIndex int) (vk.ImageView, vk.Image) {
	if a.ResourceName == o.swapchainName {
		i := imageIndex % len(o.ctx.SwapchainViews)
		return o.ctx.SwapchainViews[i], o.ctx.SwapchainImages[i]
	}
	if img, ok := o.namedImages[a.ResourceName]; ok {
		return img.DefaultView(), img.Handle()
	}
	return vk.NullImageView, vk.NullImage
}

// OnResize implements §4.4's resize contract: wait idle, let the caller
// recreate the swapchain, then drop cached pipelines so they rebuild
// against the new formats on next use.
func (o *Orchestrator) OnResize() error {
	if err := o.ctx.WaitIdle(); err != nil {
		return err
	}
	o.pipes.Destroy()
	o.pipes = pipeline.New(o.ctx.Device)
	return nil
}

// Close releases every per-frame resource and the pipeline cache.
func (o *Orchestrator) Close() {
	for _, pf := range o.perFrame {
		pf.Close()
	}
	o.pipes.Destroy()
}

func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}
