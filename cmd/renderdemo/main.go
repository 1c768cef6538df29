// Command renderdemo wires the whole engine core together end to end:
// a window, a device context, the GPU allocator and transfer engine,
// the descriptor and pipeline caches, the resource caches, a
// camera-and-light scene, and the frame orchestrator, drawing the default cube each
// frame. It exists as a smoke test for the packages it imports, not as
// a sample application in its own right.
package main

import (
	"log"
	"math/bits"
	"runtime"
	"time"

	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/descriptor"
	"github.com/Shanyu-Yun/RenderV2/devicectx"
	"github.com/Shanyu-Yun/RenderV2/frame"
	"github.com/Shanyu-Yun/RenderV2/gpu"
	"github.com/Shanyu-Yun/RenderV2/internal/mathx"
	"github.com/Shanyu-Yun/RenderV2/meshio"
	"github.com/Shanyu-Yun/RenderV2/rescache"
	"github.com/Shanyu-Yun/RenderV2/scene"
	"github.com/Shanyu-Yun/RenderV2/texio"
	"github.com/Shanyu-Yun/RenderV2/transfer"
	"github.com/Shanyu-Yun/RenderV2/window"
)

func init() {
	// GLFW and the Vulkan loader both require the calling goroutine to
	// stay on one OS thread.
	runtime.LockOSThread()
}

const framesInFlight = 2

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	win, err := window.New(window.Options{Title: "renderdemo", Width: 1280, Height: 720, Resizable: true})
	if err != nil {
		return err
	}
	defer window.Terminate()
	defer win.Close()

	appInfo := devicectx.AppInfo{
		Name:              "renderdemo",
		EngineName:        "RenderV2",
		EnabledExtensions: win.RequiredInstanceExtensions(),
	}
	instance, err := devicectx.CreateInstance(appInfo)
	if err != nil {
		return err
	}
	surface, err := win.CreateSurface(instance)
	if err != nil {
		return err
	}

	ctx, err := devicectx.New(devicectx.Options{
		App:              appInfo,
		Surface:          surface,
		DeviceExtensions: []string{"VK_KHR_swapchain"},
		FramesInFlight:   framesInFlight,
	})
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	alloc := gpu.New(ctx)
	xfer := transfer.New(ctx, alloc, transfer.DefaultConfig())
	defer xfer.Close()

	layouts := descriptor.NewLayoutCache(ctx.Device)
	defer layouts.Destroy()

	pool, err := descriptor.NewPoolAllocator(ctx.Device, descriptor.DefaultPoolConfig())
	if err != nil {
		return err
	}
	defer pool.Cleanup()

	resources := rescache.New(ctx.Device, layouts)
	if _, err := resources.Shaders.Load("assets/shaders", "unlit", false); err != nil {
		return err
	}

	orch, err := frame.NewOrchestrator(ctx, alloc, xfer, layouts, pool, resources,
		framesInFlight, scene.CameraUBOSize, scene.LightUBOSize)
	if err != nil {
		return err
	}
	defer orch.Close()

	mesh, _ := resources.Meshes.Get("default_cube")
	vbuf, ibuf, err := uploadMesh(alloc, xfer, mesh)
	if err != nil {
		return err
	}
	defer vbuf.Close()

	tex, _ := resources.Textures.Get("default_white")
	texImage, err := uploadTexture(alloc, xfer, tex)
	if err != nil {
		return err
	}
	defer texImage.Close()
	defer ibuf.Close()

	sc := scene.New()
	sc.AddCamera(scene.Camera{
		Position: mathx.Vec3{X: 0, Y: 1, Z: 3},
		Target:   mathx.Vec3{},
		Up:       mathx.Vec3{X: 0, Y: 1, Z: 0},
		FovY:     0.9, Aspect: float32(win.Extent().Width) / float32(win.Extent().Height),
		NearClip: 0.1, FarClip: 100,
	})
	sc.AddLight(scene.Light{
		Type: scene.LightDirectional, Color: mathx.Vec3{X: 1, Y: 1, Z: 1}, Intensity: 1,
		Direction: mathx.Vec3{X: -0.3, Y: -1, Z: -0.2},
	})

	pass := frame.Pass{
		Name:         "main",
		ShaderPrefix: "unlit",
		Resources: frame.PassResources{
			ColorOutputs: []frame.Attachment{{
				Type: frame.AttachmentColor, ResourceName: frame.SwapchainAttachment,
				Format: ctx.SwapchainFormat, SampleCount: vk.SampleCount1Bit,
				LoadOp: vk.AttachmentLoadOpClear, StoreOp: vk.AttachmentStoreOpStore,
			}},
		},
		OnDraw: func(dc frame.DrawContext) {
			vk.CmdBindVertexBuffers(dc.CommandBuffer, 0, 1, []vk.Buffer{vbuf.Handle()}, []vk.DeviceSize{0})
			vk.CmdBindIndexBuffer(dc.CommandBuffer, ibuf.Handle(), 0, vk.IndexTypeUint32)
			vk.CmdDrawIndexed(dc.CommandBuffer, uint32(len(mesh.Indices)), 1, 0, 0, 0)
		},
	}
	if err := orch.AddPass(pass); err != nil {
		return err
	}
	win.OnResize(func(vk.Extent2D) {
		if err := orch.OnResize(); err != nil {
			log.Printf("renderdemo: resize: %v", err)
		}
	})

	cmdPool, cmdBuffers, err := createCommandBuffers(ctx, framesInFlight)
	if err != nil {
		return err
	}
	defer vk.DestroyCommandPool(ctx.Device, cmdPool, nil)

	frameSlot := 0
	for !win.ShouldClose() {
		window.PollEvents()

		var imageIndex uint32
		res := vk.AcquireNextImage(ctx.Device, ctx.Swapchain, vk.MaxUint64, vk.NullSemaphore, vk.NullFence, &imageIndex)
		if res == vk.ErrorOutOfDate {
			if _, err := ctx.RecreateSwapchain(); err != nil {
				return err
			}
			continue
		}
		if err := vk.Error(res); err != nil {
			return err
		}

		cmd := cmdBuffers[frameSlot]
		vk.ResetCommandBuffer(cmd, 0)
		beginInfo := vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo}
		if err := vk.Error(vk.BeginCommandBuffer(cmd, &beginInfo)); err != nil {
			return err
		}
		if err := orch.RecordFrame(cmd, frameSlot, int(imageIndex), sc, ctx.SwapchainExtent); err != nil {
			return err
		}
		if err := vk.Error(vk.EndCommandBuffer(cmd)); err != nil {
			return err
		}

		submitInfo := []vk.SubmitInfo{{
			SType:              vk.StructureTypeSubmitInfo,
			CommandBufferCount: 1,
			PCommandBuffers:    []vk.CommandBuffer{cmd},
		}}
		if err := vk.Error(vk.QueueSubmit(ctx.GraphicsQueue, 1, submitInfo, vk.NullFence)); err != nil {
			return err
		}

		presentInfo := vk.PresentInfo{
			SType:          vk.StructureTypePresentInfo,
			SwapchainCount: 1,
			PSwapchains:    []vk.Swapchain{ctx.Swapchain},
			PImageIndices:  []uint32{imageIndex},
		}
		res = vk.QueuePresent(ctx.PresentQueue, &presentInfo)
		if res == vk.ErrorOutOfDate || res == vk.Suboptimal {
			if _, err := ctx.RecreateSwapchain(); err != nil {
				return err
			}
		}

		if err := ctx.WaitIdle(); err != nil {
			return err
		}
		frameSlot = (frameSlot + 1) % framesInFlight
		time.Sleep(time.Millisecond)
	}

	return nil
}

func createCommandBuffers(ctx *devicectx.Context, count int) (vk.CommandPool, []vk.CommandBuffer, error) {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: uint32(ctx.GraphicsFamily),
	}
	var pool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(ctx.Device, &poolInfo, nil, &pool)); err != nil {
		return nil, nil, err
	}

	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}
	buffers := make([]vk.CommandBuffer, count)
	if err := vk.Error(vk.AllocateCommandBuffers(ctx.Device, &allocInfo, buffers)); err != nil {
		vk.DestroyCommandPool(ctx.Device, pool, nil)
		return nil, nil, err
	}
	return pool, buffers, nil
}

func uploadMesh(alloc *gpu.Allocator, xfer *transfer.Engine, mesh *meshio.Data) (*gpu.ManagedBuffer, *gpu.ManagedBuffer, error) {
	vbytes := mesh.VertexBytes()
	ibytes := mesh.IndexBytes()

	vbuf, err := alloc.CreateBuffer(uint64(len(vbytes)), gpu.BufferUsageVertex|gpu.BufferUsageTransferDst, gpu.GpuOnly, "renderdemo.vertices")
	if err != nil {
		return nil, nil, err
	}
	ibuf, err := alloc.CreateBuffer(uint64(len(ibytes)), gpu.BufferUsageIndex|gpu.BufferUsageTransferDst, gpu.GpuOnly, "renderdemo.indices")
	if err != nil {
		vbuf.Close()
		return nil, nil, err
	}

	vtok, err := xfer.UploadToBuffer(0, vbuf, vbytes, 0)
	if err != nil {
		vbuf.Close()
		ibuf.Close()
		return nil, nil, err
	}
	itok, err := xfer.UploadToBuffer(0, ibuf, ibytes, 0)
	if err != nil {
		vbuf.Close()
		ibuf.Close()
		return nil, nil, err
	}
	if err := vtok.Wait(5 * time.Second); err != nil {
		return nil, nil, err
	}
	if err := itok.Wait(5 * time.Second); err != nil {
		return nil, nil, err
	}
	return vbuf, ibuf, nil
}

func uploadTexture(alloc *gpu.Allocator, xfer *transfer.Engine, tex *texio.Data) (*gpu.ManagedImage, error) {
	levels := uint32(bits.Len(uint(max(tex.Width, tex.Height))))
	if levels == 0 {
		levels = 1
	}

	img, err := alloc.CreateImage(gpu.ImageDesc{
		Width: uint32(tex.Width), Height: uint32(tex.Height), MipLevels: levels,
		Format: vk.FormatR8g8b8a8Unorm,
		Usage:  gpu.ImageUsageSampled | gpu.ImageUsageTransferDst | gpu.ImageUsageTransferSrc,
	}, vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}

	tok, err := xfer.UploadTextureWithMipmaps(0, img, tex.Pixels, uint32(tex.Width), uint32(tex.Height), levels)
	if err != nil {
		img.Close()
		return nil, err
	}
	if err := tok.Wait(5 * time.Second); err != nil {
		img.Close()
		return nil, err
	}
	return img, nil
}
