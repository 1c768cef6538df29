// Package window adapts a GLFW-backed platform window to the engine's
// host-window contract of §6: a window handle, its current framebuffer
// extent, a resize callback, and a wait-idle-then-drop shutdown path.
// It generalizes celer-vkg's GraphicsApp.SetWindow/refreshScreenExtent/
// Resize (graphicsapp.go) out of the monolithic app object into a
// standalone collaborator the frame orchestrator and device context sit
// beside rather than inside.
package window

import (
	"fmt"

	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/Shanyu-Yun/RenderV2/internal/renderr"
)

// ResizeCallback is invoked with the new framebuffer extent whenever the
// window is resized, from PollEvents' call to glfw's event loop.
type ResizeCallback func(extent vk.Extent2D)

// Window owns a GLFW window and reports its Vulkan-facing surface and
// extent, per the host-window contract.
type Window struct {
	handle *glfw.Window
	extent vk.Extent2D

	onResize ResizeCallback
}

// Options configures window creation.
type Options struct {
	Title         string
	Width, Height int
	Resizable     bool
}

var initialized bool

// New creates a platform window sized to Width x Height. glfw.Init is
// called only when GLFW is not already initialized: on the first call,
// and again after Terminate.
func New(opts Options) (*Window, error) {
	if !initialized {
		if err := glfw.Init(); err != nil {
			return nil, fmt.Errorf("window: glfw init: %w", renderr.NotInitialized)
		}
		initialized = true
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if opts.Resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}

	handle, err := glfw.CreateWindow(width, height, opts.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("window: create window: %w", renderr.DeviceError)
	}

	w := &Window{handle: handle}
	w.refreshExtent()

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, fbw, fbh int) {
		w.extent = vk.Extent2D{Width: uint32(fbw), Height: uint32(fbh)}
		if w.onResize != nil {
			w.onResize(w.extent)
		}
	})

	return w, nil
}

func (w *Window) refreshExtent() {
	fbw, fbh := w.handle.GetFramebufferSize()
	w.extent = vk.Extent2D{Width: uint32(fbw), Height: uint32(fbh)}
}

// Extent returns the current framebuffer extent.
func (w *Window) Extent() vk.Extent2D { return w.extent }

// OnResize registers cb to run whenever the framebuffer is resized.
// Only one callback is retained; a later call replaces the earlier one.
func (w *Window) OnResize(cb ResizeCallback) { w.onResize = cb }

// RequiredInstanceExtensions returns the Vulkan instance extensions GLFW
// needs to present to this window, for wiring into devicectx.AppInfo.
func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.GetRequiredInstanceExtensions()
}

// CreateSurface creates the vk.Surface this window presents through.
func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surfacePtr, err := w.handle.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, fmt.Errorf("window: create surface: %w", renderr.DeviceError)
	}
	return vk.SurfaceFromPointer(surfacePtr), nil
}

// ShouldClose reports whether the user has requested the window close.
func (w *Window) ShouldClose() bool { return w.handle.ShouldClose() }

// PollEvents pumps the platform event queue, delivering any pending
// resize callbacks.
func PollEvents() { glfw.PollEvents() }

// Close destroys the underlying GLFW window. It does not tear down
// GLFW itself; callers that own the process lifecycle call Terminate.
func (w *Window) Close() {
	if w == nil || w.handle == nil {
		return
	}
	w.handle.Destroy()
	w.handle = nil
}

// Terminate shuts down GLFW. Call once, after every Window has been
// closed and the device has gone idle.
func Terminate() {
	if initialized {
		glfw.Terminate()
		initialized = false
	}
}
