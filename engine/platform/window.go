package platform

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/glstudios/laplace/engine/core"
)

// Window is a glfw window without a client API, ready for a Vulkan surface.
type Window struct {
	loop   *EventLoop
	handle *glfw.Window
	redraw bool

	// latest framebuffer size not yet delivered
	resizePending bool
	width, height uint32
}

func (l *EventLoop) CreateWindow(attrs core.WindowAttributes) (core.Window, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.
	glfw.WindowHint(glfw.Resizable, glfwBool(attrs.Resizable))
	if attrs.Name.General != "" {
		glfw.WindowHintString(glfw.X11ClassName, attrs.Name.General)
	}
	if attrs.Name.Instance != "" {
		glfw.WindowHintString(glfw.X11InstanceName, attrs.Name.Instance)
	}

	handle, err := glfw.CreateWindow(int(attrs.Width), int(attrs.Height), attrs.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrWindowCreation, err)
	}

	w := &Window{
		loop:   l,
		handle: handle,
		// the first frame is drawn without waiting for the OS to ask
		redraw: true,
	}
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(uint32(max(width, 0)), uint32(max(height, 0)))
	})
	handle.SetCloseCallback(func(gw *glfw.Window) {
		// closing is up to the handler
		gw.SetShouldClose(false)
		l.push(core.WindowEvent{Code: core.EVENT_CODE_CLOSE_REQUESTED})
	})
	handle.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		l.push(core.WindowEvent{Code: core.EVENT_CODE_FOCUS_CHANGED, Focused: focused})
	})
	handle.SetPosCallback(func(_ *glfw.Window, x, y int) {
		l.push(core.WindowEvent{Code: core.EVENT_CODE_MOVED, Width: uint32(max(x, 0)), Height: uint32(max(y, 0))})
	})
	handle.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		l.push(core.WindowEvent{Code: core.EVENT_CODE_ICONIFIED, Focused: !iconified})
	})
	handle.SetRefreshCallback(func(*glfw.Window) {
		w.redraw = true
	})

	l.windows = append(l.windows, w)
	width, height := w.InnerSize()
	core.LogInfo("Window %q created (%dx%d).", attrs.Title, width, height)
	return w, nil
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// InnerSize is the framebuffer size in pixels.
func (w *Window) InnerSize() (uint32, uint32) {
	if w.handle == nil {
		return 0, 0
	}
	width, height := w.handle.GetFramebufferSize()
	return uint32(max(width, 0)), uint32(max(height, 0))
}

// resized records a new framebuffer size. Sizes reported before the next
// dispatch collapse into the last one.
func (w *Window) resized(width, height uint32) {
	w.width = width
	w.height = height
	w.resizePending = true
}

// RequestRedraw queues a REDRAW_REQUESTED event for the next loop iteration.
// Requests made before then collapse into one.
func (w *Window) RequestRedraw() {
	w.redraw = true
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.GetRequiredInstanceExtensions()
}

func (w *Window) CreateWindowSurface(instance interface{}) (uintptr, error) {
	if w.handle == nil {
		return 0, fmt.Errorf("%w: window destroyed", core.ErrSurfaceCreation)
	}
	return w.handle.CreateWindowSurface(instance, nil)
}

func (w *Window) Destroy() {
	w.loop.remove(w)
	if w.handle == nil {
		return
	}
	w.handle.Destroy()
	w.handle = nil
	core.LogDebug("Window destroyed.")
}
