package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/glstudios/laplace/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type ControlFlow int

const (
	// ControlFlowPoll returns from each pump immediately, for continuous rendering.
	ControlFlowPoll ControlFlow = iota
	// ControlFlowWait blocks until an OS event arrives or a redraw is pending.
	ControlFlowWait
)

// waitTimeout caps a blocking wait so cancellation is still noticed.
const waitTimeout = 0.1

// EventLoop owns the platform and dispatches its events to an
// core.EventHandler. It must be used from the main thread only.
type EventLoop struct {
	ctx     context.Context
	flow    ControlFlow
	queue   *core.EventQueue
	windows []*Window
	exiting bool

	// pump processes pending OS events. wait allows it to block.
	pump      func(wait bool)
	terminate func()
}

// NewEventLoop initializes glfw.
func NewEventLoop() (*EventLoop, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize glfw: %w", core.ErrWindowCreation, err)
	}
	core.LogDebug("glfw %s initialized.", glfw.GetVersionString())
	return newEventLoop(glfwPump, glfw.Terminate), nil
}

func newEventLoop(pump func(wait bool), terminate func()) *EventLoop {
	return &EventLoop{
		ctx:       context.Background(),
		flow:      ControlFlowPoll,
		queue:     core.NewEventQueue(core.DefaultEventQueueSize),
		pump:      pump,
		terminate: terminate,
	}
}

func glfwPump(wait bool) {
	if wait {
		glfw.WaitEventsTimeout(waitTimeout)
		return
	}
	glfw.PollEvents()
}

func (l *EventLoop) SetControlFlow(flow ControlFlow) {
	l.flow = flow
}

// Context is the context Run was started with.
func (l *EventLoop) Context() context.Context {
	return l.ctx
}

func (l *EventLoop) Exit() {
	if !l.exiting {
		core.LogDebug("event loop exit requested")
	}
	l.exiting = true
}

func (l *EventLoop) Exiting() bool {
	return l.exiting
}

// Run dispatches events to h until Exit is called, h fails or ctx is
// cancelled. Cancellation is a clean stop and returns nil.
func (l *EventLoop) Run(ctx context.Context, h core.EventHandler) error {
	l.ctx = ctx
	if err := h.Resumed(l); err != nil {
		return err
	}

	for !l.exiting {
		if ctx.Err() != nil {
			core.LogInfo("event loop stopped: %s", context.Cause(ctx))
			return nil
		}

		l.pump(l.flow == ControlFlowWait && !l.pending())

		if err := l.queue.Drain(l, h); err != nil {
			return err
		}
		if err := l.flush(h); err != nil {
			return err
		}
		if l.exiting {
			break
		}
		if err := h.AboutToWait(l); err != nil {
			return err
		}
	}

	if dropped := l.queue.Dropped(); dropped > 0 {
		core.LogWarn("%d platform events were dropped", dropped)
	}
	return nil
}

// pending reports whether a window has a resize or redraw to deliver.
func (l *EventLoop) pending() bool {
	for _, w := range l.windows {
		if w.redraw || w.resizePending {
			return true
		}
	}
	return false
}

// flush delivers the latest size and then the pending redraw of every
// window. They never go through the bounded queue, so an overflow of other
// events cannot lose them.
func (l *EventLoop) flush(h core.EventHandler) error {
	windows := append([]*Window(nil), l.windows...)
	for _, w := range windows {
		if l.exiting {
			return nil
		}
		if w.resizePending {
			w.resizePending = false
			event := core.WindowEvent{Code: core.EVENT_CODE_RESIZED, Width: w.width, Height: w.height}
			if err := h.WindowEvent(l, event); err != nil {
				return err
			}
		}
		if l.exiting {
			return nil
		}
		if w.redraw {
			w.redraw = false
			if err := h.WindowEvent(l, core.WindowEvent{Code: core.EVENT_CODE_REDRAW_REQUESTED}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *EventLoop) push(event core.WindowEvent) {
	if l.exiting {
		return
	}
	l.queue.Push(event)
}

func (l *EventLoop) remove(w *Window) {
	for i, candidate := range l.windows {
		if candidate == w {
			l.windows = append(l.windows[:i], l.windows[i+1:]...)
			return
		}
	}
}

// Terminate destroys the windows left and shuts glfw down. Graphics
// resources bound to the windows must be released first.
func (l *EventLoop) Terminate() {
	for len(l.windows) > 0 {
		l.windows[0].Destroy()
	}
	if l.terminate != nil {
		l.terminate()
		l.terminate = nil
		core.LogDebug("Platform terminated.")
	}
}
