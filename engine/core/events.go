package core

import (
	"context"
	"fmt"

	"github.com/glstudios/laplace/engine/containers"
)

// System event codes delivered by the platform layer.
type SystemEventCode int

const (
	// The application may create its windows and graphics resources.
	EVENT_CODE_RESUMED SystemEventCode = 0x01

	// The window framebuffer changed size.
	/* Context usage:
	 * width  = event.Width
	 * height = event.Height
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x02

	// The user asked to close the window.
	EVENT_CODE_CLOSE_REQUESTED SystemEventCode = 0x03

	// The window should draw a new frame.
	EVENT_CODE_REDRAW_REQUESTED SystemEventCode = 0x04

	// Keyboard focus changed.
	/* Context usage:
	 * focused = event.Focused
	 */
	EVENT_CODE_FOCUS_CHANGED SystemEventCode = 0x05

	// The window moved on screen.
	EVENT_CODE_MOVED SystemEventCode = 0x06

	// The window was minimized or restored.
	EVENT_CODE_ICONIFIED SystemEventCode = 0x07

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

func (c SystemEventCode) String() string {
	switch c {
	case EVENT_CODE_RESUMED:
		return "resumed"
	case EVENT_CODE_RESIZED:
		return "resized"
	case EVENT_CODE_CLOSE_REQUESTED:
		return "close_requested"
	case EVENT_CODE_REDRAW_REQUESTED:
		return "redraw_requested"
	case EVENT_CODE_FOCUS_CHANGED:
		return "focus_changed"
	case EVENT_CODE_MOVED:
		return "moved"
	case EVENT_CODE_ICONIFIED:
		return "iconified"
	}
	return fmt.Sprintf("event(0x%02x)", int(c))
}

type WindowEvent struct {
	Code SystemEventCode
	// Width and Height carry the new framebuffer size for EVENT_CODE_RESIZED
	// and the new position for EVENT_CODE_MOVED.
	Width  uint32
	Height uint32
	// Focused is set for EVENT_CODE_FOCUS_CHANGED. For EVENT_CODE_ICONIFIED it
	// is set when the window was restored.
	Focused bool
}

// NameHint is the window class/instance pair window managers match on.
type NameHint struct {
	General  string
	Instance string
}

type WindowAttributes struct {
	Title     string
	Width     uint32
	Height    uint32
	Name      NameHint
	Resizable bool
}

// Window is the part of a platform window the application drives.
type Window interface {
	// InnerSize returns the current framebuffer size in pixels.
	InnerSize() (uint32, uint32)
	RequestRedraw()
	Destroy()
}

// EventLoop is handed to handlers while the loop is running.
type EventLoop interface {
	Context() context.Context
	CreateWindow(attrs WindowAttributes) (Window, error)
	// Exit stops dispatch. Events still queued are dropped.
	Exit()
	Exiting() bool
}

type EventHandler interface {
	Resumed(loop EventLoop) error
	WindowEvent(loop EventLoop, event WindowEvent) error
	// AboutToWait runs once per loop iteration after the queue was drained.
	AboutToWait(loop EventLoop) error
}

const DefaultEventQueueSize = 256

// EventQueue buffers platform events between a poll and their dispatch.
type EventQueue struct {
	events  *containers.RingQueue[WindowEvent]
	dropped uint64
}

func NewEventQueue(size int) *EventQueue {
	return &EventQueue{
		events: containers.NewRingQueue[WindowEvent](size),
	}
}

// Push queues an event. A full queue drops the event and counts it.
func (q *EventQueue) Push(event WindowEvent) {
	if err := q.events.Enqueue(event); err != nil {
		q.dropped++
		LogWarn("event queue full, dropping %s event (%d dropped so far)", event.Code, q.dropped)
	}
}

func (q *EventQueue) Len() int {
	return q.events.Len()
}

func (q *EventQueue) Dropped() uint64 {
	return q.dropped
}

// Drain dispatches queued events in order until the queue is empty, the
// handler fails or the loop starts exiting. Once the loop is exiting the
// remaining events are discarded.
func (q *EventQueue) Drain(loop EventLoop, h EventHandler) error {
	for !q.events.IsEmpty() {
		if loop.Exiting() {
			q.events.Clear()
			return nil
		}
		event, err := q.events.Dequeue()
		if err != nil {
			return err
		}
		if err := h.WindowEvent(loop, event); err != nil {
			return err
		}
	}
	if loop.Exiting() {
		q.events.Clear()
	}
	return nil
}
