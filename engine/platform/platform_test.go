package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glstudios/laplace/engine/core"
)

// scriptedHandler records what it was called with and runs the hooks set.
type scriptedHandler struct {
	resumed int
	events  []core.WindowEvent
	waits   int

	onResumed func(l core.EventLoop) error
	onEvent   func(l core.EventLoop, e core.WindowEvent) error
	onWait    func(l core.EventLoop) error
}

func (h *scriptedHandler) Resumed(l core.EventLoop) error {
	h.resumed++
	if h.onResumed != nil {
		return h.onResumed(l)
	}
	return nil
}

func (h *scriptedHandler) WindowEvent(l core.EventLoop, e core.WindowEvent) error {
	h.events = append(h.events, e)
	if h.onEvent != nil {
		return h.onEvent(l, e)
	}
	return nil
}

func (h *scriptedHandler) AboutToWait(l core.EventLoop) error {
	h.waits++
	if h.onWait != nil {
		return h.onWait(l)
	}
	return nil
}

func codes(events []core.WindowEvent) []core.SystemEventCode {
	var out []core.SystemEventCode
	for _, e := range events {
		out = append(out, e.Code)
	}
	return out
}

type pumpRecorder struct {
	calls []bool
	each  func(n int)
}

func (p *pumpRecorder) pump(wait bool) {
	p.calls = append(p.calls, wait)
	if p.each != nil {
		p.each(len(p.calls))
	}
}

func TestRunDispatchesQueuedEventsInOrder(t *testing.T) {
	p := &pumpRecorder{}
	l := newEventLoop(p.pump, nil)
	w := &Window{loop: l}
	l.windows = append(l.windows, w)
	p.each = func(n int) {
		if n == 1 {
			l.push(core.WindowEvent{Code: core.EVENT_CODE_FOCUS_CHANGED, Focused: true})
			w.resized(320, 240)
			w.resized(640, 480)
		}
		if n == 2 {
			l.push(core.WindowEvent{Code: core.EVENT_CODE_CLOSE_REQUESTED})
		}
	}

	h := &scriptedHandler{onEvent: func(l core.EventLoop, e core.WindowEvent) error {
		if e.Code == core.EVENT_CODE_CLOSE_REQUESTED {
			l.Exit()
		}
		return nil
	}}
	require.NoError(t, l.Run(context.Background(), h))

	assert.Equal(t, 1, h.resumed)
	assert.Equal(t, []core.SystemEventCode{core.EVENT_CODE_FOCUS_CHANGED, core.EVENT_CODE_RESIZED, core.EVENT_CODE_CLOSE_REQUESTED}, codes(h.events))
	assert.Equal(t, uint32(640), h.events[1].Width, "only the latest size is delivered")
	assert.Equal(t, uint32(480), h.events[1].Height)
	assert.Equal(t, 1, h.waits, "no AboutToWait once exiting")
}

func TestResizeIsDeliveredBeforeRedraw(t *testing.T) {
	l := newEventLoop(func(bool) {}, nil)
	w := &Window{loop: l, redraw: true}
	l.windows = append(l.windows, w)
	w.resized(1024, 768)

	h := &scriptedHandler{onWait: func(l core.EventLoop) error {
		l.Exit()
		return nil
	}}
	require.NoError(t, l.Run(context.Background(), h))
	assert.Equal(t, []core.SystemEventCode{core.EVENT_CODE_RESIZED, core.EVENT_CODE_REDRAW_REQUESTED}, codes(h.events))
}

func TestFullQueueKeepsResizeAndRedraw(t *testing.T) {
	p := &pumpRecorder{}
	l := newEventLoop(p.pump, nil)
	w := &Window{loop: l, redraw: true}
	l.windows = append(l.windows, w)
	p.each = func(n int) {
		for i := 0; i < core.DefaultEventQueueSize+50; i++ {
			l.push(core.WindowEvent{Code: core.EVENT_CODE_MOVED, Width: uint32(i)})
		}
		w.resized(uint32(1000+n), 700)
	}

	var widths []uint32
	frames := 0
	h := &scriptedHandler{onEvent: func(l core.EventLoop, e core.WindowEvent) error {
		switch e.Code {
		case core.EVENT_CODE_RESIZED:
			widths = append(widths, e.Width)
		case core.EVENT_CODE_REDRAW_REQUESTED:
			frames++
			if frames == 3 {
				l.Exit()
				return nil
			}
			w.RequestRedraw()
		}
		return nil
	}}
	require.NoError(t, l.Run(context.Background(), h))

	assert.NotZero(t, l.queue.Dropped())
	assert.Equal(t, 3, frames, "continuous redraw survives an overflow")
	assert.Equal(t, []uint32{1001, 1002, 1003}, widths)
}

func TestRunTurnsPendingRedrawIntoEvent(t *testing.T) {
	p := &pumpRecorder{}
	l := newEventLoop(p.pump, nil)
	w := &Window{loop: l, redraw: true}
	l.windows = append(l.windows, w)

	frames := 0
	h := &scriptedHandler{onEvent: func(l core.EventLoop, e core.WindowEvent) error {
		if e.Code != core.EVENT_CODE_REDRAW_REQUESTED {
			return nil
		}
		frames++
		if frames == 3 {
			l.Exit()
			return nil
		}
		w.RequestRedraw()
		w.RequestRedraw()
		return nil
	}}
	require.NoError(t, l.Run(context.Background(), h))

	assert.Equal(t, 3, frames, "repeated requests collapse into one event per iteration")
	assert.Len(t, p.calls, 3)
}

func TestRunWaitsOnlyWithoutPendingRedraw(t *testing.T) {
	p := &pumpRecorder{}
	l := newEventLoop(p.pump, nil)
	l.SetControlFlow(ControlFlowWait)
	w := &Window{loop: l, redraw: true}
	l.windows = append(l.windows, w)

	h := &scriptedHandler{onWait: func(l core.EventLoop) error {
		if len(p.calls) == 2 {
			l.Exit()
		}
		return nil
	}}
	require.NoError(t, l.Run(context.Background(), h))
	assert.Equal(t, []bool{false, true}, p.calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &pumpRecorder{}
	p.each = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	l := newEventLoop(p.pump, nil)

	h := &scriptedHandler{}
	require.NoError(t, l.Run(ctx, h))
	assert.Len(t, p.calls, 2)
	assert.Equal(t, ctx, l.Context())
}

func TestRunReturnsHandlerErrors(t *testing.T) {
	boom := errors.New("boom")

	l := newEventLoop(func(bool) {}, nil)
	err := l.Run(context.Background(), &scriptedHandler{onResumed: func(core.EventLoop) error { return boom }})
	assert.ErrorIs(t, err, boom)

	l = newEventLoop(func(bool) {}, nil)
	l.windows = append(l.windows, &Window{loop: l, redraw: true})
	err = l.Run(context.Background(), &scriptedHandler{onEvent: func(core.EventLoop, core.WindowEvent) error { return boom }})
	assert.ErrorIs(t, err, boom)

	l = newEventLoop(func(bool) {}, nil)
	err = l.Run(context.Background(), &scriptedHandler{onWait: func(core.EventLoop) error { return boom }})
	assert.ErrorIs(t, err, boom)
}

func TestEventsAfterExitAreDropped(t *testing.T) {
	l := newEventLoop(func(bool) {}, nil)
	l.Exit()
	l.push(core.WindowEvent{Code: core.EVENT_CODE_RESIZED})
	assert.Zero(t, l.queue.Len())
	assert.True(t, l.Exiting())
}

func TestTerminateDestroysWindows(t *testing.T) {
	terminated := 0
	l := newEventLoop(func(bool) {}, func() { terminated++ })
	l.windows = append(l.windows, &Window{loop: l}, &Window{loop: l})

	l.Terminate()
	l.Terminate()
	assert.Empty(t, l.windows)
	assert.Equal(t, 1, terminated)
}

func TestDestroyedWindowHasNoSize(t *testing.T) {
	l := newEventLoop(func(bool) {}, nil)
	w := &Window{loop: l}
	l.windows = append(l.windows, w)

	w.Destroy()
	width, height := w.InnerSize()
	assert.Zero(t, width)
	assert.Zero(t, height)
	assert.Empty(t, l.windows)

	_, err := w.CreateWindowSurface(nil)
	assert.ErrorIs(t, err, core.ErrSurfaceCreation)
}
