package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoop struct {
	exiting bool
}

func (l *stubLoop) Context() context.Context { return context.Background() }
func (l *stubLoop) CreateWindow(WindowAttributes) (Window, error) {
	return nil, errors.New("not supported")
}
func (l *stubLoop) Exit()         { l.exiting = true }
func (l *stubLoop) Exiting() bool { return l.exiting }

type recordingHandler struct {
	seen   []SystemEventCode
	exitOn SystemEventCode
	failOn SystemEventCode
}

func (h *recordingHandler) Resumed(EventLoop) error { return nil }

func (h *recordingHandler) WindowEvent(loop EventLoop, event WindowEvent) error {
	h.seen = append(h.seen, event.Code)
	if event.Code == h.failOn {
		return errors.New("boom")
	}
	if event.Code == h.exitOn {
		loop.Exit()
	}
	return nil
}

func (h *recordingHandler) AboutToWait(EventLoop) error { return nil }

func TestEventQueueDrainsInOrder(t *testing.T) {
	q := NewEventQueue(8)
	q.Push(WindowEvent{Code: EVENT_CODE_RESIZED, Width: 10, Height: 20})
	q.Push(WindowEvent{Code: EVENT_CODE_REDRAW_REQUESTED})
	q.Push(WindowEvent{Code: EVENT_CODE_MOVED})

	h := &recordingHandler{}
	require.NoError(t, q.Drain(&stubLoop{}, h))

	assert.Equal(t, []SystemEventCode{EVENT_CODE_RESIZED, EVENT_CODE_REDRAW_REQUESTED, EVENT_CODE_MOVED}, h.seen)
	assert.Zero(t, q.Len())
}

func TestEventQueueStopsAfterExit(t *testing.T) {
	q := NewEventQueue(8)
	q.Push(WindowEvent{Code: EVENT_CODE_CLOSE_REQUESTED})
	q.Push(WindowEvent{Code: EVENT_CODE_RESIZED, Width: 1, Height: 1})
	q.Push(WindowEvent{Code: EVENT_CODE_REDRAW_REQUESTED})

	loop := &stubLoop{}
	h := &recordingHandler{exitOn: EVENT_CODE_CLOSE_REQUESTED}
	require.NoError(t, q.Drain(loop, h))

	assert.Equal(t, []SystemEventCode{EVENT_CODE_CLOSE_REQUESTED}, h.seen)
	assert.Zero(t, q.Len(), "events after exit are discarded")

	q.Push(WindowEvent{Code: EVENT_CODE_REDRAW_REQUESTED})
	require.NoError(t, q.Drain(loop, h))
	assert.Len(t, h.seen, 1)
}

func TestEventQueueReturnsHandlerError(t *testing.T) {
	q := NewEventQueue(4)
	q.Push(WindowEvent{Code: EVENT_CODE_REDRAW_REQUESTED})
	q.Push(WindowEvent{Code: EVENT_CODE_MOVED})

	h := &recordingHandler{failOn: EVENT_CODE_REDRAW_REQUESTED}
	err := q.Drain(&stubLoop{}, h)
	require.Error(t, err)
	assert.Equal(t, 1, q.Len())
}

func TestEventQueueDropsWhenFull(t *testing.T) {
	q := NewEventQueue(1)
	q.Push(WindowEvent{Code: EVENT_CODE_MOVED})
	q.Push(WindowEvent{Code: EVENT_CODE_MOVED})
	assert.Equal(t, uint64(1), q.Dropped())
	assert.Equal(t, 1, q.Len())
}

func TestSystemEventCodeString(t *testing.T) {
	assert.Equal(t, "resized", EVENT_CODE_RESIZED.String())
	assert.Equal(t, "event(0x42)", SystemEventCode(0x42).String())
}
