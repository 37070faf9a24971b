package renderer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

const (
	// DeviceLabel names the logical device in driver tooling.
	DeviceLabel = "AppSurfaceDevice"

	encoderLabel    = "Render Encoder"
	renderPassLabel = "Render Pass"

	// MaxFrameLatency bounds how many frames may be queued ahead of the GPU.
	MaxFrameLatency = 2
)

// ClearColor is the color every frame is cleared to.
var ClearColor = metadata.Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}

type SurfaceOptions struct {
	PowerPreference metadata.PowerPreference
}

// Surface owns everything needed to present to one window: the backend
// surface, the adapter, the device and its queue. The window is kept alive
// by the owner until Shutdown returned.
type Surface struct {
	id      uuid.UUID
	window  metadata.Window
	handle  metadata.SurfaceHandle
	adapter metadata.Adapter
	device  metadata.Device
	queue   metadata.Queue

	config metadata.SurfaceConfiguration
	frames uint64
	closed bool
}

// NewSurface binds a presentation surface to window. It blocks until the
// adapter and the device are available.
func NewSurface(ctx context.Context, instance metadata.Instance, window metadata.Window, opts SurfaceOptions) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSurfaceCreation, err)
	}

	s := &Surface{
		id:     uuid.New(),
		window: window,
	}

	handle, err := instance.CreateSurface(window)
	if err != nil {
		return nil, wrapKind(core.ErrSurfaceCreation, err)
	}
	s.handle = handle

	adapter, err := instance.RequestAdapter(ctx, &metadata.AdapterOptions{
		PowerPreference:   opts.PowerPreference,
		CompatibleSurface: handle,
	})
	if err != nil {
		s.release()
		return nil, wrapKind(core.ErrGraphicsAdapter, err)
	}
	s.adapter = adapter

	info := adapter.Info()
	core.LogInfo("selected adapter %q (%s, %s backend) for power preference %s",
		info.Name, info.DeviceType, info.Backend, opts.PowerPreference)

	device, queue, err := adapter.RequestDevice(ctx, &metadata.DeviceDescriptor{
		Label:       DeviceLabel,
		MemoryHints: metadata.MemoryHintsMemoryUsage,
	})
	if err != nil {
		s.release()
		return nil, wrapKind(core.ErrGraphicsDevice, err)
	}
	s.device, s.queue = device, queue

	caps, err := handle.GetCapabilities(adapter)
	if err != nil {
		s.release()
		return nil, wrapKind(core.ErrSurfaceFormat, err)
	}

	format, err := SelectFormat(caps.Formats)
	if err != nil {
		s.release()
		return nil, err
	}

	alphaMode := metadata.CompositeAlphaModeOpaque
	if len(caps.AlphaModes) > 0 {
		alphaMode = caps.AlphaModes[0]
	}

	width, height := window.InnerSize()
	s.config = metadata.SurfaceConfiguration{
		Usage:                      metadata.TextureUsageRenderAttachment,
		Format:                     format,
		Width:                      width,
		Height:                     height,
		PresentMode:                metadata.PresentModeFifo,
		AlphaMode:                  alphaMode,
		ViewFormats:                nil,
		DesiredMaximumFrameLatency: MaxFrameLatency,
	}

	if err := s.apply(); err != nil {
		s.release()
		return nil, err
	}

	core.LogInfo("surface %s ready: %s %dx%d, present mode %s", s.id, format, width, height, s.config.PresentMode)
	return s, nil
}

// SelectFormat picks the first sRGB format, falling back to the first one listed.
func SelectFormat(formats []metadata.TextureFormat) (metadata.TextureFormat, error) {
	if len(formats) == 0 {
		return metadata.TextureFormatUndefined, core.ErrSurfaceFormat
	}
	for _, f := range formats {
		if f.IsSRGB() {
			return f, nil
		}
	}
	return formats[0], nil
}

func (s *Surface) ID() uuid.UUID {
	return s.id
}

func (s *Surface) Window() metadata.Window {
	return s.window
}

// Config returns a copy of the current surface configuration.
func (s *Surface) Config() metadata.SurfaceConfiguration {
	c := s.config
	c.ViewFormats = append([]metadata.TextureFormat(nil), s.config.ViewFormats...)
	return c
}

// Frames is the number of frames presented so far.
func (s *Surface) Frames() uint64 {
	return s.frames
}

// Reconfigure records the new window size and reapplies the configuration.
// A zero-sized window is recorded but not applied.
func (s *Surface) Reconfigure(width, height uint32) error {
	s.config.Width = width
	s.config.Height = height
	if width == 0 || height == 0 {
		core.LogDebug("surface %s is zero-sized, configuration deferred", s.id)
		return nil
	}
	return s.apply()
}

func (s *Surface) apply() error {
	if s.config.Width == 0 || s.config.Height == 0 {
		return nil
	}
	if err := s.handle.Configure(s.device, &s.config); err != nil {
		return wrapKind(core.ErrSurfaceConfigure, err)
	}
	return nil
}

// RenderFrame clears the next surface texture to ClearColor and presents it.
func (s *Surface) RenderFrame() error {
	if s.closed {
		return fmt.Errorf("%w: %w", core.ErrSurfaceAcquire, core.ErrSurfaceUnconfigured)
	}
	if s.config.Width == 0 || s.config.Height == 0 {
		return fmt.Errorf("%w: %w", core.ErrSurfaceAcquire, core.ErrSurfaceZeroSized)
	}

	texture, err := s.acquire()
	if err != nil {
		return err
	}

	view, err := texture.CreateView()
	if err != nil {
		return fmt.Errorf("failed to create texture view: %w", err)
	}

	encoder, err := s.device.CreateCommandEncoder(encoderLabel)
	if err != nil {
		return fmt.Errorf("failed to create command encoder: %w", err)
	}

	pass, err := encoder.BeginRenderPass(&metadata.RenderPassDescriptor{
		Label: renderPassLabel,
		ColorAttachments: []metadata.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_CLEAR,
				StoreOp:    metadata.RENDER_TARGET_ATTACHMENT_STORE_OPERATION_STORE,
				ClearValue: ClearColor,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to begin render pass: %w", err)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("failed to end render pass: %w", err)
	}

	commands, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	if err := s.queue.Submit(commands); err != nil {
		return fmt.Errorf("failed to submit frame: %w", err)
	}

	if err := texture.Present(); err != nil {
		if !isRecoverable(err) {
			return fmt.Errorf("failed to present frame: %w", err)
		}
		core.LogDebug("surface %s outdated on present, reconfiguring", s.id)
		if err := s.apply(); err != nil {
			return err
		}
	} else if texture.Suboptimal() {
		if err := s.apply(); err != nil {
			return err
		}
	}

	s.frames++
	// Continuous redraw: the next frame is requested as soon as this one is
	// presented. The rate is bounded by the Fifo present mode.
	s.window.RequestRedraw()
	return nil
}

// acquire gets the next texture, reconfiguring and retrying once when the
// surface went out of date or was lost.
func (s *Surface) acquire() (metadata.SurfaceTexture, error) {
	texture, err := s.handle.GetCurrentTexture()
	if err == nil {
		return texture, nil
	}
	if !isRecoverable(err) {
		return nil, wrapKind(core.ErrSurfaceAcquire, err)
	}

	core.LogWarn("surface %s: %s, reconfiguring and retrying", s.id, err)
	if err := s.apply(); err != nil {
		return nil, wrapKind(core.ErrSurfaceAcquire, err)
	}
	texture, err = s.handle.GetCurrentTexture()
	if err != nil {
		return nil, wrapKind(core.ErrSurfaceAcquire, err)
	}
	return texture, nil
}

// Shutdown releases the device and the backend surface. The window is left
// to its owner, which must destroy it only afterwards.
func (s *Surface) Shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	if s.device != nil {
		if err := s.device.WaitIdle(); err != nil {
			core.LogWarn("surface %s: waiting for device idle: %s", s.id, err)
		}
	}
	s.release()
	core.LogDebug("surface %s released after %d frames", s.id, s.frames)
}

// release drops the resources acquired so far in reverse order.
func (s *Surface) release() {
	if s.handle != nil {
		s.handle.Destroy()
		s.handle = nil
	}
	if s.device != nil {
		s.device.Destroy()
		s.device = nil
		s.queue = nil
	}
	s.adapter = nil
}

func isRecoverable(err error) bool {
	return errors.Is(err, core.ErrSurfaceOutdated) || errors.Is(err, core.ErrSurfaceLost)
}

func wrapKind(kind, err error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
