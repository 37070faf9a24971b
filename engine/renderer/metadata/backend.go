package metadata

import "context"

// Window is what a backend needs from a platform window to present to it.
// Backends type-assert richer interfaces for native handles.
type Window interface {
	InnerSize() (uint32, uint32)
	RequestRedraw()
}

/** @brief Entry point of a graphics backend. */
type Instance interface {
	Backends() Backend
	CreateSurface(window Window) (SurfaceHandle, error)
	// RequestAdapter blocks until an adapter is selected or none qualifies.
	RequestAdapter(ctx context.Context, opts *AdapterOptions) (Adapter, error)
	Destroy()
}

type Adapter interface {
	Info() AdapterInfo
	// RequestDevice blocks until the logical device and its queue exist.
	RequestDevice(ctx context.Context, desc *DeviceDescriptor) (Device, Queue, error)
}

type Device interface {
	CreateCommandEncoder(label string) (CommandEncoder, error)
	WaitIdle() error
	Destroy()
}

type Queue interface {
	Submit(buffers ...CommandBuffer) error
}

/** @brief A backend surface bound to a window. */
type SurfaceHandle interface {
	GetCapabilities(adapter Adapter) (SurfaceCapabilities, error)
	Configure(device Device, config *SurfaceConfiguration) error
	// GetCurrentTexture acquires the next presentable texture. Failures wrap
	// one of the core.ErrSurface* causes.
	GetCurrentTexture() (SurfaceTexture, error)
	Destroy()
}

type SurfaceTexture interface {
	CreateView() (TextureView, error)
	Suboptimal() bool
	Present() error
}

type TextureView interface {
	Format() TextureFormat
}

type CommandEncoder interface {
	BeginRenderPass(desc *RenderPassDescriptor) (RenderPassEncoder, error)
	Finish() (CommandBuffer, error)
}

type RenderPassEncoder interface {
	End() error
}

type CommandBuffer interface {
	Label() string
}
