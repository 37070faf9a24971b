package renderer

import (
	"context"
	"errors"

	"github.com/glstudios/laplace/engine/renderer/metadata"
)

// fakeBackend records every call made against it in order.
type fakeBackend struct {
	calls []string

	formats    []metadata.TextureFormat
	alphaModes []metadata.CompositeAlphaMode

	surfaceErr   error
	adapterErr   error
	deviceErr    error
	configureErr error
	// acquireErrs are returned by successive GetCurrentTexture calls before succeeding.
	acquireErrs []error
	presentErr  error

	adapterOpts  *metadata.AdapterOptions
	deviceDesc   *metadata.DeviceDescriptor
	configs      []metadata.SurfaceConfiguration
	renderPasses []metadata.RenderPassDescriptor
	submitted    int
	presented    int
}

func (b *fakeBackend) record(call string) { b.calls = append(b.calls, call) }

func (b *fakeBackend) Backends() metadata.Backend { return metadata.BackendVulkan }

func (b *fakeBackend) CreateSurface(metadata.Window) (metadata.SurfaceHandle, error) {
	b.record("create_surface")
	if b.surfaceErr != nil {
		return nil, b.surfaceErr
	}
	return &fakeSurface{b: b}, nil
}

func (b *fakeBackend) RequestAdapter(_ context.Context, opts *metadata.AdapterOptions) (metadata.Adapter, error) {
	b.record("request_adapter")
	b.adapterOpts = opts
	if b.adapterErr != nil {
		return nil, b.adapterErr
	}
	return &fakeAdapter{b: b}, nil
}

func (b *fakeBackend) Destroy() { b.record("destroy_instance") }

type fakeAdapter struct{ b *fakeBackend }

func (a *fakeAdapter) Info() metadata.AdapterInfo {
	return metadata.AdapterInfo{Name: "fake", DeviceType: metadata.DeviceTypeIntegratedGPU, Backend: metadata.BackendVulkan}
}

func (a *fakeAdapter) RequestDevice(_ context.Context, desc *metadata.DeviceDescriptor) (metadata.Device, metadata.Queue, error) {
	a.b.record("request_device")
	a.b.deviceDesc = desc
	if a.b.deviceErr != nil {
		return nil, nil, a.b.deviceErr
	}
	return &fakeDevice{b: a.b}, &fakeQueue{b: a.b}, nil
}

type fakeDevice struct{ b *fakeBackend }

func (d *fakeDevice) CreateCommandEncoder(label string) (metadata.CommandEncoder, error) {
	d.b.record("create_encoder")
	return &fakeEncoder{b: d.b, label: label}, nil
}

func (d *fakeDevice) WaitIdle() error {
	d.b.record("wait_idle")
	return nil
}

func (d *fakeDevice) Destroy() { d.b.record("destroy_device") }

type fakeQueue struct{ b *fakeBackend }

func (q *fakeQueue) Submit(buffers ...metadata.CommandBuffer) error {
	q.b.record("submit")
	q.b.submitted += len(buffers)
	return nil
}

type fakeSurface struct{ b *fakeBackend }

func (s *fakeSurface) GetCapabilities(metadata.Adapter) (metadata.SurfaceCapabilities, error) {
	s.b.record("capabilities")
	return metadata.SurfaceCapabilities{
		Formats:      s.b.formats,
		PresentModes: []metadata.PresentMode{metadata.PresentModeFifo},
		AlphaModes:   s.b.alphaModes,
	}, nil
}

func (s *fakeSurface) Configure(_ metadata.Device, config *metadata.SurfaceConfiguration) error {
	s.b.record("configure")
	if s.b.configureErr != nil {
		return s.b.configureErr
	}
	s.b.configs = append(s.b.configs, *config)
	return nil
}

func (s *fakeSurface) GetCurrentTexture() (metadata.SurfaceTexture, error) {
	s.b.record("acquire")
	if len(s.b.acquireErrs) > 0 {
		err := s.b.acquireErrs[0]
		s.b.acquireErrs = s.b.acquireErrs[1:]
		return nil, err
	}
	return &fakeTexture{b: s.b}, nil
}

func (s *fakeSurface) Destroy() { s.b.record("destroy_surface") }

type fakeTexture struct{ b *fakeBackend }

func (t *fakeTexture) CreateView() (metadata.TextureView, error) { return fakeView{}, nil }
func (t *fakeTexture) Suboptimal() bool                          { return false }
func (t *fakeTexture) Present() error {
	t.b.record("present")
	if t.b.presentErr != nil {
		err := t.b.presentErr
		t.b.presentErr = nil
		return err
	}
	t.b.presented++
	return nil
}

type fakeView struct{}

func (fakeView) Format() metadata.TextureFormat { return metadata.TextureFormatBGRA8UnormSrgb }

type fakeEncoder struct {
	b     *fakeBackend
	label string
}

func (e *fakeEncoder) BeginRenderPass(desc *metadata.RenderPassDescriptor) (metadata.RenderPassEncoder, error) {
	e.b.record("begin_pass")
	e.b.renderPasses = append(e.b.renderPasses, *desc)
	return &fakePass{b: e.b}, nil
}

func (e *fakeEncoder) Finish() (metadata.CommandBuffer, error) {
	e.b.record("finish")
	return fakeCommandBuffer(e.label), nil
}

type fakePass struct{ b *fakeBackend }

func (p *fakePass) End() error {
	p.b.record("end_pass")
	return nil
}

type fakeCommandBuffer string

func (c fakeCommandBuffer) Label() string { return string(c) }

type fakeWindow struct {
	width, height uint32
	redraws       int
}

func (w *fakeWindow) InnerSize() (uint32, uint32) { return w.width, w.height }
func (w *fakeWindow) RequestRedraw()              { w.redraws++ }

var errDriver = errors.New("driver said no")
