package vulkan

import (
	"fmt"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/math"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

// frameTimeout bounds fence waits and image acquisition.
const frameTimeout = uint64(time.Second)

// Surface is a VkSurfaceKHR together with the swapchain configured on it.
type Surface struct {
	instance *Instance
	handle   vk.Surface
	device   *Device

	config       metadata.SurfaceConfiguration
	swapchain    *VulkanSwapchain
	renderPasses map[renderPassKey]vk.RenderPass

	frames         []*frameSync
	imagesInFlight []*VulkanFence
	frame          uint32
}

func (s *Surface) surfaceFormats(physical vk.PhysicalDevice) ([]vk.SurfaceFormat, error) {
	var count uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physical, s.handle, &count, nil); res != vk.Success {
		return nil, resultError(core.ErrSurfaceFormat, "vkGetPhysicalDeviceSurfaceFormats", res)
	}
	formats := make([]vk.SurfaceFormat, count)
	if res := vk.GetPhysicalDeviceSurfaceFormats(physical, s.handle, &count, formats); res != vk.Success {
		return nil, resultError(core.ErrSurfaceFormat, "vkGetPhysicalDeviceSurfaceFormats", res)
	}
	for i := range formats {
		formats[i].Deref()
	}
	return formats, nil
}

// GetCapabilities lists what the surface supports on adapter, in the order
// the driver reports it. Formats with no portable counterpart are left out.
func (s *Surface) GetCapabilities(adapter metadata.Adapter) (metadata.SurfaceCapabilities, error) {
	var caps metadata.SurfaceCapabilities
	a, ok := adapter.(*Adapter)
	if !ok {
		return caps, fmt.Errorf("%w: adapter %T does not belong to the vulkan backend", core.ErrSurfaceFormat, adapter)
	}

	formats, err := s.surfaceFormats(a.physical)
	if err != nil {
		return caps, err
	}
	for _, f := range formats {
		if format, ok := textureFormat(f.Format); ok {
			caps.Formats = append(caps.Formats, format)
		}
	}

	var modeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(a.physical, s.handle, &modeCount, nil); res != vk.Success {
		return caps, resultError(core.ErrSurfaceFormat, "vkGetPhysicalDeviceSurfacePresentModes", res)
	}
	modes := make([]vk.PresentMode, modeCount)
	if res := vk.GetPhysicalDeviceSurfacePresentModes(a.physical, s.handle, &modeCount, modes); res != vk.Success {
		return caps, resultError(core.ErrSurfaceFormat, "vkGetPhysicalDeviceSurfacePresentModes", res)
	}
	for _, m := range modes {
		if mode, ok := presentMode(m); ok {
			caps.PresentModes = append(caps.PresentModes, mode)
		}
	}

	var surfaceCaps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(a.physical, s.handle, &surfaceCaps); res != vk.Success {
		return caps, resultError(core.ErrSurfaceFormat, "vkGetPhysicalDeviceSurfaceCapabilities", res)
	}
	surfaceCaps.Deref()
	caps.AlphaModes = compositeAlphaModes(surfaceCaps.SupportedCompositeAlpha)

	core.LogDebug("Surface supports %d formats, %d present modes.", len(caps.Formats), len(caps.PresentModes))
	return caps, nil
}

// Configure (re)creates the swapchain for config. The previous swapchain is
// handed to the driver as the old one and released afterwards.
func (s *Surface) Configure(device metadata.Device, config *metadata.SurfaceConfiguration) error {
	d, ok := device.(*Device)
	if !ok {
		return fmt.Errorf("%w: device %T does not belong to the vulkan backend", core.ErrSurfaceConfigure, device)
	}
	if s.device != nil && s.device != d {
		return fmt.Errorf("%w: surface is bound to device %q", core.ErrSurfaceConfigure, s.device.label)
	}
	if config.Width == 0 || config.Height == 0 {
		return core.ErrSurfaceZeroSized
	}

	formats, err := s.surfaceFormats(d.adapter.physical)
	if err != nil {
		return err
	}
	native := vkFormat(config.Format)
	var format vk.SurfaceFormat
	found := false
	for _, f := range formats {
		if f.Format == native {
			format, found = f, true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s is not supported by the surface", core.ErrSurfaceConfigure, config.Format)
	}

	if err := d.WaitIdle(); err != nil {
		return err
	}
	s.device = d
	if s.renderPasses == nil {
		s.renderPasses = make(map[renderPassKey]vk.RenderPass)
	}

	old := s.swapchain
	sc, err := createSwapchain(d, s.handle, config, format, old)
	if old != nil {
		old.destroy(d)
		s.swapchain = nil
	}
	if err != nil {
		return err
	}
	if old != nil && old.format.Format != format.Format {
		s.destroyRenderPasses()
	}
	s.swapchain = sc
	s.config = *config

	rp, err := s.renderPass(metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_CLEAR, metadata.RENDER_TARGET_ATTACHMENT_STORE_OPERATION_STORE)
	if err != nil {
		return err
	}
	if err := sc.createFramebuffers(d, rp); err != nil {
		return err
	}

	if err := s.resizeFrames(math.Clamp(config.DesiredMaximumFrameLatency, 1, 3)); err != nil {
		return err
	}
	s.imagesInFlight = make([]*VulkanFence, len(sc.images))
	return nil
}

func (s *Surface) resizeFrames(count uint32) error {
	if uint32(len(s.frames)) == count {
		return nil
	}
	s.destroyFrames()
	for i := uint32(0); i < count; i++ {
		f, err := newFrameSync(s.device)
		if err != nil {
			return err
		}
		s.frames = append(s.frames, f)
	}
	s.frame = 0
	return nil
}

func (s *Surface) destroyFrames() {
	for _, f := range s.frames {
		f.destroy(s.device)
	}
	s.frames = nil
}

// GetCurrentTexture waits for the current frame slot to be free and
// acquires the next swapchain image for it.
func (s *Surface) GetCurrentTexture() (metadata.SurfaceTexture, error) {
	if s.swapchain == nil || s.device == nil || s.device.handle == nil {
		return nil, core.ErrSurfaceUnconfigured
	}
	d := s.device
	frame := s.frames[s.frame]

	if err := frame.inFlight.Wait(frameTimeout); err != nil {
		return nil, err
	}
	frame.recycle()

	var index uint32
	res := vk.AcquireNextImage(d.handle, s.swapchain.handle, frameTimeout, frame.imageAvailable, vk.NullFence, &index)
	suboptimal := false
	switch res {
	case vk.Success:
	case vk.Suboptimal:
		suboptimal = true
	case vk.NotReady:
		return nil, fmt.Errorf("%w: no swapchain image available", core.ErrSurfaceTimeout)
	default:
		return nil, resultError(core.ErrSurfaceAcquire, "vkAcquireNextImageKHR", res)
	}

	// An earlier frame may still be rendering into this image.
	if previous := s.imagesInFlight[index]; previous != nil && previous != frame.inFlight {
		if err := previous.Wait(frameTimeout); err != nil {
			return nil, err
		}
	}
	s.imagesInFlight[index] = frame.inFlight
	d.acquired = frame

	return &SurfaceTexture{
		surface:    s,
		frame:      frame,
		index:      index,
		suboptimal: suboptimal,
	}, nil
}

// Destroy releases the swapchain and the surface. It waits for the device
// first, so it must run before the device is destroyed.
func (s *Surface) Destroy() {
	if s.handle == vk.NullSurface {
		return
	}
	if s.device != nil && s.device.handle != nil {
		s.device.WaitIdle()
		s.device.acquired = nil
		s.destroyFrames()
		if s.swapchain != nil {
			s.swapchain.destroy(s.device)
			s.swapchain = nil
		}
		s.destroyRenderPasses()
	}
	s.imagesInFlight = nil
	if s.instance.handle != nil {
		vk.DestroySurface(s.instance.handle, s.handle, s.instance.allocator)
	}
	s.handle = vk.NullSurface
	s.device = nil
	core.LogDebug("Vulkan surface destroyed.")
}

// SurfaceTexture is an acquired swapchain image.
type SurfaceTexture struct {
	surface    *Surface
	frame      *frameSync
	index      uint32
	suboptimal bool
	presented  bool
}

func (t *SurfaceTexture) CreateView() (metadata.TextureView, error) {
	return &TextureView{surface: t.surface, index: t.index, format: t.surface.config.Format}, nil
}

func (t *SurfaceTexture) Suboptimal() bool {
	return t.suboptimal
}

// Present queues the image for presentation and moves on to the next frame
// slot. An out of date or suboptimal swapchain is reported as outdated.
func (t *SurfaceTexture) Present() error {
	if t.presented {
		return fmt.Errorf("%w: texture already presented", core.ErrSurfaceAcquire)
	}
	t.presented = true
	s := t.surface
	d := s.device

	// Without a submission the image is only waited on.
	wait := t.frame.renderFinished
	if !t.frame.submitted {
		wait = t.frame.imageAvailable
	}
	info := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.swapchain.handle},
		PImageIndices:      []uint32{t.index},
	}
	res := vk.QueuePresent(d.presentQueue, &info)

	d.acquired = nil
	s.frame = math.WrapIncrement(s.frame, uint32(len(s.frames)))

	switch res {
	case vk.Success:
		return nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return fmt.Errorf("%w: %s", core.ErrSurfaceOutdated, VulkanResultString(res))
	default:
		return resultError(core.ErrSurfaceAcquire, "vkQueuePresentKHR", res)
	}
}

type TextureView struct {
	surface *Surface
	index   uint32
	format  metadata.TextureFormat
}

func (v *TextureView) Format() metadata.TextureFormat {
	return v.format
}
