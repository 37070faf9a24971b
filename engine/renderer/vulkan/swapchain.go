package vulkan

import (
	stdmath "math"

	vk "github.com/goki/vulkan"

	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/math"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

type VulkanSwapchain struct {
	handle       vk.Swapchain
	format       vk.SurfaceFormat
	extent       vk.Extent2D
	images       []vk.Image
	views        []vk.ImageView
	framebuffers []vk.Framebuffer
}

// swapchainExtent uses the extent the surface dictates, or the requested
// size clamped to what the surface allows when it leaves the choice to us.
func swapchainExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != stdmath.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  math.Clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: math.Clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func swapchainImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// createSwapchain builds a swapchain for config, replacing old when given.
func createSwapchain(d *Device, surface vk.Surface, config *metadata.SurfaceConfiguration, format vk.SurfaceFormat, old *VulkanSwapchain) (*VulkanSwapchain, error) {
	var caps vk.SurfaceCapabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(d.adapter.physical, surface, &caps); res != vk.Success {
		return nil, resultError(core.ErrSurfaceConfigure, "vkGetPhysicalDeviceSurfaceCapabilities", res)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	sc := &VulkanSwapchain{
		format: format,
		extent: swapchainExtent(caps, config.Width, config.Height),
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    swapchainImageCount(caps),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      sc.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vkImageUsage(config.Usage),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vkCompositeAlpha(config.AlphaMode),
		PresentMode:      vkPresentMode(config.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if old != nil {
		createInfo.OldSwapchain = old.handle
	}

	if d.adapter.graphicsFamily != d.adapter.presentFamily {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{d.adapter.graphicsFamily, d.adapter.presentFamily}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	if res := vk.CreateSwapchain(d.handle, &createInfo, d.allocator, &sc.handle); res != vk.Success {
		return nil, resultError(core.ErrSurfaceConfigure, "vkCreateSwapchain", res)
	}

	var imageCount uint32
	if res := vk.GetSwapchainImages(d.handle, sc.handle, &imageCount, nil); res != vk.Success {
		sc.destroy(d)
		return nil, resultError(core.ErrSurfaceConfigure, "vkGetSwapchainImages", res)
	}
	sc.images = make([]vk.Image, imageCount)
	if res := vk.GetSwapchainImages(d.handle, sc.handle, &imageCount, sc.images); res != vk.Success {
		sc.destroy(d)
		return nil, resultError(core.ErrSurfaceConfigure, "vkGetSwapchainImages", res)
	}

	sc.views = make([]vk.ImageView, 0, imageCount)
	for _, image := range sc.images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		var view vk.ImageView
		if res := vk.CreateImageView(d.handle, &viewInfo, d.allocator, &view); res != vk.Success {
			sc.destroy(d)
			return nil, resultError(core.ErrSurfaceConfigure, "vkCreateImageView", res)
		}
		sc.views = append(sc.views, view)
	}

	core.LogInfo("Swapchain created: %d images of %dx%d.", imageCount, sc.extent.Width, sc.extent.Height)
	return sc, nil
}

func (sc *VulkanSwapchain) createFramebuffers(d *Device, renderPass vk.RenderPass) error {
	sc.framebuffers = make([]vk.Framebuffer, 0, len(sc.views))
	for _, view := range sc.views {
		createInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           sc.extent.Width,
			Height:          sc.extent.Height,
			Layers:          1,
		}
		var fb vk.Framebuffer
		if res := vk.CreateFramebuffer(d.handle, &createInfo, d.allocator, &fb); res != vk.Success {
			return resultError(core.ErrSurfaceConfigure, "vkCreateFramebuffer", res)
		}
		sc.framebuffers = append(sc.framebuffers, fb)
	}
	return nil
}

// destroy releases the framebuffers, the views and the swapchain. The
// images belong to the swapchain and go with it.
func (sc *VulkanSwapchain) destroy(d *Device) {
	for _, fb := range sc.framebuffers {
		vk.DestroyFramebuffer(d.handle, fb, d.allocator)
	}
	sc.framebuffers = nil
	for _, view := range sc.views {
		vk.DestroyImageView(d.handle, view, d.allocator)
	}
	sc.views = nil
	sc.images = nil
	if sc.handle != vk.NullSwapchain {
		vk.DestroySwapchain(d.handle, sc.handle, d.allocator)
		sc.handle = vk.NullSwapchain
	}
}
