package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

type renderPassKey struct {
	format  vk.Format
	loadOp  vk.AttachmentLoadOp
	storeOp vk.AttachmentStoreOp
}

// createRenderPass builds a single-subpass pass over one color attachment
// that ends in the layout the presentation engine expects. Passes differing
// only in load and store ops stay framebuffer compatible.
func createRenderPass(d *Device, key renderPassKey) (vk.RenderPass, error) {
	colorAttachment := vk.AttachmentDescription{
		Format:         key.format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         key.loadOp,
		StoreOp:        key.storeOp,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{
			{
				Attachment: 0,
				Layout:     vk.ImageLayoutColorAttachmentOptimal,
			},
		},
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var renderPass vk.RenderPass
	if res := vk.CreateRenderPass(d.handle, &createInfo, d.allocator, &renderPass); res != vk.Success {
		return nil, resultError(core.ErrSurfaceConfigure, "vkCreateRenderPass", res)
	}
	return renderPass, nil
}

// renderPass returns the cached pass for the current format and the given
// ops, creating it on first use.
func (s *Surface) renderPass(load metadata.RenderTargetAttachmentLoadOperation, store metadata.RenderTargetAttachmentStoreOperation) (vk.RenderPass, error) {
	key := renderPassKey{
		format:  s.swapchain.format.Format,
		loadOp:  vkLoadOp(load),
		storeOp: vkStoreOp(store),
	}
	if rp, ok := s.renderPasses[key]; ok {
		return rp, nil
	}
	rp, err := createRenderPass(s.device, key)
	if err != nil {
		return nil, err
	}
	s.renderPasses[key] = rp
	core.LogDebug("Render pass created for %s.", s.config.Format)
	return rp, nil
}

func (s *Surface) destroyRenderPasses() {
	for key, rp := range s.renderPasses {
		vk.DestroyRenderPass(s.device.handle, rp, s.device.allocator)
		delete(s.renderPasses, key)
	}
}
