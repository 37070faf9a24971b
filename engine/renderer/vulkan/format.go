package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/glstudios/laplace/engine/renderer/metadata"
)

var textureFormats = map[metadata.TextureFormat]vk.Format{
	metadata.TextureFormatBGRA8Unorm:     vk.FormatB8g8r8a8Unorm,
	metadata.TextureFormatBGRA8UnormSrgb: vk.FormatB8g8r8a8Srgb,
	metadata.TextureFormatRGBA8Unorm:     vk.FormatR8g8b8a8Unorm,
	metadata.TextureFormatRGBA8UnormSrgb: vk.FormatR8g8b8a8Srgb,
	metadata.TextureFormatRGB10A2Unorm:   vk.FormatA2b10g10r10UnormPack32,
	metadata.TextureFormatRGBA16Float:    vk.FormatR16g16b16a16Sfloat,
}

func vkFormat(f metadata.TextureFormat) vk.Format {
	if format, ok := textureFormats[f]; ok {
		return format
	}
	return vk.FormatUndefined
}

// textureFormat maps back a surface format. Formats with no counterpart are
// reported as not ok and left out of the capabilities.
func textureFormat(f vk.Format) (metadata.TextureFormat, bool) {
	for format, native := range textureFormats {
		if native == f {
			return format, true
		}
	}
	return metadata.TextureFormatUndefined, false
}

func deviceType(t vk.PhysicalDeviceType) metadata.DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return metadata.DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return metadata.DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return metadata.DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return metadata.DeviceTypeCPU
	}
	return metadata.DeviceTypeOther
}

var presentModes = map[metadata.PresentMode]vk.PresentMode{
	metadata.PresentModeFifo:        vk.PresentModeFifo,
	metadata.PresentModeFifoRelaxed: vk.PresentModeFifoRelaxed,
	metadata.PresentModeImmediate:   vk.PresentModeImmediate,
	metadata.PresentModeMailbox:     vk.PresentModeMailbox,
}

func vkPresentMode(m metadata.PresentMode) vk.PresentMode {
	if mode, ok := presentModes[m]; ok {
		return mode
	}
	// Fifo is the only mode every implementation must support.
	return vk.PresentModeFifo
}

func presentMode(m vk.PresentMode) (metadata.PresentMode, bool) {
	for mode, native := range presentModes {
		if native == m {
			return mode, true
		}
	}
	return metadata.PresentModeFifo, false
}

var alphaModes = []struct {
	mode metadata.CompositeAlphaMode
	bit  vk.CompositeAlphaFlagBits
}{
	{metadata.CompositeAlphaModeOpaque, vk.CompositeAlphaOpaqueBit},
	{metadata.CompositeAlphaModePreMultiplied, vk.CompositeAlphaPreMultipliedBit},
	{metadata.CompositeAlphaModePostMultiplied, vk.CompositeAlphaPostMultipliedBit},
	{metadata.CompositeAlphaModeInherit, vk.CompositeAlphaInheritBit},
}

// compositeAlphaModes lists the supported modes in a fixed order, opaque first.
func compositeAlphaModes(flags vk.CompositeAlphaFlags) []metadata.CompositeAlphaMode {
	var modes []metadata.CompositeAlphaMode
	for _, m := range alphaModes {
		if flags&vk.CompositeAlphaFlags(m.bit) != 0 {
			modes = append(modes, m.mode)
		}
	}
	return modes
}

func vkCompositeAlpha(mode metadata.CompositeAlphaMode) vk.CompositeAlphaFlagBits {
	for _, m := range alphaModes {
		if m.mode == mode {
			return m.bit
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func vkLoadOp(op metadata.RenderTargetAttachmentLoadOperation) vk.AttachmentLoadOp {
	switch op {
	case metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_LOAD:
		return vk.AttachmentLoadOpLoad
	case metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_CLEAR:
		return vk.AttachmentLoadOpClear
	}
	return vk.AttachmentLoadOpDontCare
}

func vkStoreOp(op metadata.RenderTargetAttachmentStoreOperation) vk.AttachmentStoreOp {
	if op == metadata.RENDER_TARGET_ATTACHMENT_STORE_OPERATION_STORE {
		return vk.AttachmentStoreOpStore
	}
	return vk.AttachmentStoreOpDontCare
}

func vkImageUsage(usage metadata.TextureUsage) vk.ImageUsageFlags {
	var flags vk.ImageUsageFlagBits
	if usage&metadata.TextureUsageCopySrc != 0 {
		flags |= vk.ImageUsageTransferSrcBit
	}
	if usage&metadata.TextureUsageCopyDst != 0 {
		flags |= vk.ImageUsageTransferDstBit
	}
	if usage&metadata.TextureUsageTextureBinding != 0 {
		flags |= vk.ImageUsageSampledBit
	}
	if usage&metadata.TextureUsageStorageBinding != 0 {
		flags |= vk.ImageUsageStorageBit
	}
	if usage&metadata.TextureUsageRenderAttachment != 0 {
		flags |= vk.ImageUsageColorAttachmentBit
	}
	return vk.ImageUsageFlags(flags)
}
