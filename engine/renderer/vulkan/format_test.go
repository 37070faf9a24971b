package vulkan

import (
	stdmath "math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

func TestTextureFormatMapping(t *testing.T) {
	for format, native := range textureFormats {
		got, ok := textureFormat(native)
		require.True(t, ok, format.String())
		assert.Equal(t, format, got)
		assert.Equal(t, native, vkFormat(format))
	}

	_, ok := textureFormat(vk.FormatR5g6b5UnormPack16)
	assert.False(t, ok)
	assert.Equal(t, vk.FormatUndefined, vkFormat(metadata.TextureFormatUndefined))
}

func TestDeviceTypeMapping(t *testing.T) {
	tests := map[vk.PhysicalDeviceType]metadata.DeviceType{
		vk.PhysicalDeviceTypeIntegratedGpu: metadata.DeviceTypeIntegratedGPU,
		vk.PhysicalDeviceTypeDiscreteGpu:   metadata.DeviceTypeDiscreteGPU,
		vk.PhysicalDeviceTypeVirtualGpu:    metadata.DeviceTypeVirtualGPU,
		vk.PhysicalDeviceTypeCpu:           metadata.DeviceTypeCPU,
		vk.PhysicalDeviceTypeOther:         metadata.DeviceTypeOther,
	}
	for native, want := range tests {
		assert.Equal(t, want, deviceType(native))
	}
}

func TestPresentModeMapping(t *testing.T) {
	for mode, native := range presentModes {
		got, ok := presentMode(native)
		require.True(t, ok)
		assert.Equal(t, mode, got)
	}
	assert.Equal(t, vk.PresentModeFifo, vkPresentMode(metadata.PresentMode(42)))
}

func TestCompositeAlphaModes(t *testing.T) {
	flags := vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit | vk.CompositeAlphaOpaqueBit)
	assert.Equal(t, []metadata.CompositeAlphaMode{metadata.CompositeAlphaModeOpaque, metadata.CompositeAlphaModeInherit}, compositeAlphaModes(flags))
	assert.Empty(t, compositeAlphaModes(0))
	assert.Equal(t, vk.CompositeAlphaPreMultipliedBit, vkCompositeAlpha(metadata.CompositeAlphaModePreMultiplied))
}

func TestAttachmentOps(t *testing.T) {
	assert.Equal(t, vk.AttachmentLoadOpClear, vkLoadOp(metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_CLEAR))
	assert.Equal(t, vk.AttachmentLoadOpLoad, vkLoadOp(metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_LOAD))
	assert.Equal(t, vk.AttachmentLoadOpDontCare, vkLoadOp(metadata.RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_DONT_CARE))
	assert.Equal(t, vk.AttachmentStoreOpStore, vkStoreOp(metadata.RENDER_TARGET_ATTACHMENT_STORE_OPERATION_STORE))
	assert.Equal(t, vk.AttachmentStoreOpDontCare, vkStoreOp(metadata.RENDER_TARGET_ATTACHMENT_STORE_OPERATION_DONT_CARE))
}

func TestImageUsage(t *testing.T) {
	assert.Equal(t, vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit), vkImageUsage(metadata.TextureUsageRenderAttachment))
	assert.Equal(t,
		vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit|vk.ImageUsageTransferSrcBit),
		vkImageUsage(metadata.TextureUsageRenderAttachment|metadata.TextureUsageCopySrc))
}

func TestSwapchainExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: stdmath.MaxUint32, Height: stdmath.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, swapchainExtent(caps, 800, 600))
	assert.Equal(t, vk.Extent2D{Width: 1920, Height: 1080}, swapchainExtent(caps, 4000, 3000))

	caps.CurrentExtent = vk.Extent2D{Width: 1024, Height: 768}
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, swapchainExtent(caps, 800, 600), "the surface extent wins")
}

func TestSwapchainImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), swapchainImageCount(vk.SurfaceCapabilities{MinImageCount: 2}))
	assert.Equal(t, uint32(2), swapchainImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
}

func TestRankAdapters(t *testing.T) {
	adapter := func(name string, dt metadata.DeviceType) *Adapter {
		return &Adapter{info: metadata.AdapterInfo{Name: name, DeviceType: dt}}
	}
	adapters := []*Adapter{
		adapter("llvmpipe", metadata.DeviceTypeCPU),
		adapter("discrete", metadata.DeviceTypeDiscreteGPU),
		adapter("integrated", metadata.DeviceTypeIntegratedGPU),
	}
	names := func(list []*Adapter) []string {
		var out []string
		for _, a := range list {
			out = append(out, a.info.Name)
		}
		return out
	}

	assert.Equal(t, []string{"integrated", "discrete", "llvmpipe"}, names(rankAdapters(adapters, metadata.PowerPreferenceLowPower, false)))
	assert.Equal(t, []string{"discrete", "integrated", "llvmpipe"}, names(rankAdapters(adapters, metadata.PowerPreferenceHighPerformance, false)))
	assert.Equal(t, []string{"llvmpipe"}, names(rankAdapters(adapters, metadata.PowerPreferenceNone, true)))
	assert.Empty(t, rankAdapters(adapters[1:], metadata.PowerPreferenceNone, true))
}

func TestResultError(t *testing.T) {
	err := resultError(core.ErrSurfaceAcquire, "vkAcquireNextImageKHR", vk.ErrorOutOfDate)
	assert.ErrorIs(t, err, core.ErrSurfaceOutdated)
	assert.Contains(t, err.Error(), "VK_ERROR_OUT_OF_DATE_KHR")

	assert.ErrorIs(t, resultError(core.ErrSurfaceAcquire, "x", vk.ErrorSurfaceLost), core.ErrSurfaceLost)
	assert.ErrorIs(t, resultError(core.ErrSurfaceAcquire, "x", vk.Timeout), core.ErrSurfaceTimeout)
	assert.ErrorIs(t, resultError(core.ErrGraphicsDevice, "x", vk.ErrorDeviceLost), core.ErrGraphicsDevice)
}

func TestVulkanStrings(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", VulkanResultString(vk.Success))
	assert.Equal(t, "VkResult(-12345)", VulkanResultString(vk.Result(-12345)))
	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorOutOfDate))

	assert.Equal(t, "\x00", VulkanSafeString(""))
	assert.Equal(t, "VK_KHR_swapchain\x00", VulkanSafeString("VK_KHR_swapchain"))
	assert.Equal(t, "done\x00", VulkanSafeString("done\x00"))

	in := []string{"a", "b\x00"}
	assert.Equal(t, []string{"a\x00", "b\x00"}, VulkanSafeStrings(in))
	assert.Equal(t, "a", in[0], "the input is left alone")

	assert.Equal(t, "1.3.250", versionString(1<<22|3<<12|250))
}
