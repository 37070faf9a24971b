package metadata

import (
	"fmt"
	"strings"
)

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief The name reported to drivers as the engine */
	EngineName string
}

type Backend uint32

const (
	BackendVulkan Backend = 1 << iota
	BackendMetal
	BackendDX12
	BackendGL

	// Backends with first-class support on the host platform.
	BackendsPrimary = BackendVulkan | BackendMetal | BackendDX12
)

func (b Backend) String() string {
	var names []string
	for _, e := range []struct {
		bit  Backend
		name string
	}{
		{BackendVulkan, "vulkan"},
		{BackendMetal, "metal"},
		{BackendDX12, "dx12"},
		{BackendGL, "gl"},
	} {
		if b&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// PowerPreference selects between adapters of different power classes.
// The zero value means no preference and behaves like PowerPreferenceLowPower.
type PowerPreference uint8

const (
	PowerPreferenceNone PowerPreference = iota
	PowerPreferenceLowPower
	PowerPreferenceHighPerformance
)

func (p PowerPreference) String() string {
	switch p {
	case PowerPreferenceNone:
		return "none"
	case PowerPreferenceLowPower:
		return "low-power"
	case PowerPreferenceHighPerformance:
		return "high-performance"
	}
	return fmt.Sprintf("power-preference(%d)", uint8(p))
}

func (p PowerPreference) MarshalText() ([]byte, error) {
	switch p {
	case PowerPreferenceNone, PowerPreferenceLowPower, PowerPreferenceHighPerformance:
		return []byte(p.String()), nil
	}
	return nil, fmt.Errorf("invalid power preference %d", uint8(p))
}

func (p *PowerPreference) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(string(text)), "_", "-")) {
	case "", "none":
		*p = PowerPreferenceNone
	case "low-power", "lowpower":
		*p = PowerPreferenceLowPower
	case "high-performance", "highperformance":
		*p = PowerPreferenceHighPerformance
	default:
		return fmt.Errorf("unknown power preference %q, expected one of none, low-power, high-performance", string(text))
	}
	return nil
}

type DeviceType uint8

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "Integrated"
	case DeviceTypeDiscreteGPU:
		return "Discrete"
	case DeviceTypeVirtualGPU:
		return "Virtual"
	case DeviceTypeCPU:
		return "CPU"
	}
	return "Unknown"
}

// Rank orders device types for a power preference. Higher is better; a
// negative rank means the device must not be picked.
func (p PowerPreference) Rank(t DeviceType, forceFallback bool) int {
	if forceFallback {
		if t == DeviceTypeCPU {
			return 1
		}
		return -1
	}
	order := []DeviceType{DeviceTypeIntegratedGPU, DeviceTypeDiscreteGPU, DeviceTypeVirtualGPU, DeviceTypeCPU, DeviceTypeOther}
	if p == PowerPreferenceHighPerformance {
		order = []DeviceType{DeviceTypeDiscreteGPU, DeviceTypeIntegratedGPU, DeviceTypeVirtualGPU, DeviceTypeCPU, DeviceTypeOther}
	}
	for i, candidate := range order {
		if candidate == t {
			return len(order) - i
		}
	}
	return 0
}

type AdapterInfo struct {
	Name       string
	Vendor     uint32
	Device     uint32
	DeviceType DeviceType
	Backend    Backend
	Driver     string
	APIVersion string
}

type AdapterOptions struct {
	PowerPreference      PowerPreference
	ForceFallbackAdapter bool
	// CompatibleSurface restricts the search to adapters able to present to it.
	CompatibleSurface SurfaceHandle
}

type MemoryHints uint8

const (
	MemoryHintsPerformance MemoryHints = iota
	MemoryHintsMemoryUsage
)

type DeviceDescriptor struct {
	Label string
	// Features and limits are the adapter defaults. Only the hint is tunable.
	MemoryHints MemoryHints
}

type PresentMode uint8

const (
	PresentModeFifo PresentMode = iota
	PresentModeFifoRelaxed
	PresentModeImmediate
	PresentModeMailbox
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo-relaxed"
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	}
	return fmt.Sprintf("present-mode(%d)", uint8(m))
}

type CompositeAlphaMode uint8

const (
	CompositeAlphaModeOpaque CompositeAlphaMode = iota
	CompositeAlphaModePreMultiplied
	CompositeAlphaModePostMultiplied
	CompositeAlphaModeInherit
)

type TextureUsage uint32

const (
	TextureUsageCopySrc TextureUsage = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
)

type SurfaceCapabilities struct {
	Formats      []TextureFormat
	PresentModes []PresentMode
	AlphaModes   []CompositeAlphaMode
}

type SurfaceConfiguration struct {
	Usage       TextureUsage
	Format      TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
	AlphaMode   CompositeAlphaMode
	ViewFormats []TextureFormat
	// Number of frames the CPU may record ahead of the GPU.
	DesiredMaximumFrameLatency uint32
}

type Color struct {
	R, G, B, A float64
}

// Float32 returns the color as a clear value.
func (c Color) Float32() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

type RenderTargetAttachmentLoadOperation uint32

const (
	RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_DONT_CARE RenderTargetAttachmentLoadOperation = 0x0
	RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_LOAD      RenderTargetAttachmentLoadOperation = 0x1
	RENDER_TARGET_ATTACHMENT_LOAD_OPERATION_CLEAR     RenderTargetAttachmentLoadOperation = 0x2
)

type RenderTargetAttachmentStoreOperation uint32

const (
	RENDER_TARGET_ATTACHMENT_STORE_OPERATION_DONT_CARE RenderTargetAttachmentStoreOperation = 0x0
	RENDER_TARGET_ATTACHMENT_STORE_OPERATION_STORE     RenderTargetAttachmentStoreOperation = 0x1
)

type RenderPassColorAttachment struct {
	View       TextureView
	LoadOp     RenderTargetAttachmentLoadOperation
	StoreOp    RenderTargetAttachmentStoreOperation
	ClearValue Color
}

type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []RenderPassColorAttachment
}
