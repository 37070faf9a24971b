package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerPreferenceText(t *testing.T) {
	for _, p := range []PowerPreference{PowerPreferenceNone, PowerPreferenceLowPower, PowerPreferenceHighPerformance} {
		text, err := p.MarshalText()
		require.NoError(t, err)

		var got PowerPreference
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, p, got)
	}

	_, err := PowerPreference(9).MarshalText()
	assert.Error(t, err)
}

func TestPowerPreferenceAcceptsAlternateSpellings(t *testing.T) {
	tests := map[string]PowerPreference{
		"LowPower":         PowerPreferenceLowPower,
		"low_power":        PowerPreferenceLowPower,
		"HighPerformance":  PowerPreferenceHighPerformance,
		" high-performance": PowerPreferenceHighPerformance,
		"None":             PowerPreferenceNone,
	}
	for in, want := range tests {
		var got PowerPreference
		require.NoError(t, got.UnmarshalText([]byte(in)), in)
		assert.Equal(t, want, got, in)
	}

	var p PowerPreference
	assert.Error(t, p.UnmarshalText([]byte("turbo")))
}

func TestPowerPreferenceRank(t *testing.T) {
	low := PowerPreferenceLowPower
	assert.Greater(t, low.Rank(DeviceTypeIntegratedGPU, false), low.Rank(DeviceTypeDiscreteGPU, false))
	assert.Greater(t, low.Rank(DeviceTypeDiscreteGPU, false), low.Rank(DeviceTypeCPU, false))

	none := PowerPreferenceNone
	assert.Equal(t, low.Rank(DeviceTypeIntegratedGPU, false), none.Rank(DeviceTypeIntegratedGPU, false))

	high := PowerPreferenceHighPerformance
	assert.Greater(t, high.Rank(DeviceTypeDiscreteGPU, false), high.Rank(DeviceTypeIntegratedGPU, false))

	assert.Negative(t, high.Rank(DeviceTypeDiscreteGPU, true))
	assert.Positive(t, high.Rank(DeviceTypeCPU, true))
}

func TestTextureFormatIsSRGB(t *testing.T) {
	assert.True(t, TextureFormatBGRA8UnormSrgb.IsSRGB())
	assert.True(t, TextureFormatRGBA8UnormSrgb.IsSRGB())
	assert.False(t, TextureFormatBGRA8Unorm.IsSRGB())
	assert.False(t, TextureFormatRGBA16Float.IsSRGB())
	assert.Equal(t, "bgra8unorm-srgb", TextureFormatBGRA8UnormSrgb.String())
}

func TestBackendString(t *testing.T) {
	assert.Equal(t, "vulkan", BackendVulkan.String())
	assert.Equal(t, "vulkan|metal|dx12", BackendsPrimary.String())
	assert.Equal(t, "none", Backend(0).String())
}

func TestColorFloat32(t *testing.T) {
	c := Color{R: 0.1, G: 0.2, B: 0.3, A: 1.0}
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1.0}, c.Float32())
}
