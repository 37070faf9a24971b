package metadata

import "fmt"

type TextureFormat uint32

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatBGRA8Unorm
	TextureFormatBGRA8UnormSrgb
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSrgb
	TextureFormatRGB10A2Unorm
	TextureFormatRGBA16Float
)

var textureFormatNames = map[TextureFormat]string{
	TextureFormatUndefined:      "undefined",
	TextureFormatBGRA8Unorm:     "bgra8unorm",
	TextureFormatBGRA8UnormSrgb: "bgra8unorm-srgb",
	TextureFormatRGBA8Unorm:     "rgba8unorm",
	TextureFormatRGBA8UnormSrgb: "rgba8unorm-srgb",
	TextureFormatRGB10A2Unorm:   "rgb10a2unorm",
	TextureFormatRGBA16Float:    "rgba16float",
}

func (f TextureFormat) String() string {
	if name, ok := textureFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("texture-format(%d)", uint32(f))
}

// IsSRGB reports whether the format applies the sRGB transfer function on write.
func (f TextureFormat) IsSRGB() bool {
	switch f {
	case TextureFormatBGRA8UnormSrgb, TextureFormatRGBA8UnormSrgb:
		return true
	}
	return false
}
