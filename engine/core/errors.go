package core

import (
	"errors"
)

// Error kinds. Callers wrap them with fmt.Errorf("%w") and classify with errors.Is.
var (
	ErrConfigDirUnavailable = errors.New("platform config directory unavailable")
	ErrConfigIO             = errors.New("config file i/o failed")
	ErrConfigParse          = errors.New("config file is malformed")

	ErrNoBackend      = errors.New("no supported graphics backend")
	ErrWindowCreation = errors.New("failed to create window")

	ErrSurfaceCreation  = errors.New("failed to create presentation surface")
	ErrGraphicsAdapter  = errors.New("no compatible graphics adapter")
	ErrGraphicsDevice   = errors.New("graphics device request rejected")
	ErrSurfaceFormat    = errors.New("surface reports no supported formats")
	ErrSurfaceConfigure = errors.New("failed to configure presentation surface")

	ErrSurfaceAcquire = errors.New("failed to acquire next surface texture")

	// Causes wrapped by ErrSurfaceAcquire.
	ErrSurfaceOutdated     = errors.New("surface is out of date")
	ErrSurfaceLost         = errors.New("surface lost")
	ErrSurfaceTimeout      = errors.New("timed out waiting for surface texture")
	ErrSurfaceZeroSized    = errors.New("surface has zero area")
	ErrSurfaceUnconfigured = errors.New("surface is not configured")
)

// IsConfigError reports whether err belongs to the configuration kinds.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigDirUnavailable) ||
		errors.Is(err, ErrConfigIO) ||
		errors.Is(err, ErrConfigParse)
}

// IsGraphicsInitError reports whether err happened while bringing up the
// window, the adapter, the device or the surface.
func IsGraphicsInitError(err error) bool {
	for _, kind := range []error{
		ErrNoBackend, ErrWindowCreation, ErrSurfaceCreation,
		ErrGraphicsAdapter, ErrGraphicsDevice, ErrSurfaceFormat, ErrSurfaceConfigure,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
