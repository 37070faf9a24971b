package engine

import (
	"github.com/glstudios/laplace/engine/core"
)

type ApplicationConfig struct {
	// Window starting width.
	StartWidth uint32
	// Window starting height.
	StartHeight uint32
	// The application name used as window title.
	Name string
	// Class and instance names window managers match rules on.
	NameHint  core.NameHint
	Resizable bool
	LogLevel  core.LogLevel
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartWidth:  800,
		StartHeight: 600,
		Name:        "Laplace",
		NameHint:    core.NameHint{General: "floating", Instance: "floating"},
		Resizable:   true,
		LogLevel:    core.LogLevelDebug,
	}
}

func (a *ApplicationConfig) windowAttributes() core.WindowAttributes {
	return core.WindowAttributes{
		Title:     a.Name,
		Width:     a.StartWidth,
		Height:    a.StartHeight,
		Name:      a.NameHint,
		Resizable: a.Resizable,
	}
}
