package config

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/glstudios/laplace/engine/core"
	"github.com/glstudios/laplace/engine/renderer/metadata"
)

const (
	Qualifier    = "org"
	Organization = "glstudios"
	Application  = "laplace"

	FileName = "config.toml"
)

// Configuration is the persisted application configuration.
type Configuration struct {
	Main   Main   `toml:"main"`
	Render Render `toml:"render"`
}

type Main struct {
	// LogDirectory receives a copy of the log when set.
	LogDirectory string `toml:"log_directory,omitempty"`
}

type Render struct {
	PreferredGPU metadata.PowerPreference `toml:"preferred_gpu"`
}

func Default() Configuration {
	return Configuration{}
}

// Marshal encodes the configuration as TOML.
func Marshal(c Configuration) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(false)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("%w: encoding: %w", core.ErrConfigIO, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes TOML into a configuration. Sections or keys missing from
// data keep their default values; unknown keys are ignored.
func Unmarshal(data []byte) (Configuration, error) {
	c := Default()
	if err := toml.Unmarshal(data, &c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Configuration{}, fmt.Errorf("%w: line %d column %d: %w", core.ErrConfigParse, row, col, err)
		}
		return Configuration{}, fmt.Errorf("%w: %w", core.ErrConfigParse, err)
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, err
	}
	return c, nil
}

// Validate rejects values the TOML decoder accepts but the application cannot use.
func (c Configuration) Validate() error {
	if _, err := c.Render.PreferredGPU.MarshalText(); err != nil {
		return fmt.Errorf("%w: render.preferred_gpu: %w", core.ErrConfigParse, err)
	}
	return nil
}
