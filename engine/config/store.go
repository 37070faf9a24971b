package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glstudios/laplace/engine/core"
)

// Store loads and persists the configuration file of one directory.
type Store struct {
	dir string
}

// NewStore resolves the platform config directory for the application.
func NewStore() (*Store, error) {
	dir, err := NewProjectDirs(Qualifier, Organization, Application).ConfigLocalDir()
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// NewStoreAt pins the store to dir.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Load reads the configuration file. A missing file is not an error: the
// defaults are written to disk and returned.
func (s *Store) Load() (Configuration, error) {
	path := s.Path()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogInfo("no configuration at %s, writing defaults", path)
		c := Default()
		if err := s.Write(c); err != nil {
			return Configuration{}, err
		}
		return c, nil
	}
	if err != nil {
		return Configuration{}, fmt.Errorf("%w: reading %s: %w", core.ErrConfigIO, path, err)
	}

	c, err := Unmarshal(data)
	if err != nil {
		return Configuration{}, fmt.Errorf("%s: %w", path, err)
	}
	core.LogDebug("loaded configuration from %s", path)
	return c, nil
}

// Sync loads the configuration and writes it back, so the file on disk
// always holds the canonical spelling of every value.
func (s *Store) Sync() (Configuration, error) {
	c, err := s.Load()
	if err != nil {
		return Configuration{}, err
	}
	if err := s.Write(c); err != nil {
		return Configuration{}, err
	}
	return c, nil
}

// Write persists c atomically: the document goes to a temporary file in the
// same directory which is then renamed over the target.
func (s *Store) Write(c Configuration) error {
	data, err := Marshal(c)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", core.ErrConfigIO, s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrConfigIO, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: writing %s: %w", core.ErrConfigIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: syncing %s: %w", core.ErrConfigIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", core.ErrConfigIO, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: %w", core.ErrConfigIO, err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", core.ErrConfigIO, s.Path(), err)
	}
	committed = true

	core.LogDebug("configuration written to %s", s.Path())
	return nil
}
