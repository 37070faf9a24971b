package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/glstudios/laplace/engine/core"
)

// ProjectDirs locates per-application directories following each
// platform's conventions.
type ProjectDirs struct {
	qualifier    string
	organization string
	application  string
	home         func() (string, error)
	getenv       func(string) string
	goos         string
}

func NewProjectDirs(qualifier, organization, application string) *ProjectDirs {
	return &ProjectDirs{
		qualifier:    qualifier,
		organization: organization,
		application:  application,
		home:         homedir.Dir,
		getenv:       os.Getenv,
		goos:         runtime.GOOS,
	}
}

// ConfigLocalDir returns the directory for configuration that does not
// roam between machines:
//
//	linux, *bsd  $XDG_CONFIG_HOME/<app> or ~/.config/<app>
//	darwin       ~/Library/Application Support/<qualifier>.<org>.<app>
//	windows      %LOCALAPPDATA%\<org>\<app>\config
func (p *ProjectDirs) ConfigLocalDir() (string, error) {
	switch p.goos {
	case "darwin":
		home, err := p.homeDir()
		if err != nil {
			return "", err
		}
		bundle := strings.Join([]string{p.qualifier, p.organization, p.application}, ".")
		return filepath.Join(home, "Library", "Application Support", bundle), nil
	case "windows":
		base, err := localAppData(p.getenv)
		if err != nil {
			return "", fmt.Errorf("%w: %w", core.ErrConfigDirUnavailable, err)
		}
		return filepath.Join(base, p.organization, p.application, "config"), nil
	default:
		name := strings.ToLower(strings.ReplaceAll(p.application, " ", ""))
		if xdg := p.getenv("XDG_CONFIG_HOME"); filepath.IsAbs(xdg) {
			return filepath.Join(xdg, name), nil
		}
		home, err := p.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", name), nil
	}
}

func (p *ProjectDirs) homeDir() (string, error) {
	home, err := p.home()
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrConfigDirUnavailable, err)
	}
	if home == "" {
		return "", fmt.Errorf("%w: home directory is not set", core.ErrConfigDirUnavailable)
	}
	return home, nil
}
