//go:build windows

package config

import (
	"errors"

	"golang.org/x/sys/windows"
)

func localAppData(getenv func(string) string) (string, error) {
	dir, err := windows.KnownFolderPath(windows.FOLDERID_LocalAppData, windows.KF_FLAG_DEFAULT)
	if err == nil && dir != "" {
		return dir, nil
	}
	if env := getenv("LOCALAPPDATA"); env != "" {
		return env, nil
	}
	if err == nil {
		err = errors.New("LocalAppData known folder is empty")
	}
	return "", err
}
