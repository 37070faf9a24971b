//go:build !windows

package config

import "errors"

func localAppData(getenv func(string) string) (string, error) {
	if env := getenv("LOCALAPPDATA"); env != "" {
		return env, nil
	}
	return "", errors.New("LOCALAPPDATA is not set")
}
