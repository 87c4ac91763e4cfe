package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/erazemk/gifgrab/internal/model"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "GIFGRAB_CONFIG"

var (
	userHomeDir = os.UserHomeDir
	goos        = runtime.GOOS
)

// Dir returns the per-user config directory.
// Linux: $XDG_CONFIG_HOME/gifgrab or ~/.config/gifgrab
// Windows: %APPDATA%\gifgrab
func Dir() (string, error) {
	if goos == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, model.AppName), nil
		}
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, model.AppName), nil
	}
	home, err := userHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", model.AppName), nil
}

// ResolvePath picks the config file: the flag, then GIFGRAB_CONFIG, then
// config.yml in Dir. A leading ~/ is expanded.
func ResolvePath(flagPath string) (string, error) {
	p := strings.TrimSpace(flagPath)
	if p == "" {
		p = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if p == "" {
		dir, err := Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "config.yml"), nil
	}
	return expandHome(p)
}

// PicturesDir returns where saved images go when neither --dir nor
// save_dir is set.
func PicturesDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_PICTURES_DIR")); xdg != "" {
		return expandHome(os.ExpandEnv(xdg))
	}
	home, err := userHomeDir()
	if err != nil {
		return "", err
	}
	if home == "" {
		return "", errors.New("cannot determine home directory")
	}
	return filepath.Join(home, "Pictures"), nil
}

func expandHome(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := userHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/")), nil
	}
	return p, nil
}
