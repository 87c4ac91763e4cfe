// Package reveal shows a saved file in the platform's file manager.
package reveal

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
)

var (
	execCommand = exec.Command
	lookPath    = exec.LookPath
	goos        = runtime.GOOS
)

// Reveal opens the file manager at path. On Linux the FileManager1 D-Bus
// call selects the file; xdg-open and gio can only open its directory.
func Reveal(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	var lastErr error
	tried := 0
	for _, argv := range candidates(goos, path) {
		if _, err := lookPath(argv[0]); err != nil {
			continue
		}
		tried++
		c := execCommand(argv[0], argv[1:]...)
		c.Stdout = io.Discard
		c.Stderr = io.Discard
		if err := c.Run(); err != nil {
			lastErr = fmt.Errorf("%s: %w", argv[0], err)
			continue
		}
		return nil
	}
	if tried == 0 {
		return errors.New("no file manager opener found (need xdg-open or gio)")
	}
	return lastErr
}

func candidates(goos string, path string) [][]string {
	switch goos {
	case "darwin":
		return [][]string{{"open", "-R", path}}
	case "windows":
		return [][]string{{"explorer.exe", "/select," + filepath.Clean(path)}}
	default:
		dir := filepath.Dir(path)
		fileURL := (&url.URL{Scheme: "file", Path: path}).String()
		return [][]string{
			{
				"dbus-send", "--session", "--print-reply",
				"--dest=org.freedesktop.FileManager1", "--type=method_call",
				"/org/freedesktop/FileManager1", "org.freedesktop.FileManager1.ShowItems",
				"array:string:" + fileURL, "string:",
			},
			{"xdg-open", dir},
			{"gio", "open", dir},
		}
	}
}
