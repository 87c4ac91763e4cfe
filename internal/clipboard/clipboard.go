package clipboard

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"
)

var (
	writeAll    = clipboard.WriteAll
	unsupported = func() bool { return clipboard.Unsupported }
	goos        = runtime.GOOS
)

// CopyText puts text on the system clipboard.
func CopyText(text string) error {
	if text == "" {
		return errors.New("nothing to copy")
	}
	if unsupported() {
		return errors.New(missingToolMessage(goos))
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

func missingToolMessage(goos string) string {
	switch goos {
	case "darwin":
		return "no clipboard tool found (need pbcopy)"
	case "windows":
		return "clipboard is not available"
	default:
		return "no clipboard tool found (need xclip, xsel or wl-copy)"
	}
}
