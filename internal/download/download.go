package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/erazemk/gifgrab/internal/logging"
	"github.com/erazemk/gifgrab/internal/model"
)

const maxNameLen = 80

// DefaultTimeout bounds a download when the caller passes no timeout.
const DefaultTimeout = 60 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Save downloads the given rendition of res into dir and returns the file
// path. The name depends only on the result ID and variant, so saving the
// same result twice replaces the earlier file.
func Save(ctx context.Context, res model.Result, variant model.Variant, dir string, timeout time.Duration) (string, error) {
	link := res.Link(variant)
	if link == "" {
		return "", model.Errorf(model.KindIO, "result %s has no %s rendition", res.ID, variant)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", model.Errorf(model.KindIO, "create %s: %w", dir, err)
	}
	dest := filepath.Join(dir, FilenameForResult(res, variant))
	if err := ToFile(ctx, link, dest, timeout); err != nil {
		return "", err
	}
	return dest, nil
}

// FilenameForResult derives a file name from the result ID. Renditions
// other than the full gif get the variant appended.
func FilenameForResult(res model.Result, variant model.Variant) string {
	link := res.Link(variant)
	base := strings.TrimSpace(res.ID)
	if base == "" {
		base = strings.TrimSuffix(filenameFromURL(link), path.Ext(filenameFromURL(link)))
	}
	base = SanitizeFilename(base)
	if variant != "" && variant != model.VariantGIF {
		base += "-" + string(variant)
	}

	ext := strings.ToLower(path.Ext(filenameFromURL(link)))
	if ext == "" || len(ext) > 5 {
		ext = ".gif"
	}
	if len(base)+len(ext) > maxNameLen {
		base = base[:maxNameLen-len(ext)]
	}
	return base + ext
}

func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r > unicode.MaxASCII {
			b.WriteRune('_')
			continue
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._-")
	if out == "" {
		return "gif"
	}
	return out
}

// ToFile streams rawURL into a temp file next to dest and renames it into
// place, so a failed download never leaves a truncated dest behind.
func ToFile(ctx context.Context, rawURL, dest string, timeout time.Duration) error {
	log := logging.New("download")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.Wrap(model.KindNetwork, err)
	}
	req.Header.Set("User-Agent", model.AppName+"/"+model.Version)
	resp, err := newHTTPClient(timeout).Do(req)
	if err != nil {
		return model.Wrap(model.KindNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Errorf(model.KindNetwork, "download %s: http %d", rawURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+model.AppName+"-*.part")
	if err != nil {
		return model.Wrap(model.KindIO, err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return model.Errorf(model.KindIO, "write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return model.Wrap(model.KindIO, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return model.Wrap(model.KindIO, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return model.Wrap(model.KindIO, fmt.Errorf("rename into %s: %w", dest, err))
	}
	log.Debug().Str("path", dest).Int64("bytes", n).Msg("saved")
	return nil
}
