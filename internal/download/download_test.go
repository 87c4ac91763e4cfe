package download

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/gifgrab/internal/model"
	"github.com/erazemk/gifgrab/internal/testutil"
)

func sampleResult() model.Result {
	return model.Result{
		ID:    "101",
		Title: "Cat One",
		URLs: map[model.Variant]string{
			model.VariantGIF:     "https://example.test/full.gif",
			model.VariantTinyGIF: "https://example.test/preview.gif",
		},
	}
}

func TestSanitizeFilename(t *testing.T) {
	name := SanitizeFilename("Hello / weird:name?.gif")
	if strings.ContainsAny(name, "/:\\?") {
		t.Fatalf("unexpected separators: %q", name)
	}
	if SanitizeFilename("...") != "gif" {
		t.Fatalf("expected fallback name")
	}
}

func TestFilenameForResult(t *testing.T) {
	res := sampleResult()
	if got := FilenameForResult(res, model.VariantGIF); got != "101.gif" {
		t.Fatalf("expected 101.gif, got %q", got)
	}
	if got := FilenameForResult(res, model.VariantTinyGIF); got != "101-tinygif.gif" {
		t.Fatalf("expected 101-tinygif.gif, got %q", got)
	}

	res.ID = ""
	if got := FilenameForResult(res, model.VariantGIF); got != "full.gif" {
		t.Fatalf("expected name from url, got %q", got)
	}

	res.ID = strings.Repeat("x", 200)
	if got := FilenameForResult(res, model.VariantGIF); len(got) != maxNameLen || !strings.HasSuffix(got, ".gif") {
		t.Fatalf("expected truncated name, got %q", got)
	}
}

func TestSaveWritesOneDeterministicFile(t *testing.T) {
	gifData := testutil.MakeTestGIF()
	dir := filepath.Join(t.TempDir(), "Pictures")
	testutil.WithTransport(t, &testutil.FakeTransport{GIFData: gifData}, func() {
		first, err := Save(context.Background(), sampleResult(), model.VariantGIF, dir, 0)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		second, err := Save(context.Background(), sampleResult(), model.VariantGIF, dir, 0)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if first != second || first != filepath.Join(dir, "101.gif") {
			t.Fatalf("expected same path twice, got %q and %q", first, second)
		}
		data, err := os.ReadFile(first)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !bytes.Equal(data, gifData) {
			t.Fatalf("unexpected file contents")
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected exactly one file, got %d", len(entries))
		}
	})
}

func TestSaveMissingRendition(t *testing.T) {
	_, err := Save(context.Background(), sampleResult(), model.VariantNanoGIF, t.TempDir(), 0)
	if model.KindOf(err) != model.KindIO {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestToFileHTTPError(t *testing.T) {
	dir := t.TempDir()
	testutil.WithTransport(t, &testutil.FakeTransport{}, func() {
		err := ToFile(context.Background(), "https://example.test/missing.gif", filepath.Join(dir, "x.gif"), 0)
		if model.KindOf(err) != model.KindNetwork {
			t.Fatalf("expected network error, got %v", err)
		}
	})
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no leftovers, got %d entries", len(entries))
	}
}

type stalledTransport struct{}

func (stalledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	select {
	case <-req.Context().Done():
		return nil, req.Context().Err()
	case <-time.After(5 * time.Second):
		return nil, errors.New("transport gave up")
	}
}

func TestToFileHonoursTimeout(t *testing.T) {
	dir := t.TempDir()
	testutil.WithTransport(t, stalledTransport{}, func() {
		started := time.Now()
		err := ToFile(context.Background(), "https://example.test/full.gif", filepath.Join(dir, "x.gif"), 50*time.Millisecond)
		if model.KindOf(err) != model.KindNetwork {
			t.Fatalf("expected network error, got %v", err)
		}
		if elapsed := time.Since(started); elapsed > 2*time.Second {
			t.Fatalf("timeout not applied, took %s", elapsed)
		}
	})
}

func TestNewHTTPClientDefault(t *testing.T) {
	if got := newHTTPClient(0).Timeout; got != DefaultTimeout {
		t.Fatalf("expected %s, got %s", DefaultTimeout, got)
	}
	if got := newHTTPClient(3 * time.Second).Timeout; got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
}
