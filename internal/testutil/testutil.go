package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
)

// TenorBody is the canned search response served for tenor.googleapis.com.
const TenorBody = `{"results":[` +
	`{"id":"101","title":"Cat One","content_description":"","itemurl":"https://tenor.com/view/cat-one-gif-101","url":"https://tenor.com/a1.gif","tags":["cat","fun"],` +
	`"media_formats":{"gif":{"url":"https://example.test/full.gif","dims":[200,100],"size":1234},"tinygif":{"url":"https://example.test/preview.gif","dims":[50,25],"size":120}}},` +
	`{"id":"102","title":"","content_description":"Cat Two","itemurl":"https://tenor.com/view/cat-two-gif-102","url":"https://tenor.com/a2.gif",` +
	`"media_formats":{"gif":{"url":"https://example.test/two.gif","dims":[200,100]}}},` +
	`{"id":"103","title":"Cat Three","itemurl":"https://tenor.com/view/cat-three-gif-103","url":"https://tenor.com/a3.gif",` +
	`"media_formats":{"gif":{"url":"https://example.test/three.gif","dims":[200,100]}}}` +
	`],"next":"3"}`

// FakeTransport answers Tenor searches and GIF downloads from memory and
// records every request it sees.
type FakeTransport struct {
	GIFData []byte
	// SearchStatus overrides the search response status when non-zero.
	SearchStatus int
	// SearchBody overrides TenorBody when non-empty.
	SearchBody string

	mu       sync.Mutex
	requests []*http.Request
}

func (t *FakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	t.mu.Unlock()

	switch req.URL.Host {
	case "tenor.googleapis.com":
		status := t.SearchStatus
		if status == 0 {
			status = 200
		}
		body := t.SearchBody
		if body == "" {
			body = TenorBody
		}
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	case "example.test":
		switch req.URL.Path {
		case "/full.gif", "/preview.gif", "/two.gif", "/three.gif":
			return &http.Response{
				StatusCode: 200,
				Header:     http.Header{"Content-Type": []string{"image/gif"}},
				Body:       io.NopCloser(bytes.NewReader(t.GIFData)),
			}, nil
		}
		return &http.Response{
			StatusCode: 404,
			Body:       io.NopCloser(strings.NewReader("not found")),
		}, nil
	default:
		return nil, fmt.Errorf("unexpected host: %s", req.URL.Host)
	}
}

// Requests returns the requests seen so far.
func (t *FakeTransport) Requests() []*http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*http.Request, len(t.requests))
	copy(out, t.requests)
	return out
}

// LastSearch returns the most recent request sent to Tenor, or nil.
func (t *FakeTransport) LastSearch() *http.Request {
	reqs := t.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].URL.Host == "tenor.googleapis.com" {
			return reqs[i]
		}
	}
	return nil
}

func WithTransport(t *testing.T, rt http.RoundTripper, fn func()) {
	t.Helper()
	prev := http.DefaultTransport
	http.DefaultTransport = rt
	t.Cleanup(func() {
		http.DefaultTransport = prev
	})
	fn()
}

func MakeTestGIF() []byte {
	pal := color.Palette{color.Black, color.White}
	frame1 := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
	frame2 := image.NewPaletted(image.Rect(0, 0, 2, 2), pal)
	frame1.SetColorIndex(0, 0, 1)
	frame2.SetColorIndex(1, 1, 1)

	g := &gif.GIF{
		Image:    []*image.Paletted{frame1, frame2},
		Delay:    []int{5, 7},
		Disposal: []byte{gif.DisposalNone, gif.DisposalBackground},
		Config: image.Config{
			Width:      2,
			Height:     2,
			ColorModel: pal,
		},
	}
	var buf bytes.Buffer
	_ = gif.EncodeAll(&buf, g)
	return buf.Bytes()
}
