package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/erazemk/gifgrab/internal/logging"
	"github.com/erazemk/gifgrab/internal/model"
)

const DefaultBaseURL = "https://tenor.googleapis.com/v2"

// MaxLimit is the largest page Tenor returns for one search.
const MaxLimit = 50

const maxMessageWidth = 200

type tenorResponse struct {
	Results []struct {
		ID                 string                `json:"id"`
		Title              string                `json:"title"`
		ContentDescription string                `json:"content_description"`
		ItemURL            string                `json:"itemurl"`
		URL                string                `json:"url"`
		Tags               []string              `json:"tags"`
		MediaFormats       map[string]tenorMedia `json:"media_formats"`
	} `json:"results"`
	Next string `json:"next"`
}

type tenorMedia struct {
	URL  string `json:"url"`
	Dims []int  `json:"dims"`
	Size int64  `json:"size"`
}

type tenorError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Search runs one query against Tenor. Transport failures and non-2xx
// responses are network errors; an undecodable body is a parse error.
func (c *Client) Search(ctx context.Context, q model.Query) ([]model.Result, error) {
	log := logging.New("search")
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, model.Errorf(model.KindConfig, "missing API key")
	}

	reqURL := strings.TrimRight(c.BaseURL, "/") + "/search?" + Params(c.APIKey, q).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, model.Wrap(model.KindNetwork, err)
	}
	req.Header.Set("User-Agent", model.AppName+"/"+model.Version)
	req.Header.Set("Accept", "application/json")

	log.Debug().
		Str("q", strings.Join(q.Terms, " ")).
		Int("limit", q.Limit).
		Str("media_filter", MediaFilter(q)).
		Msg("searching tenor")

	started := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, model.Wrap(model.KindNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, model.Wrap(model.KindNetwork, newHTTPError(resp))
	}

	var parsed tenorResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, model.Errorf(model.KindParse, "failed to decode response: %w", err)
	}

	out := make([]model.Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		title := r.Title
		if title == "" {
			title = r.ContentDescription
		}
		if title == "" {
			title = r.ID
		}
		res := model.Result{
			ID:    r.ID,
			Title: title,
			Tags:  r.Tags,
			URLs:  map[model.Variant]string{},
			Media: map[model.Variant]model.Media{},
		}
		if r.URL != "" {
			res.URLs[model.VariantFile] = r.URL
		} else if r.ItemURL != "" {
			res.URLs[model.VariantFile] = r.ItemURL
		}
		if r.ItemURL != "" {
			res.URLs[model.VariantPage] = r.ItemURL
		}
		for name, m := range r.MediaFormats {
			v := model.Variant(name)
			if !v.IsMedia() || m.URL == "" {
				continue
			}
			media := model.Media{URL: m.URL, Size: m.Size}
			if len(m.Dims) == 2 {
				media.Width, media.Height = m.Dims[0], m.Dims[1]
			}
			res.Media[v] = media
			res.URLs[v] = m.URL
		}
		out = append(out, res)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("results", len(out)).
		Dur("took", time.Since(started)).
		Msg("tenor responded")
	return out, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Params builds the query string for a search.
func Params(apiKey string, q model.Query) url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = model.DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	phrase := strings.TrimSpace(strings.Join(q.Terms, " "))
	if phrase == "" {
		phrase = model.DefaultPhrase
	}

	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("client_key", model.AppName)
	params.Set("q", phrase)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("media_filter", MediaFilter(q))
	if q.ContentFilter != "" {
		params.Set("contentfilter", q.ContentFilter)
	}
	if q.Locale != "" {
		params.Set("locale", q.Locale)
	}
	return params
}

// MediaFilter lists the media formats the run will read, so Tenor can omit
// the rest of the payload.
func MediaFilter(q model.Query) string {
	var formats []string
	if q.Type.IsMedia() {
		formats = append(formats, string(q.Type))
	}
	if q.Action == model.ActionSave && q.Resolution.IsMedia() && q.Resolution != q.Type {
		formats = append(formats, string(q.Resolution))
	}
	if len(formats) == 0 {
		return string(model.VariantGIF)
	}
	return strings.Join(formats, ",")
}

// HTTPError is a non-2xx response from Tenor.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("unexpected HTTP status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func newHTTPError(resp *http.Response) *HTTPError {
	herr := &HTTPError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return herr
	}
	var parsed tenorError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		herr.Message = parsed.Error.Message
		return herr
	}
	herr.Message = runewidth.Truncate(strings.TrimSpace(string(body)), maxMessageWidth, "…")
	return herr
}

// IsHTTPStatus reports whether err is an HTTPError with the given status.
func IsHTTPStatus(err error, status int) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.StatusCode == status
}
