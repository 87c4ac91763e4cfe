package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/erazemk/gifgrab/internal/model"
)

type outputFormat string

const (
	formatURL   outputFormat = "url"
	formatPlain outputFormat = "plain"
	formatTSV   outputFormat = "tsv"
	formatMD    outputFormat = "md"
	formatJSON  outputFormat = "json"
)

const maxTitleWidth = 48

var isTerminalWriter = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func shouldUseColor(mode string, w io.Writer) bool {
	switch mode {
	case "never":
		return false
	case "always":
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	termEnv := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	if termEnv == "dumb" || termEnv == "" {
		return false
	}
	return isTerminalWriter(w)
}

type jsonResult struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Tags  []string `json:"tags,omitempty"`
	// Width and Height describe the linked rendition when it is a media file.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

func renderList(w io.Writer, results []model.Result, v model.Variant, opts actionOptions) error {
	if opts.Format == formatJSON {
		out := make([]jsonResult, 0, len(results))
		for _, res := range results {
			m := res.Media[v]
			out = append(out, jsonResult{
				ID:     res.ID,
				Title:  normalizeTitle(res),
				URL:    res.Link(v),
				Tags:   res.Tags,
				Width:  m.Width,
				Height: m.Height,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	out := bufio.NewWriter(w)
	switch opts.Format {
	case formatPlain:
		renderPlain(out, results, v, opts)
	case formatTSV:
		for i, res := range results {
			_, _ = fmt.Fprintf(out, "%s%s\t%s\t%s\n", numberPrefix(opts, i, "\t"), res.ID, normalizeTitle(res), res.Link(v))
		}
	case formatMD:
		for i, res := range results {
			bullet := "- "
			if opts.Number {
				bullet = fmt.Sprintf("%d. ", i+1)
			}
			_, _ = fmt.Fprintf(out, "%s[%s](%s)\n", bullet, escapeMarkdown(normalizeTitle(res)), res.Link(v))
		}
	default:
		for i, res := range results {
			link := res.Link(v)
			if opts.Color {
				link = "\x1b[36m" + link + "\x1b[0m"
			}
			_, _ = fmt.Fprintf(out, "%s%s\n", numberPrefix(opts, i, "\t"), link)
		}
	}
	return out.Flush()
}

// renderPlain prints an aligned title column followed by the link. Widths
// are measured in terminal cells so wide runes line up.
func renderPlain(out *bufio.Writer, results []model.Result, v model.Variant, opts actionOptions) {
	titles := make([]string, len(results))
	width := 0
	for i, res := range results {
		titles[i] = runewidth.Truncate(normalizeTitle(res), maxTitleWidth, "…")
		if w := runewidth.StringWidth(titles[i]); w > width {
			width = w
		}
	}
	for i, res := range results {
		title := runewidth.FillRight(titles[i], width)
		link := res.Link(v)
		if opts.Color {
			title = "\x1b[1m" + title + "\x1b[0m"
			link = "\x1b[36m" + link + "\x1b[0m"
		}
		_, _ = fmt.Fprintf(out, "%s%s  %s\n", numberPrefix(opts, i, ". "), title, link)
	}
}

func numberPrefix(opts actionOptions, i int, sep string) string {
	if !opts.Number {
		return ""
	}
	return fmt.Sprintf("%d%s", i+1, sep)
}

func normalizeTitle(res model.Result) string {
	label := strings.Join(strings.Fields(res.Title), " ")
	if label == "" {
		label = strings.Join(strings.Fields(res.ID), " ")
	}
	if label == "" {
		label = "untitled"
	}
	return label
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
