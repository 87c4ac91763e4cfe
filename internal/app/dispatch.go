package app

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/erazemk/gifgrab/internal/clipboard"
	"github.com/erazemk/gifgrab/internal/download"
	"github.com/erazemk/gifgrab/internal/logging"
	"github.com/erazemk/gifgrab/internal/model"
	"github.com/erazemk/gifgrab/internal/reveal"
)

var (
	copyToClipboardFn = clipboard.CopyText
	saveResultFn      = download.Save
	revealFn          = reveal.Reveal
	randIntN          = rand.Intn
)

type actionOptions struct {
	Format  outputFormat
	Number  bool
	Color   bool
	Dir     string
	Reveal  bool
	// Timeout bounds the image download for save.
	Timeout time.Duration
}

func dispatch(ctx context.Context, stdout io.Writer, q model.Query, results []model.Result, opts actionOptions) error {
	log := logging.New("dispatch")
	candidates := usableResults(results, q.LinkVariant())
	if len(candidates) == 0 {
		return fmt.Errorf("no results for %q", strings.Join(q.Terms, " "))
	}
	if q.Limit > 0 && len(candidates) > q.Limit {
		candidates = candidates[:q.Limit]
	}
	log.Debug().
		Int("results", len(results)).
		Int("usable", len(candidates)).
		Str("variant", string(q.LinkVariant())).
		Msg("dispatching")

	switch q.Action {
	case model.ActionCopy:
		item := pickResult(candidates, q.Random)
		link := item.Link(q.Type)
		if err := copyToClipboardFn(link); err != nil {
			return model.Wrap(model.KindIO, err)
		}
		log.Info().Str("id", item.ID).Str("url", link).Msg("copied")
		if !q.Quiet {
			_, _ = fmt.Fprintln(stdout, link)
		}
		return nil

	case model.ActionSave:
		item := pickResult(candidates, q.Random)
		path, err := saveResultFn(ctx, item, q.Resolution, opts.Dir, opts.Timeout)
		if err != nil {
			return err
		}
		log.Info().Str("id", item.ID).Str("path", path).Msg("saved")
		if !q.Quiet {
			_, _ = fmt.Fprintln(stdout, path)
		}
		if opts.Reveal {
			if err := revealFn(path); err != nil {
				log.Warn().Err(err).Msg("reveal failed")
			}
		}
		return nil

	default:
		if q.Quiet {
			return nil
		}
		return renderList(stdout, candidates, q.Type, opts)
	}
}

// usableResults keeps results that have a URL for v, in API order.
func usableResults(results []model.Result, v model.Variant) []model.Result {
	out := make([]model.Result, 0, len(results))
	for _, res := range results {
		if res.Link(v) != "" {
			out = append(out, res)
		}
	}
	return out
}

func pickResult(results []model.Result, random bool) model.Result {
	if !random || len(results) == 1 {
		return results[0]
	}
	return results[randIntN(len(results))]
}
