package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/erazemk/gifgrab/internal/config"
	"github.com/erazemk/gifgrab/internal/logging"
	"github.com/erazemk/gifgrab/internal/model"
	"github.com/erazemk/gifgrab/internal/search"
)

func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cli CLI
	parser, err := newParser(&cli, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if _, err := parseArgs(parser, args); err != nil {
		var exit exitRequest
		if errors.As(err, &exit) {
			return int(exit)
		}
		_, _ = fmt.Fprintf(stderr, "%s: %s\n", model.AppName, err)
		_, _ = fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", model.AppName)
		return model.ExitCode(model.Wrap(model.KindUsage, err))
	}

	err = execute(ctx, &cli, stdout, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %s\n", model.AppName, err)
	}
	return model.ExitCode(err)
}

func execute(ctx context.Context, cli *CLI, stdout, stderr io.Writer) error {
	path, err := config.ResolvePath(cli.Config)
	if err != nil {
		return model.Errorf(model.KindConfig, "resolve config path: %w", err)
	}
	store, err := config.Load(path)
	if err != nil {
		if cli.SetAPIKey == "" {
			return err
		}
		store = config.Blank(path)
	}

	closer, err := logging.Setup(stderr, logging.Options{
		Verbose:   cli.Verbose,
		Quiet:     cli.Quiet,
		NoColor:   !shouldUseColor(cli.color(), stderr),
		File:      store.LogFile(),
		FileLevel: store.LogLevel(),
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "warning: could not open log file: %v\n", err)
		closer, _ = logging.Setup(stderr, logging.Options{Verbose: cli.Verbose, Quiet: cli.Quiet})
	}
	defer func() { _ = closer.Close() }()
	log := logging.New("app")

	if cli.SetAPIKey != "" {
		if err := store.SetAPIKey(cli.SetAPIKey); err != nil {
			return err
		}
		log.Info().Str("path", store.Path()).Msg("api key saved")
		if !cli.Quiet {
			_, _ = fmt.Fprintf(stdout, "API key saved to %s\n", store.Path())
		}
		return nil
	}
	if cli.PrintConfig {
		return store.Dump(stdout)
	}

	apiKey, err := store.RequireAPIKey()
	if err != nil {
		return err
	}
	timeout := time.Duration(cli.Timeout)
	if timeout == 0 {
		if timeout, err = store.Timeout(); err != nil {
			return err
		}
	}

	q := cli.query(store)
	log.Info().
		Strs("terms", q.Terms).
		Int("limit", q.Limit).
		Str("action", string(q.Action)).
		Str("type", string(q.Type)).
		Msg("query")

	results, err := search.NewClient(apiKey, timeout).Search(ctx, q)
	if err != nil {
		return withKeyHint(err)
	}

	opts := actionOptions{
		Format:  outputFormat(cli.Format),
		Number:  cli.Number,
		Color:   shouldUseColor(cli.color(), stdout),
		Reveal:  cli.Reveal,
		Timeout: timeout,
	}
	if q.Action == model.ActionSave {
		opts.Dir = cli.Dir
		if opts.Dir == "" {
			if opts.Dir, err = store.SaveDir(); err != nil {
				return model.Errorf(model.KindIO, "resolve save directory: %w", err)
			}
		}
	}
	return dispatch(ctx, stdout, q, results, opts)
}

// withKeyHint points at --set-api-key when Tenor rejects the key.
func withKeyHint(err error) error {
	rejected := search.IsHTTPStatus(err, http.StatusUnauthorized) ||
		search.IsHTTPStatus(err, http.StatusForbidden) ||
		(search.IsHTTPStatus(err, http.StatusBadRequest) && strings.Contains(err.Error(), "API key"))
	if rejected {
		return model.Errorf(model.KindNetwork, "%w (check the key set with --set-api-key)", err)
	}
	return err
}
