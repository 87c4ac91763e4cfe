package app

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/erazemk/gifgrab/internal/model"
)

func helpPrinter(options kong.HelpOptions, ctx *kong.Context) error {
	useColor := helpWantsColor(ctx)
	_, _ = fmt.Fprintln(ctx.Stdout, helpHeader(useColor))
	_, _ = fmt.Fprintln(ctx.Stdout, helpTagline(useColor))
	_, _ = fmt.Fprintln(ctx.Stdout)

	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if options.Summary {
		return nil
	}
	_, _ = fmt.Fprintln(ctx.Stdout)
	for _, line := range helpExtras() {
		_, _ = fmt.Fprintln(ctx.Stdout, line)
	}
	return nil
}

func helpHeader(useColor bool) string {
	if !useColor {
		return fmt.Sprintf("%s %s", model.AppName, model.Version)
	}
	return "\x1b[1m\x1b[36m" + model.AppName + "\x1b[0m" + " " + "\x1b[1m" + model.Version + "\x1b[0m"
}

func helpTagline(useColor bool) string {
	if !useColor {
		return model.Tagline
	}
	return "\x1b[90m" + model.Tagline + "\x1b[0m"
}

// helpWantsColor runs before flags are applied, so it reads --color and
// --no-color straight from the raw arguments.
func helpWantsColor(ctx *kong.Context) bool {
	mode := "auto"
	for i := 0; i < len(ctx.Args); i++ {
		arg := ctx.Args[i]
		switch {
		case arg == "--no-color":
			mode = "never"
		case strings.HasPrefix(arg, "--color="):
			mode = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(arg, "--color=")))
		case arg == "--color" && i+1 < len(ctx.Args):
			mode = strings.ToLower(strings.TrimSpace(ctx.Args[i+1]))
			i++
		}
	}
	return shouldUseColor(mode, ctx.Stdout)
}

func helpExtras() []string {
	return []string{
		"Examples:",
		"  " + model.AppName + " --set-api-key YOUR_TENOR_KEY",
		"  " + model.AppName + " happy dance",
		"  " + model.AppName + " -l 3 -t gif --format plain cats",
		"  " + model.AppName + " -c -q thumbs up          # random link to clipboard",
		"  " + model.AppName + " -s -r tinygif --random party --reveal",
		"  " + model.AppName + " --format json dogs | jq '.[0].url'",
		"",
		"Config:",
		"  " + configLocationHint(),
		"  keys: api_key, save_dir, content_filter, locale, timeout, log_file, log_level",
		"",
		"Environment:",
		"  GIFGRAB_API_KEY  overrides the stored key",
		"  GIFGRAB_CONFIG   config file path",
		"  DEBUG            debug logs on stderr",
	}
}

var goos = runtime.GOOS

func configLocationHint() string {
	if goos == "windows" {
		return `%APPDATA%\` + model.AppName + `\config.yml`
	}
	return "~/.config/" + model.AppName + "/config.yml (or $XDG_CONFIG_HOME)"
}
