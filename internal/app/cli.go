package app

import (
	"encoding"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/erazemk/gifgrab/internal/config"
	"github.com/erazemk/gifgrab/internal/model"
)

type CLI struct {
	SetAPIKey   string `name:"set-api-key" placeholder:"KEY" help:"Store the Tenor API key and exit."`
	PrintConfig bool   `name:"print-config" help:"Print the effective configuration and exit."`
	Config      string `placeholder:"PATH" help:"Config file (default: ~/.config/gifgrab/config.yml)."`

	Limit      int    `help:"Number of results." short:"l" default:"10"`
	Type       string `help:"Link to print or copy." short:"t" enum:"file,page,gif,tinygif,mediumgif,nanogif" default:"file"`
	Resolution string `help:"Rendition to save." short:"r" enum:"gif,tinygif,mediumgif,nanogif" default:"gif"`
	CopyRandom bool   `help:"Copy a random result's link to the clipboard." name:"copy-random" short:"c" xor:"action"`
	Copy       bool   `help:"Copy the first result's link to the clipboard." xor:"action"`
	Save       bool   `help:"Save a result's image to the pictures directory." short:"s" xor:"action"`
	Random     bool   `help:"Pick a random result instead of the first (with --save or --copy)."`
	Quiet      bool   `help:"Print nothing on stdout." short:"q"`

	Format string `help:"List output format." enum:"url,plain,tsv,md,json" default:"url"`
	Number bool   `help:"Prefix list lines with a 1-based index." short:"n"`
	Dir    string `help:"Directory for --save (default: save_dir or ~/Pictures)." placeholder:"DIR"`
	Reveal bool   `help:"Reveal the saved file in the file manager."`

	ContentFilter string        `help:"Tenor content filter: off, low, medium or high." name:"content-filter" placeholder:"LEVEL"`
	Locale        string        `help:"Locale for results, e.g. en_US." placeholder:"LOCALE"`
	Timeout       DurationValue `help:"Timeout for the search and the download (e.g. 5s or 5)." placeholder:"DUR"`

	Color   string           `help:"Color output." enum:"auto,always,never" default:"auto"`
	NoColor bool             `help:"Disable color output."`
	Verbose int              `help:"Verbose stderr logs (-vv for more)." short:"v" type:"counter"`
	Version kong.VersionFlag `help:"Show version."`

	Query []string `arg:"" optional:"" name:"query" help:"Search terms (default: cat)."`
}

func (c *CLI) Validate() error {
	if c.Limit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", c.Limit)
	}
	switch strings.ToLower(strings.TrimSpace(c.ContentFilter)) {
	case "", "off", "low", "medium", "high":
	default:
		return fmt.Errorf("--content-filter must be one of off, low, medium, high; got %q", c.ContentFilter)
	}
	if c.Random && !c.Save && !c.Copy && !c.CopyRandom {
		return fmt.Errorf("--random needs --save or --copy")
	}
	if c.Reveal && !c.Save {
		return fmt.Errorf("--reveal needs --save")
	}
	return nil
}

func (c *CLI) action() model.Action {
	switch {
	case c.Copy, c.CopyRandom:
		return model.ActionCopy
	case c.Save:
		return model.ActionSave
	default:
		return model.ActionList
	}
}

// query merges flags with stored settings. Flags win.
func (c *CLI) query(store *config.Store) model.Query {
	terms := make([]string, 0, len(c.Query))
	for _, tok := range c.Query {
		terms = append(terms, strings.Fields(tok)...)
	}
	if len(terms) == 0 {
		terms = []string{model.DefaultPhrase}
	}
	contentFilter := strings.ToLower(strings.TrimSpace(c.ContentFilter))
	if contentFilter == "" && store != nil {
		contentFilter = store.ContentFilter()
	}
	locale := strings.TrimSpace(c.Locale)
	if locale == "" && store != nil {
		locale = store.Locale()
	}
	return model.Query{
		Terms:         terms,
		Limit:         c.Limit,
		Type:          model.Variant(c.Type),
		Resolution:    model.Variant(c.Resolution),
		Action:        c.action(),
		Quiet:         c.Quiet,
		Random:        c.CopyRandom || c.Random,
		ContentFilter: contentFilter,
		Locale:        locale,
	}
}

func (c *CLI) color() string {
	if c.NoColor {
		return "never"
	}
	return c.Color
}

// exitRequest is raised through kong's Exit hook so --help and --version
// return control to run instead of terminating the process.
type exitRequest int

func (e exitRequest) Error() string {
	return fmt.Sprintf("exit %d", int(e))
}

func newParser(cli *CLI, stdout, stderr io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name(model.AppName),
		kong.Description("Search Tenor and print, copy or save GIFs."),
		kong.Writers(stdout, stderr),
		kong.Help(helpPrinter),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, NoExpandSubcommands: true}),
		kong.Vars{"version": model.Version},
		kong.Exit(func(code int) { panic(exitRequest(code)) }),
	)
}

func parseArgs(parser *kong.Kong, args []string) (ctx *kong.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			code, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			ctx, err = nil, code
		}
	}()
	return parser.Parse(args)
}

type DurationValue time.Duration

var _ encoding.TextUnmarshaler = (*DurationValue)(nil)

func (d *DurationValue) UnmarshalText(text []byte) error {
	parsed, err := config.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = DurationValue(parsed)
	return nil
}
