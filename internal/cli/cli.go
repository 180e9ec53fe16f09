// Package cli implements the slipmap command-line interface.
//
// Commands are built on cobra and share one [CLI] value holding the logger
// and the loaded configuration.
//
// # Commands
//
//   - aggregate: print per-task or per-project totals for CSV files
//   - layout: compute a treemap or word-cloud layout and write it as JSON
//   - render: turn a layout JSON file into SVG, PNG or JSON
//   - visualize: run the whole pipeline over local CSV files
//   - summarize: run the whole pipeline over tagged Joplin notes
//   - serve: expose aggregate, layout and render over HTTP
//   - cache: inspect or clear the pipeline cache
//
// # Configuration
//
// Settings come from flags, then SLIPMAP_* environment variables, then the
// TOML file at $XDG_CONFIG_HOME/slipmap/config.toml (or --config).
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/slipmap/pkg/buildinfo"
	"github.com/matzehuels/slipmap/pkg/cache"
	"github.com/matzehuels/slipmap/pkg/observability"
	"github.com/matzehuels/slipmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "slipmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	config     Config
	configPath string
	noCache    bool
	verbose    bool
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Slipmap turns time slips into treemaps and word clouds",
		Long: `Slipmap sums the durations in time-slip tables per task or project and
draws the totals as a squarified treemap and as a word cloud.

Tables are CSV files on disk or Joplin notes tagged "time-slip".`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/slipmap/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	root.AddCommand(c.aggregateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.summarizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it sets the log level, loads the config
// and, when verbose, logs pipeline, cache and HTTP events.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}

	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// openCache opens the configured backend. A file cache that cannot be
// created degrades to no caching; remote backends must be reachable.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.config.Cache.CacheBackend()
	cc, err := cache.Open(ctx, cfg)
	if err != nil {
		if cfg.Backend == "" || cfg.Backend == cache.BackendFile {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return cc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// newOptions returns pipeline options with every default filled in, ready
// to be bound to flags.
func newOptions() pipeline.Options {
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	opts.Keys = append([]string(nil), pipeline.DefaultKeys...)
	return opts
}

// finishOptions merges the config file into opts and validates the result.
func (c *CLI) finishOptions(cmd *cobra.Command, opts *pipeline.Options) error {
	c.config.apply(opts, cmd.Flags().Changed)
	opts.Logger = c.Logger
	return opts.ValidateAndSetDefaults()
}

// addLayoutFlags binds the treemap and word-cloud options.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	f := cmd.Flags()
	f.Float64Var(&opts.TreemapWidth, "treemap-width", opts.TreemapWidth, "treemap width")
	f.Float64Var(&opts.TreemapHeight, "treemap-height", opts.TreemapHeight, "treemap height")
	f.BoolVar(&opts.ShowTime, "show-time", opts.ShowTime, "append the XhYm total to treemap labels")
	f.Float64Var(&opts.CloudWidth, "cloud-width", opts.CloudWidth, "word cloud width")
	f.Float64Var(&opts.CloudHeight, "cloud-height", opts.CloudHeight, "word cloud height")
	f.Float64Var(&opts.MinFont, "min-font", opts.MinFont, "smallest word-cloud font size")
	f.Float64Var(&opts.MaxFont, "max-font", opts.MaxFont, "largest word-cloud font size")
	f.StringVar(&opts.Scale, "scale", opts.Scale, "word-cloud font scale: sqrt (default), linear")
	f.IntVar(&opts.MaxSteps, "max-steps", opts.MaxSteps, "spiral steps tried per word")
	f.Float64Var(&opts.Padding, "padding", opts.Padding, "gap kept between words")
}

// addRenderFlags binds the output options.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options) {
	f := cmd.Flags()
	f.StringSliceVarP(&opts.Formats, "format", "f", opts.Formats, "output format(s): png, svg, json")
	f.Float64Var(&opts.PNGScale, "png-scale", opts.PNGScale, "PNG pixel density")
	f.BoolVar(&opts.Titles, "titles", opts.Titles, "draw the dataset title above each image")
}
