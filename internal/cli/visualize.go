package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/pipeline"
	"github.com/matzehuels/slipmap/pkg/source"
	"github.com/matzehuels/slipmap/pkg/source/local"
)

// vizFlags selects visualization types; neither flag means both.
type vizFlags struct {
	treemap   bool
	wordcloud bool
}

func (v *vizFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&v.treemap, "treemap", false, "produce treemaps")
	cmd.Flags().BoolVar(&v.wordcloud, "wordcloud", false, "produce word clouds")
}

func (v *vizFlags) types() []string {
	var out []string
	if v.treemap {
		out = append(out, layout.VizTypeTreemap)
	}
	if v.wordcloud {
		out = append(out, layout.VizTypeWordCloud)
	}
	return out
}

// visualizeCommand creates the visualize command: the whole pipeline over
// local CSV files.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output  string
		refresh bool
		viz     vizFlags
	)
	opts := newOptions()

	cmd := &cobra.Command{
		Use:   "visualize [file.csv|dir]...",
		Short: "Aggregate, lay out and render local time-slip files",
		Long: `Aggregate, lay out and render local time-slip files.

Every CSV file (or every *.csv file in a directory) is a dataset named after
the file. For each dataset, key and visualization type one image is written
to the output directory as {title}_{key}_{type}.{format}.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.VizTypes = viz.types()
			opts.Refresh = refresh
			if err := c.finishOptions(cmd, &opts); err != nil {
				return err
			}
			dir := output
			if dir == "" {
				dir = c.outputDir()
			}
			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			return c.runPipeline(cmd.Context(), runner, local.New(args...), opts, dir)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default: [output] dir or .)")
	cmd.Flags().StringSliceVarP(&opts.Keys, "key", "k", opts.Keys, "aggregation key(s)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	viz.bind(cmd)
	addLayoutFlags(cmd, &opts)
	addRenderFlags(cmd, &opts)

	return cmd
}

// outputDir returns the configured output directory, or ".".
func (c *CLI) outputDir() string {
	if c.config.Output.Dir != "" {
		return c.config.Output.Dir
	}
	return "."
}

// runPipeline executes src through the runner and writes every artifact to
// dir. Failed datasets are reported and skipped; the command fails only if
// no dataset succeeded.
func (c *CLI) runPipeline(ctx context.Context, runner *pipeline.Runner, src source.Source, opts pipeline.Options, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s datasets...", src.Name()))
	spinner.Start()

	results, err := runner.Run(ctx, src, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(dir, results)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			printError("%s: %v", res.Dataset, res.Err)
			continue
		}
		cached := res.CacheInfo.LayoutHits > 0 && res.CacheInfo.RenderHits == res.CacheInfo.LayoutHits
		printSuccess("%s", res.Dataset)
		for _, a := range res.Artifacts {
			printFile(a.Name)
		}
		printStats(res.Stats.Records, res.Stats.Skipped, res.Stats.Dropped, cached)
	}
	prog.done("pipeline finished", "datasets", len(results), "artifacts", len(paths), "dir", dir)

	switch {
	case len(results) == 0:
		printWarning("No datasets found")
	case failed == len(results):
		return fmt.Errorf("all %d dataset(s) failed", failed)
	case failed > 0:
		printWarning("%d of %d dataset(s) failed", failed, len(results))
	}
	return nil
}
