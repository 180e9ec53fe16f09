package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/pipeline"
	"github.com/matzehuels/slipmap/pkg/slips"
	"github.com/matzehuels/slipmap/pkg/source"
	"github.com/matzehuels/slipmap/pkg/source/local"
)

// layoutCommand creates the layout command for computing a single layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		vizType string
		key     string
	)
	opts := newOptions()

	cmd := &cobra.Command{
		Use:   "layout [file.csv]",
		Short: "Compute a treemap or word-cloud layout from a CSV file",
		Long: `Compute a treemap or word-cloud layout from a CSV file.

The durations are summed by --key and laid out as --type. The output is a
layout.json file (same format as 'render -f json') that the 'render' command
turns into SVG or PNG.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Keys = []string{key}
			opts.VizTypes = []string{vizType}
			if err := c.finishOptions(cmd, &opts); err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>_<key>_<type>.layout.json)")
	cmd.Flags().StringVarP(&vizType, "type", "t", layout.VizTypeTreemap, "visualization type: treemap, wordcloud")
	cmd.Flags().StringVarP(&key, "key", "k", string(slips.KeyTask), "aggregation key: task, project or any column")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout aggregates the file, computes the layout, and writes it.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string) error {
	records, err := local.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	key, viz := opts.Keys[0], opts.VizTypes[0]
	ds := source.Dataset{Title: local.Title(input), Source: local.Name, Records: records}

	agg, _, err := runner.AggregateWithCacheInfo(ctx, ds, key, opts)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	for _, msg := range agg.Skipped {
		c.Logger.Warn("skipped record", "reason", msg)
	}
	if agg.Values.Len() == 0 {
		return fmt.Errorf("no %s in %s has a positive total", key, input)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", viz))
	spinner.Start()

	l, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, agg.Values, viz, pipeline.Meta{Title: ds.Title, Key: key}, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = fmt.Sprintf("%s_%s_%s.layout.json", base, key, viz)
	}
	if err := layout.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(records), len(agg.Skipped), len(l.Dropped), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
