package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slipmap/pkg/pipeline"
	"github.com/matzehuels/slipmap/pkg/slips"
	"github.com/matzehuels/slipmap/pkg/source/local"
)

// aggregateOutput is the --json shape: one entry per dataset.
type aggregateOutput struct {
	Dataset      string                 `json:"dataset"`
	Aggregations []pipeline.Aggregation `json:"aggregations"`
	Error        string                 `json:"error,omitempty"`
}

// aggregateCommand creates the aggregate command.
func (c *CLI) aggregateCommand() *cobra.Command {
	var asJSON bool
	opts := newOptions()

	cmd := &cobra.Command{
		Use:   "aggregate [file.csv|dir]...",
		Short: "Print total time per task or project",
		Long: `Print total time per task or project.

Each CSV file needs a Duration column in H:MM:SS form. Rows with a malformed
duration are skipped and reported; rows with no duration count as zero.
Labels whose total is zero are left out.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.config.apply(&opts, cmd.Flags().Changed)
			if err := opts.ValidateForAggregate(); err != nil {
				return err
			}
			return c.runAggregate(cmd, args, opts, asJSON)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Keys, "key", "k", opts.Keys, "aggregation key(s): task, project or any column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")

	return cmd
}

func (c *CLI) runAggregate(cmd *cobra.Command, paths []string, opts pipeline.Options, asJSON bool) error {
	datasets, err := local.New(paths...).Datasets(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	outputs := make([]aggregateOutput, 0, len(datasets))
	failed := 0
	for _, ds := range datasets {
		o := aggregateOutput{Dataset: ds.Title}
		if ds.Err != nil {
			failed++
			o.Error = ds.Err.Error()
			c.Logger.Error("read dataset", "dataset", ds.Title, "error", ds.Err)
			outputs = append(outputs, o)
			continue
		}
		for _, key := range opts.Keys {
			agg := pipeline.Aggregate(ds.Records, slips.Key(key))
			for _, msg := range agg.Skipped {
				c.Logger.Warn("skipped record", "dataset", ds.Title, "key", key, "reason", msg)
			}
			o.Aggregations = append(o.Aggregations, agg)
		}
		outputs = append(outputs, o)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outputs); err != nil {
			return err
		}
	} else {
		printAggregations(w, outputs)
	}

	if failed == len(datasets) {
		return fmt.Errorf("no readable datasets among %d input(s)", len(datasets))
	}
	return nil
}

func printAggregations(w io.Writer, outputs []aggregateOutput) {
	for i, o := range outputs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, StyleTitle.Render(o.Dataset))
		if o.Error != "" {
			fmt.Fprintln(w, styleIconError.Render(iconError)+" "+o.Error)
			continue
		}
		for _, agg := range o.Aggregations {
			if agg.Values.Len() == 0 {
				fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("no %s has a positive total", agg.Key)))
				continue
			}
			fmt.Fprintln(w, totalsTable(agg.Key, agg.Values))
			if n := len(agg.Skipped); n > 0 {
				fmt.Fprintln(w, StyleWarning.Render(fmt.Sprintf("%d record(s) skipped", n)))
			}
		}
	}
}
