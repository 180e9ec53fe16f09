package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slipmap/pkg/cache"
	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/integrations/joplin"
	"github.com/matzehuels/slipmap/pkg/pipeline"
	joplinsrc "github.com/matzehuels/slipmap/pkg/source/joplin"
)

// summarizeCommand creates the summarize command: the whole pipeline over
// Joplin notes tagged as time slips.
func (c *CLI) summarizeCommand() *cobra.Command {
	var (
		token   string
		baseURL string
		tag     string
		refresh bool
		viz     vizFlags
	)
	opts := newOptions()

	cmd := &cobra.Command{
		Use:   "summarize [output-dir]",
		Short: "Summarize time slips stored in Joplin notes",
		Long: `Summarize time slips stored in Joplin notes.

Every note tagged --tag (default "time-slip") must hold a CSV table with a
Duration column. For each note, key and visualization type an image named
{note title}_{key}_{type}.{format} is written to the output directory,
which is created if missing.

The Joplin desktop app must be running with the Web Clipper service
enabled. The token is shown under Options > Web Clipper and may also be
given as $SLIPMAP_JOPLIN_TOKEN or in the [joplin] config section.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.VizTypes = viz.types()
			opts.Refresh = refresh
			if err := c.finishOptions(cmd, &opts); err != nil {
				return err
			}

			jc := c.config.Joplin
			if cmd.Flags().Changed("token") {
				jc.Token = token
			}
			if cmd.Flags().Changed("url") {
				jc.URL = baseURL
			}
			if cmd.Flags().Changed("tag") || jc.Tag == "" {
				jc.Tag = tag
			}

			dir := c.outputDir()
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runSummarize(cmd.Context(), jc, opts, dir)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Joplin Web Clipper token")
	cmd.Flags().StringVar(&baseURL, "url", joplin.DefaultURL, "Joplin Data API URL")
	cmd.Flags().StringVar(&tag, "tag", joplin.DefaultTag, "tag marking time-slip notes")
	cmd.Flags().StringSliceVarP(&opts.Keys, "key", "k", opts.Keys, "aggregation key(s)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch notes and ignore cached results")
	viz.bind(cmd)
	addLayoutFlags(cmd, &opts)
	addRenderFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runSummarize(ctx context.Context, jc JoplinConfig, opts pipeline.Options, dir string) error {
	if jc.Token == "" {
		return errors.New(errors.ErrCodeUnauthorized, "a Joplin token is required (--token, $%s or [joplin] token)", envJoplinToken)
	}
	if jc.URL != "" {
		if err := errors.ValidateURL(jc.URL); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	client := joplin.NewClient(jc.URL, jc.Token, runner.Cache, cache.TTLHTTP)
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("joplin at %s is not reachable (is the Web Clipper service on?): %w", client.BaseURL(), err)
	}
	c.Logger.Debug("joplin reachable", "url", client.BaseURL(), "tag", jc.Tag)

	return c.runPipeline(ctx, runner, joplinsrc.New(client, jc.Tag, opts.Refresh), opts, dir)
}
