package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slipmap/pkg/errors"
	"github.com/matzehuels/slipmap/pkg/layout"
	"github.com/matzehuels/slipmap/pkg/pipeline"
	"github.com/matzehuels/slipmap/pkg/render/sink"
)

// renderCommand creates the render command for drawing a computed layout.
func (c *CLI) renderCommand() *cobra.Command {
	var output string
	opts := newOptions()

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a computed layout to SVG, PNG or JSON",
		Long: `Render a computed layout to SVG, PNG or JSON.

The render command takes a layout.json file (produced by 'layout') and
draws it. The layout holds all positions, so this step only draws.

With one format, -o names the output file. With several, -o is a base path
and each file gets its format's extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.finishOptions(cmd, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	addRenderFlags(cmd, &opts)

	return cmd
}

// runRender loads the layout and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string) error {
	l, err := layout.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", l.VizType))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	paths := outputPaths(output, input, opts.Formats)
	for _, format := range opts.Formats {
		if err := writeFile(paths[format], artifacts[format]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", l.VizType)
	for _, format := range opts.Formats {
		printFile(paths[format])
	}
	if cacheHit {
		printDetail(iconCached)
	}
	return nil
}

// outputPaths maps each format to a file path. A single format writes to
// output verbatim; several formats share the base path of output, or of
// input when output is empty.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips a known format extension from output, or derives the
// base from input when output is empty. A ".layout" suffix is dropped so
// "week.layout.json" renders to "week.png".
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if slices.Contains(sink.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeArtifacts writes every artifact of results into dir and returns the
// written paths in order. Artifact names derive from note titles, so each
// must be a plain relative name.
func writeArtifacts(dir string, results []pipeline.Result) ([]string, error) {
	var paths []string
	for _, res := range results {
		for _, a := range res.Artifacts {
			if err := errors.ValidatePath(a.Name); err != nil {
				return paths, fmt.Errorf("artifact %q: %w", a.Name, err)
			}
			path := filepath.Join(dir, a.Name)
			if err := writeFile(path, a.Data); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}
