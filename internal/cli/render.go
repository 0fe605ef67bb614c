package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/constelviz/constel/pkg/errors"
	"github.com/constelviz/constel/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file path (or base path for multiple formats)
	formats []string // output formats: svg, png, dot, json
	url     string   // fetch the payload from a URL instead of a file
	width   float64  // frame width in pixels
	height  float64  // frame height in pixels
	refresh bool     // bypass cached layouts and frames
	pinned  bool     // pin simulated positions in DOT output
	noCache bool     // disable the pipeline cache entirely
}

// renderCommand creates the render command for generating artifacts.
// It reads a connection payload from a file (or "-" for stdin, or --url),
// runs the full pipeline, and writes one file per requested format.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [payload.json]",
		Short: "Render a connection payload to SVG, PNG, DOT, or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" && opts.url == "" {
				return fmt.Errorf("a payload file or --url is required")
			}
			if input != "" && opts.url != "" {
				return fmt.Errorf("payload file and --url are mutually exclusive")
			}
			if opts.url != "" {
				if err := errors.ValidateURL(opts.url); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.url, "url", "", "fetch the payload from this URL")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "frame width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "frame height (default from config)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute layout and frames, bypassing the cache")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "pin simulated positions in DOT output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

// runRender executes the pipeline and writes the resulting frames.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := c.pipelineOptions()
	pipeOpts.Formats = opts.formats
	pipeOpts.Refresh = opts.refresh
	pipeOpts.Pinned = opts.pinned
	if opts.width > 0 {
		pipeOpts.Width = opts.width
	}
	if opts.height > 0 {
		pipeOpts.Height = opts.height
	}

	if opts.url != "" {
		pipeOpts.PayloadURL = opts.url
	} else {
		data, err := readPayload(input)
		if err != nil {
			return err
		}
		pipeOpts.PayloadJSON = data
	}

	spinner := newSpinnerWithContext(ctx, "Settling layout...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeOpts)
	spinner.Stop()
	if err != nil {
		return err
	}

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := opts.output
		if path == "" || len(opts.formats) > 1 {
			path = base + "." + format
		}
		if err := os.WriteFile(path, result.Frames[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.Stats.Ticks, result.CacheInfo.LayoutHit)
	return nil
}

// readPayload reads the payload from a file, or stdin when input is "-".
func readPayload(input string) ([]byte, error) {
	if input == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input; a "-" (stdin)
// input falls back to "constellation".
func basePath(output, input string) string {
	if output == "" {
		if input == "" || input == "-" {
			return "constellation"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
