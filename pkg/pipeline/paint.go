package pipeline

import (
	"context"
	"fmt"

	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/paint"
	"github.com/constelviz/constel/pkg/view"
)

// PaintFrames renders the settled graph in every requested format.
//
// SVG frames are painted with the engine's own renderer, with the camera
// fitted on the source node the same way an interactive view opens. DOT and
// PNG go through Graphviz; PNG always pins the simulated positions so the
// raster matches the interactive layout.
func PaintFrames(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForPaint(); err != nil {
		return nil, err
	}

	frames := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := paintFrame(ctx, g, format, opts)
		if err != nil {
			return nil, fmt.Errorf("paint %s: %w", format, err)
		}
		frames[format] = data
	}
	return frames, nil
}

func paintFrame(ctx context.Context, g *graph.Graph, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		cam := view.NewCamera()
		if src := g.Source(); src != nil {
			cam.FitSource(src.X, src.Y, opts.Width, opts.Height)
		}
		return paint.RenderSVG(g,
			paint.WithCamera(cam),
			paint.WithViewport(opts.Width, opts.Height),
		), nil

	case FormatDOT:
		return []byte(paint.ToDOT(g, paint.DOTOptions{Pinned: opts.Pinned})), nil

	case FormatPNG:
		dot := paint.ToDOT(g, paint.DOTOptions{Pinned: true})
		return paint.RenderDOT(ctx, dot, "png")

	case FormatJSON:
		return graph.MarshalGraph(g)

	default:
		return nil, ValidateFormat(format)
	}
}
