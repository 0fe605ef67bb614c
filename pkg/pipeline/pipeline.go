// Package pipeline provides the core visualization pipeline for Constel.
//
// This package implements the complete normalize → simulate → paint pipeline
// that can be used by CLI, API, and TUI components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Normalize: Convert a host connection payload into the canonical graph
//  2. Simulate: Run the force simulation until the layout settles
//  3. Paint: Render the settled layout in various formats (SVG, PNG, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage result is cached by a content hash of its inputs.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    PayloadJSON: data,
//	    Formats:     []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Frames["svg"]
//
// Run individual stages:
//
//	// Normalize only
//	g, err := runner.Normalize(ctx, opts)
//
//	// Simulate an existing graph
//	g, err = runner.Simulate(ctx, g, opts)
//
//	// Paint an already-settled graph
//	frames, err := runner.Paint(ctx, g, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/constelviz/constel/pkg/cache"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/sim"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 600.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
//
// Exactly one payload source is required: inline JSON bytes or a URL the
// runner's payload client fetches from.
type Options struct {
	// Payload source
	PayloadJSON json.RawMessage `json:"payload,omitempty"`
	PayloadURL  string          `json:"payload_url,omitempty"`
	Refresh     bool            `json:"refresh,omitempty"` // bypass cached graph/layout

	// Simulation options
	Width  float64     `json:"width,omitempty"`
	Height float64     `json:"height,omitempty"`
	Sim    sim.Options `json:"sim,omitempty"`

	// Paint options
	Formats []string `json:"formats,omitempty"`
	Pinned  bool     `json:"pinned,omitempty"` // pin simulated positions in DOT/PNG output

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the normalized graph with settled positions.
	Graph *graph.Graph

	// GraphHash is the content hash of the normalized (pre-simulation) graph.
	GraphHash string

	// LayoutHash is the content hash of the settled layout.
	LayoutHash string

	// Frames contains rendered outputs keyed by format.
	Frames map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount     int
	LinkCount     int
	Ticks         int
	NormalizeTime time.Duration
	SimulateTime  time.Duration
	PaintTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the settled layout came from cache
	PaintHit  bool // Whether all frames came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForNormalize(); err != nil {
		return err
	}
	o.SetSimDefaults()
	o.SetPaintDefaults()
	o.validated = true
	return nil
}

// ValidateForNormalize checks required fields for normalization.
func (o *Options) ValidateForNormalize() error {
	if len(o.PayloadJSON) == 0 && o.PayloadURL == "" {
		return fmt.Errorf("payload or payload_url is required")
	}
	if len(o.PayloadJSON) > 0 && o.PayloadURL != "" {
		return fmt.Errorf("payload and payload_url are mutually exclusive")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetSimDefaults sets default values for the simulation stage.
func (o *Options) SetSimDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetPaintDefaults sets default values for painting.
func (o *Options) SetPaintDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForPaint validates and sets defaults for painting.
func (o *Options) ValidateForPaint() error {
	o.SetSimDefaults()
	o.SetPaintDefaults()
	return ValidateFormats(o.Formats)
}

// Viewport returns the simulation viewport from the options.
func (o *Options) Viewport() sim.Viewport {
	return sim.Viewport{Width: o.Width, Height: o.Height}
}

// SimHash returns a stable hash of the simulation parameters, for layout
// cache keys.
func (o *Options) SimHash() string {
	s := o.Sim
	data, _ := json.Marshal(s)
	return cache.Hash(data)
}

// LayoutKeyOpts returns cache key options for the simulation stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ViewportWidth:  o.Width,
		ViewportHeight: o.Height,
		SimHash:        o.SimHash(),
	}
}

// FrameKeyOpts returns cache key options for one painted format.
func (o *Options) FrameKeyOpts(format string) cache.FrameKeyOpts {
	return cache.FrameKeyOpts{
		Format: format,
		Width:  o.Width,
		Height: o.Height,
	}
}
