package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/constelviz/constel/pkg/cache"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/httputil"
	"github.com/constelviz/constel/pkg/observability"
	"github.com/constelviz/constel/pkg/sim"
)

// Runner encapsulates pipeline execution with caching.
// CLI, API, and TUI all use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, client, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Client *httputil.Client
	Logger *log.Logger
}

// RunnerOption configures a [Runner] beyond its required collaborators.
type RunnerOption func(*Runner)

// WithClient replaces the payload client used for PayloadURL fetches. Hosts
// attach bearer auth or an HTTP response cache this way.
func WithClient(client *httputil.Client) RunnerOption {
	return func(r *Runner) {
		if client != nil {
			r.Client = client
		}
	}
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...RunnerOption) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Cache:  c,
		Keyer:  keyer,
		Client: httputil.NewClient(),
		Logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs the complete normalize → simulate → paint pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Frames: make(map[string][]byte),
	}

	// Stage 1: Normalize
	normStart := time.Now()
	g, err := r.Normalize(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	result.Stats.NormalizeTime = time.Since(normStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.LinkCount = g.LinkCount()

	if graphData, err := graph.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("normalized payload",
		"nodes", g.NodeCount(),
		"links", g.LinkCount(),
		"duration", result.Stats.NormalizeTime)

	// Stage 2: Simulate
	simStart := time.Now()
	settled, ticks, layoutHit, err := r.SimulateWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	result.Graph = settled
	result.Stats.SimulateTime = time.Since(simStart)
	result.Stats.Ticks = ticks
	result.CacheInfo.LayoutHit = layoutHit

	if layoutData, err := graph.MarshalGraph(settled); err == nil {
		result.LayoutHash = cache.Hash(layoutData)
	}

	r.Logger.Info("simulated layout",
		"ticks", ticks,
		"cached", layoutHit,
		"duration", result.Stats.SimulateTime)

	// Stage 3: Paint
	paintStart := time.Now()
	frames, paintHit, err := r.PaintWithCacheInfo(ctx, settled, opts)
	if err != nil {
		return nil, fmt.Errorf("paint: %w", err)
	}
	result.Frames = frames
	result.Stats.PaintTime = time.Since(paintStart)
	result.CacheInfo.PaintHit = paintHit

	r.Logger.Info("painted frames",
		"formats", opts.Formats,
		"duration", result.Stats.PaintTime)

	return result, nil
}

// Normalize resolves the payload (inline or fetched) and converts it into
// the canonical graph. Inline payloads cache the normalized graph by payload
// content and viewport; for URL payloads the client caches the fetched
// response bytes instead, since the URL alone does not identify the content.
func (r *Runner) Normalize(ctx context.Context, opts Options) (*graph.Graph, error) {
	if err := opts.ValidateForNormalize(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	opts.SetSimDefaults()

	graphKey := ""
	if len(opts.PayloadJSON) > 0 {
		payloadHash := cache.Hash(fmt.Appendf(nil, "%s|%gx%g",
			cache.Hash(opts.PayloadJSON), opts.Width, opts.Height))
		graphKey = r.Keyer.GraphKey(payloadHash)
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, graphKey); err == nil && hit {
				if g, err := graph.ReadGraph(bytes.NewReader(data)); err == nil {
					observability.Cache().OnCacheHit(ctx, "graph")
					return g, nil
				}
				// Corrupt entry; renormalize.
			}
			observability.Cache().OnCacheMiss(ctx, "graph")
		}
	}

	var (
		p   graph.Payload
		err error
	)
	if opts.PayloadURL != "" {
		p, err = r.Client.FetchPayload(ctx, opts.PayloadURL)
	} else {
		p, err = graph.DecodePayload(opts.PayloadJSON)
	}
	if err != nil {
		return nil, err
	}

	shape := p.Shape().String()
	observability.Pipeline().OnNormalizeStart(ctx, shape)
	g := graph.Normalize(p, graph.NormalizeOptions{
		ViewportWidth:  opts.Width,
		ViewportHeight: opts.Height,
		Logger:         opts.Logger,
	})
	err = g.Validate()
	observability.Pipeline().OnNormalizeComplete(ctx, shape, g.NodeCount(), g.LinkCount(), err)
	if err != nil {
		return nil, err
	}

	if graphKey != "" {
		if data, err := graph.MarshalGraph(g); err == nil {
			if err := r.Cache.Set(ctx, graphKey, data, cache.TTLGraph); err == nil {
				observability.Cache().OnCacheSet(ctx, "graph", len(data))
			}
		}
	}
	return g, nil
}

// SimulateWithCacheInfo runs the force simulation to the settled state, with
// caching, and returns the tick count and cache hit info. On a cache hit the
// stored settled graph is returned and ticks is zero.
func (r *Runner) SimulateWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, int, bool, error) {
	opts.SetSimDefaults()
	r.applyLogger(&opts)

	graphData, _ := graph.MarshalGraph(g)
	graphHash := cache.Hash(graphData)
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := graph.ReadGraph(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, 0, true, nil
			}
			// Corrupt entry; recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	observability.Pipeline().OnSimulateStart(ctx, g.NodeCount())
	start := time.Now()

	engine := sim.New(opts.Sim, sim.WithLogger(opts.Logger))
	ticks := 0
	engine.Subscribe(func(sim.Snapshot) { ticks++ })
	err := engine.Start(g, opts.Viewport()).Settle(ctx)

	observability.Pipeline().OnSimulateComplete(ctx, g.NodeCount(), ticks, time.Since(start), err)
	if err != nil {
		return nil, ticks, false, err
	}

	if data, err := graph.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return g, ticks, false, nil
}

// Simulate is a convenience wrapper that discards the cache hit info.
func (r *Runner) Simulate(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, error) {
	settled, _, _, err := r.SimulateWithCacheInfo(ctx, g, opts)
	return settled, err
}

// PaintWithCacheInfo renders frames for every requested format with caching
// and returns cache hit info.
func (r *Runner) PaintWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForPaint(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	frames := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.FrameKey(layoutHash, opts.FrameKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			frames[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(frames) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "frame")
		return frames, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "frame")

	observability.Pipeline().OnPaintStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := PaintFrames(ctx, g, opts)
	observability.Pipeline().OnPaintComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.FrameKey(layoutHash, opts.FrameKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLFrame); err == nil {
			observability.Cache().OnCacheSet(ctx, "frame", len(data))
		}
	}
	return rendered, false, nil
}

// Paint is a convenience wrapper that discards the cache hit info.
func (r *Runner) Paint(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, error) {
	frames, _, err := r.PaintWithCacheInfo(ctx, g, opts)
	return frames, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
