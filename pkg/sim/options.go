package sim

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultRepulsion is the charge-force magnitude. Every node pushes every
	// other node away with this strength, attenuated by distance². Treated as
	// a tunable parameter, not a semantically meaningful value.
	DefaultRepulsion = 120.0

	// DefaultCollisionPadding scales node radii for collision checks. Two
	// nodes collide when their centers are closer than
	// (r1 + r2) * padding. Tunable, same caveat as DefaultRepulsion.
	DefaultCollisionPadding = 1.2

	// DefaultSpringStiffness scales the link spring force pulling endpoints
	// toward their rest length.
	DefaultSpringStiffness = 0.05

	// DefaultCenterStrength scales the weak force pulling the node centroid
	// toward the viewport center, preventing drift.
	DefaultCenterStrength = 0.02

	// DefaultFriction is the per-tick velocity damping factor. Must be < 1
	// to avoid runaway oscillation.
	DefaultFriction = 0.85

	// DefaultAlphaDecay is the geometric cooling rate: alpha *= 1 - decay
	// each tick.
	DefaultAlphaDecay = 0.025

	// DefaultAlphaMin is the stop threshold. Once alpha falls below it the
	// engine is settled and Tick becomes a no-op until a restart.
	DefaultAlphaMin = 0.001

	// DefaultMaxDisplacement clamps per-tick node movement, guarding against
	// simulation divergence.
	DefaultMaxDisplacement = 30.0

	// DefaultTheta is the Barnes-Hut opening angle. A quadtree cell whose
	// width/distance ratio is below theta is treated as a single point mass.
	DefaultTheta = 0.7

	// DefaultBruteForceLimit is the node count up to which exact O(n²)
	// repulsion is used instead of the quadtree approximation. Graphs of a
	// few dozen nodes are cheaper to integrate exactly.
	DefaultBruteForceLimit = 64
)

// Options holds the tunable parameters of the force simulation.
// The zero value is usable: [Options.setDefaults] fills in every field.
type Options struct {
	Repulsion        float64 `json:"repulsion,omitempty" toml:"repulsion"`
	CollisionPadding float64 `json:"collision_padding,omitempty" toml:"collision_padding"`
	SpringStiffness  float64 `json:"spring_stiffness,omitempty" toml:"spring_stiffness"`
	CenterStrength   float64 `json:"center_strength,omitempty" toml:"center_strength"`
	Friction         float64 `json:"friction,omitempty" toml:"friction"`
	AlphaDecay       float64 `json:"alpha_decay,omitempty" toml:"alpha_decay"`
	AlphaMin         float64 `json:"alpha_min,omitempty" toml:"alpha_min"`
	MaxDisplacement  float64 `json:"max_displacement,omitempty" toml:"max_displacement"`
	Theta            float64 `json:"theta,omitempty" toml:"theta"`
	BruteForceLimit  int     `json:"brute_force_limit,omitempty" toml:"brute_force_limit"`
}

func (o *Options) setDefaults() {
	if o.Repulsion <= 0 {
		o.Repulsion = DefaultRepulsion
	}
	if o.CollisionPadding <= 0 {
		o.CollisionPadding = DefaultCollisionPadding
	}
	if o.SpringStiffness <= 0 {
		o.SpringStiffness = DefaultSpringStiffness
	}
	if o.CenterStrength <= 0 {
		o.CenterStrength = DefaultCenterStrength
	}
	if o.Friction <= 0 || o.Friction >= 1 {
		o.Friction = DefaultFriction
	}
	if o.AlphaDecay <= 0 || o.AlphaDecay >= 1 {
		o.AlphaDecay = DefaultAlphaDecay
	}
	if o.AlphaMin <= 0 {
		o.AlphaMin = DefaultAlphaMin
	}
	if o.MaxDisplacement <= 0 {
		o.MaxDisplacement = DefaultMaxDisplacement
	}
	if o.Theta <= 0 {
		o.Theta = DefaultTheta
	}
	if o.BruteForceLimit <= 0 {
		o.BruteForceLimit = DefaultBruteForceLimit
	}
}

// Viewport describes the drawing surface the simulation centers itself in.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the viewport midpoint, the target of the centering force.
func (v Viewport) Center() (x, y float64) { return v.Width / 2, v.Height / 2 }
