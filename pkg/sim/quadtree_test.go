package sim

import (
	"math"
	"testing"
)

// bruteForce computes the exact repulsion on point i from all other points.
func bruteForce(xs, ys []float64, i int, strength float64) (fx, fy float64) {
	for j := range xs {
		if j == i {
			continue
		}
		dx := xs[i] - xs[j]
		dy := ys[i] - ys[j]
		d2 := dx*dx + dy*dy
		if d2 < 1e-6 {
			continue
		}
		f := strength / d2
		d := math.Sqrt(d2)
		fx += f * dx / d
		fy += f * dy / d
	}
	return fx, fy
}

func scatter(n int) (xs, ys []float64) {
	// Deterministic pseudo-scatter, no rand dependency.
	for i := 0; i < n; i++ {
		a := float64(i) * 2.399963
		r := 30 + 11*float64(i%17)
		xs = append(xs, 400+r*math.Cos(a))
		ys = append(ys, 300+r*math.Sin(a))
	}
	return xs, ys
}

func TestQuadtreeApproximatesBruteForce(t *testing.T) {
	xs, ys := scatter(150)
	qt := newQuadtree(xs, ys, 0.5)

	const strength = 120.0
	for i := range xs {
		gx, gy := qt.force(xs[i], ys[i], strength)
		ex, ey := bruteForce(xs, ys, i, strength)

		gm := math.Hypot(gx, gy)
		em := math.Hypot(ex, ey)
		if em < 1e-9 {
			continue
		}
		// Magnitude within 15% and direction within ~10° of exact.
		if rel := math.Abs(gm-em) / em; rel > 0.15 {
			t.Errorf("point %d: magnitude off by %.0f%% (%v vs %v)", i, rel*100, gm, em)
		}
		dot := (gx*ex + gy*ey) / (gm * em)
		if dot < 0.985 {
			t.Errorf("point %d: direction diverges, cos = %v", i, dot)
		}
	}
}

func TestQuadtreeTinyThetaIsExact(t *testing.T) {
	// Theta near zero disables the approximation entirely.
	xs, ys := scatter(40)
	qt := newQuadtree(xs, ys, 1e-9)

	for i := range xs {
		gx, gy := qt.force(xs[i], ys[i], 120)
		ex, ey := bruteForce(xs, ys, i, 120)
		if math.Abs(gx-ex) > 1e-6 || math.Abs(gy-ey) > 1e-6 {
			t.Errorf("point %d: (%v, %v) != exact (%v, %v)", i, gx, gy, ex, ey)
		}
	}
}

func TestQuadtreeRepulsionPointsAway(t *testing.T) {
	xs := []float64{0, 100}
	ys := []float64{0, 0}
	qt := newQuadtree(xs, ys, 0.7)

	fx, fy := qt.force(0, 0, 120)
	if fx >= 0 {
		t.Errorf("force on left point fx = %v, want negative (away from right point)", fx)
	}
	if math.Abs(fy) > 1e-9 {
		t.Errorf("fy = %v, want 0 on a horizontal pair", fy)
	}
}

func TestQuadtreeCoincidentPoints(t *testing.T) {
	// Identical points must not recurse forever or yield non-finite forces.
	xs := []float64{50, 50, 50, 60}
	ys := []float64{50, 50, 50, 50}
	qt := newQuadtree(xs, ys, 0.7)

	fx, fy := qt.force(60, 50, 120)
	if math.IsNaN(fx) || math.IsInf(fx, 0) || math.IsNaN(fy) || math.IsInf(fy, 0) {
		t.Fatalf("non-finite force (%v, %v)", fx, fy)
	}
	if fx <= 0 {
		t.Errorf("fx = %v, want positive (pushed away from the stack at x=50)", fx)
	}
}

func TestQuadtreeSinglePoint(t *testing.T) {
	qt := newQuadtree([]float64{10}, []float64{10}, 0.7)
	fx, fy := qt.force(10, 10, 120)
	if fx != 0 || fy != 0 {
		t.Errorf("self force = (%v, %v), want zero", fx, fy)
	}
}
