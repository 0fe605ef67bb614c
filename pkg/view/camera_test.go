package view

import (
	"math"
	"testing"
)

func TestZeroValueIsIdentity(t *testing.T) {
	var c Camera
	sx, sy := c.ToScreen(123, 456)
	if sx != 123 || sy != 456 {
		t.Errorf("ToScreen(123, 456) = (%v, %v), want identity", sx, sy)
	}
}

func TestScreenRoundTrip(t *testing.T) {
	c := NewCamera()
	c.Pan(37, -12)
	c.ZoomAt(1.5, 200, 150)

	x, y := 410.5, 296.25
	sx, sy := c.ToScreen(x, y)
	gx, gy := c.FromScreen(sx, sy)
	if math.Abs(gx-x) > 1e-9 || math.Abs(gy-y) > 1e-9 {
		t.Errorf("round trip (%v, %v) -> (%v, %v)", x, y, gx, gy)
	}
}

func TestPanMovesSceneWithPointer(t *testing.T) {
	// At scale 1, a drag delta moves every projected point by exactly that
	// delta.
	c := NewCamera()
	bx, by := c.ToScreen(100, 100)
	c.Pan(25, -40)
	ax, ay := c.ToScreen(100, 100)
	if ax-bx != 25 || ay-by != -40 {
		t.Errorf("pan moved point by (%v, %v), want (25, -40)", ax-bx, ay-by)
	}
}

func TestZoomAnchorsAtCursor(t *testing.T) {
	// The simulation point under the cursor must not move during zoom.
	c := NewCamera()
	c.Pan(50, 80)

	const cx, cy = 320.0, 240.0
	wx, wy := c.FromScreen(cx, cy)

	for _, f := range []float64{1.25, 0.8, 2.0, 1.1} {
		c.ZoomAt(f, cx, cy)
		gx, gy := c.FromScreen(cx, cy)
		if math.Abs(gx-wx) > 1e-9 || math.Abs(gy-wy) > 1e-9 {
			t.Fatalf("after zoom %v anchor drifted: (%v, %v) != (%v, %v)", f, gx, gy, wx, wy)
		}
	}
}

func TestZoomClampProperty(t *testing.T) {
	// Any gesture sequence keeps scale inside [MinScale, MaxScale].
	c := NewCamera()
	factors := []float64{2, 2, 2, 2, 0.1, 0.1, 3, 0.5, 10, 0.01, 1.0001}
	for _, f := range factors {
		c.ZoomAt(f, 100, 100)
		if c.Scale < MinScale || c.Scale > MaxScale {
			t.Fatalf("scale %v escaped [%v, %v] after factor %v", c.Scale, MinScale, MaxScale, f)
		}
	}
}

func TestZoomAtBoundIsNoOp(t *testing.T) {
	c := NewCamera()
	c.ZoomAt(100, 0, 0) // slams into MaxScale
	panX, panY := c.PanX, c.PanY

	c.ZoomAt(2, 500, 500) // already at max, must not drift the pan
	if c.PanX != panX || c.PanY != panY {
		t.Errorf("zoom at bound drifted pan: (%v, %v) -> (%v, %v)", panX, panY, c.PanX, c.PanY)
	}
	if c.Scale != MaxScale {
		t.Errorf("scale = %v, want %v", c.Scale, MaxScale)
	}
}

func TestSetScaleClamped(t *testing.T) {
	c := NewCamera()
	c.SetScale(10, 0, 0)
	if c.Scale != MaxScale {
		t.Errorf("Scale = %v, want %v", c.Scale, MaxScale)
	}
	c.SetScale(0.01, 0, 0)
	if c.Scale != MinScale {
		t.Errorf("Scale = %v, want %v", c.Scale, MinScale)
	}
}

func TestFitSourceCentersSource(t *testing.T) {
	c := NewCamera()
	c.FitSource(400, 300, 1024, 768)

	sx, sy := c.ToScreen(400, 300)
	if sx != 512 || sy != 384 {
		t.Errorf("source projected to (%v, %v), want viewport center (512, 384)", sx, sy)
	}
	if c.Scale != DefaultFitScale {
		t.Errorf("Scale = %v, want %v", c.Scale, DefaultFitScale)
	}
}

func TestReset(t *testing.T) {
	c := NewCamera()
	c.Pan(10, 20)
	c.ZoomAt(2, 5, 5)
	c.Reset()
	if c.PanX != 0 || c.PanY != 0 || c.Scale != 1 {
		t.Errorf("Reset left camera at %+v", *c)
	}
}
