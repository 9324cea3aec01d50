package treemap

import (
	"math"
	"testing"
)

func TestLayoutProportionalTiling(t *testing.T) {
	nodes := []Node{
		{Name: "a", Count: 5},
		{Name: "b", Count: 3},
		{Name: "c", Count: 2},
	}
	opts := Options{Width: 200, Height: 100, MaxNodes: 40}
	res := Layout(nodes, opts)

	if res.Dropped != 0 {
		t.Fatalf("dropped = %d, want 0", res.Dropped)
	}
	if len(res.Rects) != 3 {
		t.Fatalf("got %d rects, want 3", len(res.Rects))
	}

	canvas := 200.0 * 100.0
	wantShare := []float64{0.5, 0.3, 0.2}
	areaSum := 0.0
	for i, r := range res.Rects {
		area := r.Width * r.Height
		areaSum += area
		share := area / canvas
		if math.Abs(share-wantShare[i]) > 0.01 {
			t.Errorf("rect %q area share = %.4f, want %.4f", r.Name, share, wantShare[i])
		}
	}
	if math.Abs(areaSum-canvas) > 1e-6 {
		t.Errorf("areas sum to %.4f, want %.4f (no gaps)", areaSum, canvas)
	}
}

func TestLayoutNoOverlap(t *testing.T) {
	nodes := []Node{
		{Name: "a", Count: 7},
		{Name: "b", Count: 4},
		{Name: "c", Count: 4},
		{Name: "d", Count: 1},
	}
	res := Layout(nodes, Options{Width: 120, Height: 90, MaxNodes: 40})

	for i, a := range res.Rects {
		if a.X < -1e-9 || a.Y < -1e-9 || a.X+a.Width > 120+1e-9 || a.Y+a.Height > 90+1e-9 {
			t.Errorf("rect %q outside canvas: %+v", a.Name, a)
		}
		for j, b := range res.Rects {
			if i >= j {
				continue
			}
			if overlaps(a, b) {
				t.Errorf("rects %q and %q overlap", a.Name, b.Name)
			}
		}
	}
}

func overlaps(a, b Rect) bool {
	const eps = 1e-9
	return a.X+eps < b.X+b.Width && b.X+eps < a.X+a.Width &&
		a.Y+eps < b.Y+b.Height && b.Y+eps < a.Y+a.Height
}

func TestLayoutChildrenInsideParent(t *testing.T) {
	nodes := []Node{
		{
			Name:  "parent",
			Count: 10,
			Children: []Node{
				{Name: "c1", Count: 6},
				{Name: "c2", Count: 4},
			},
		},
	}
	opts := Options{Width: 400, Height: 300, Padding: 4, MinWidth: 60, MinHeight: 40, MaxNodes: 40}
	res := Layout(nodes, opts)

	parent := res.Rects[0]
	if len(parent.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(parent.Children))
	}
	for _, c := range parent.Children {
		if c.X < parent.X+opts.Padding-1e-9 || c.Y < parent.Y+opts.Padding-1e-9 ||
			c.X+c.Width > parent.X+parent.Width-opts.Padding+1e-9 ||
			c.Y+c.Height > parent.Y+parent.Height-opts.Padding+1e-9 {
			t.Errorf("child %q escapes padded parent bounds: %+v", c.Name, c)
		}
	}
}

func TestLayoutSkipsChildrenBelowMinSize(t *testing.T) {
	nodes := []Node{
		{Name: "big", Count: 95},
		{Name: "tiny", Count: 5, Children: []Node{{Name: "c", Count: 5}}},
	}
	opts := Options{Width: 200, Height: 100, Padding: 4, MinWidth: 60, MinHeight: 40, MaxNodes: 40}
	res := Layout(nodes, opts)

	if len(res.Rects) != 2 {
		t.Fatalf("got %d rects, want 2", len(res.Rects))
	}
	if res.Rects[1].Children != nil {
		t.Errorf("tiny rect should have no children, got %v", res.Rects[1].Children)
	}
}

func TestLayoutDropsOverflow(t *testing.T) {
	nodes := make([]Node, 6)
	for i := range nodes {
		nodes[i] = Node{Name: string(rune('a' + i)), Count: 10 - i}
	}
	res := Layout(nodes, Options{Width: 100, Height: 100, MaxNodes: 4})

	if res.Dropped != 2 {
		t.Fatalf("dropped = %d, want 2", res.Dropped)
	}
	if len(res.Rects) != 4 {
		t.Fatalf("got %d rects, want 4", len(res.Rects))
	}
	if res.Rects[3].Name != "d" {
		t.Errorf("last kept rect = %q, want %q", res.Rects[3].Name, "d")
	}
}

func TestLayoutEmptyAndZeroCounts(t *testing.T) {
	res := Layout(nil, Options{Width: 100, Height: 100, MaxNodes: 40})
	if len(res.Rects) != 0 {
		t.Errorf("nil input: got %d rects, want 0", len(res.Rects))
	}

	res = Layout([]Node{{Name: "a", Count: 0}}, Options{Width: 100, Height: 100, MaxNodes: 40})
	if len(res.Rects) != 0 {
		t.Errorf("zero counts: got %d rects, want 0", len(res.Rects))
	}
}
