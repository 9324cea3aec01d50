// Package treemap lays out a two-level hierarchy of counted nodes into
// non-overlapping rectangles with areas proportional to their counts.
// Layout is a pure function over value structures: no pointers back into
// the caller's data, no mutation of the input.
package treemap

import "cstats/internal/output"

// Node is one input entry: a name, a count, and optional ranked children.
type Node struct {
	Name     string
	Count    int
	Children []Node
}

// Rect is one laid-out rectangle. Children are fully contained within the
// parent's bounds minus the configured padding.
type Rect struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Children   []Rect  `json:"children,omitempty"`
}

// Options sets the canvas and layout thresholds.
type Options struct {
	Width  float64
	Height float64

	// Padding insets child layouts from the parent's bounds.
	Padding float64

	// MinWidth/MinHeight gate child recursion: below this size children
	// are omitted rather than rendered as unreadable slivers.
	MinWidth  float64
	MinHeight float64

	// MaxNodes bounds the top-level node count; ranked nodes beyond it
	// are dropped (the layout-overflow recovery).
	MaxNodes int
}

// Result carries the layout plus how many lowest-ranked top-level nodes
// were dropped to fit the renderable space.
type Result struct {
	Rects   []Rect
	Dropped int
}

// Layout tiles the canvas with one rectangle per node, in input order,
// each sized proportionally to its count. Nodes must arrive ranked; when
// the count exceeds MaxNodes the tail is dropped and reported.
func Layout(nodes []Node, opts Options) Result {
	result := Result{}

	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		result.Dropped = len(nodes) - opts.MaxNodes
		nodes = nodes[:opts.MaxNodes]
	}

	result.Rects = layoutInto(nodes, rect{0, 0, opts.Width, opts.Height}, opts)
	return result
}

type rect struct {
	x, y, w, h float64
}

// layoutInto slices the remaining rectangle for each node in order,
// splitting along whichever dimension is currently larger. The slice
// fraction is the node's count over the counts not yet placed, so the last
// node always consumes the remainder exactly: siblings tile their parent
// with no gaps.
func layoutInto(nodes []Node, bounds rect, opts Options) []Rect {
	total := 0
	for _, n := range nodes {
		total += n.Count
	}
	if total == 0 || bounds.w <= 0 || bounds.h <= 0 {
		return []Rect{}
	}

	rects := make([]Rect, 0, len(nodes))
	remaining := bounds
	remainingCount := total

	for _, n := range nodes {
		if n.Count <= 0 || remainingCount <= 0 {
			continue
		}
		frac := float64(n.Count) / float64(remainingCount)

		var slice rect
		if remaining.w >= remaining.h {
			sliceW := remaining.w * frac
			slice = rect{remaining.x, remaining.y, sliceW, remaining.h}
			remaining.x += sliceW
			remaining.w -= sliceW
		} else {
			sliceH := remaining.h * frac
			slice = rect{remaining.x, remaining.y, remaining.w, sliceH}
			remaining.y += sliceH
			remaining.h -= sliceH
		}
		remainingCount -= n.Count

		r := Rect{
			X:          slice.x,
			Y:          slice.y,
			Width:      slice.w,
			Height:     slice.h,
			Name:       n.Name,
			Count:      n.Count,
			Percentage: output.Round1(100 * float64(n.Count) / float64(total)),
		}

		if len(n.Children) > 0 && slice.w > opts.MinWidth && slice.h > opts.MinHeight {
			inner := rect{
				x: slice.x + opts.Padding,
				y: slice.y + opts.Padding,
				w: slice.w - 2*opts.Padding,
				h: slice.h - 2*opts.Padding,
			}
			r.Children = layoutInto(n.Children, inner, opts)
		}

		rects = append(rects, r)
	}

	return rects
}
