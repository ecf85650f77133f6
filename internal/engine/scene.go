package engine

import (
	"fmt"
	"math"

	"github.com/gogpu/spiral"
	"github.com/gogpu/spiral/internal/geom"
	"github.com/gogpu/spiral/internal/phase"
)

// Visibility margins in logical pixels.
const (
	SpiralMargin   = geom.DefaultMargin
	NodeMargin     = 50
	FeedbackMargin = geom.DefaultMargin
)

// maxSamples bounds one frame's spiral polyline.
const maxSamples = 1 << 18

// Sample is one point of the sampled spiral.
type Sample struct {
	World   geom.Point
	Screen  geom.Point
	R       float64
	Band    int
	Visible bool
}

// SpiralSamples samples the spiral over the range that covers every screen
// corner, appending to dst.
func (c *Core) SpiralSamples(dst []Sample) []Sample {
	a, period := c.norm.A(), c.norm.Period()
	start, end := geom.VisibleThetaRange(c.viewport, c.size, a, period)
	step := geom.SampleStep(c.viewport.Scale)
	if !(step > 0) || math.IsInf(end-start, 0) || math.IsNaN(end-start) {
		return dst
	}
	n := min(int((end-start)/step)+1, maxSamples)
	for i := 0; i < n; i++ {
		theta := start + float64(i)*step
		r := geom.Radius(theta, a, period)
		w := geom.PolarToCartesian(r, theta)
		s := geom.ToScreen(c.viewport, w, c.size)
		dst = append(dst, Sample{
			World:   w,
			Screen:  s,
			R:       r,
			Band:    phase.Index(r, a),
			Visible: geom.OnScreen(s, c.size, SpiralMargin),
		})
	}
	return dst
}

// Run is a polyline drawn in one band color.
type Run struct {
	Band   int
	Points []geom.Point
}

// Runs merges consecutive visible samples of the same band into polylines.
// A run ends when visibility ends; a band change starts a new run at the
// current sample.
func Runs(samples []Sample) []Run {
	var runs []Run
	open := false
	for _, s := range samples {
		if !s.Visible {
			open = false
			continue
		}
		if !open || runs[len(runs)-1].Band != s.Band {
			runs = append(runs, Run{Band: s.Band, Points: []geom.Point{s.Screen}})
			open = true
			continue
		}
		last := &runs[len(runs)-1]
		last.Points = append(last.Points, s.Screen)
	}
	return runs
}

// GuideDots returns the on-screen positions of one spiral point per quarter
// turn over the outermost four turns.
func (c *Core) GuideDots() []geom.Point {
	a, period := c.norm.A(), c.norm.Period()
	maxTheta := geom.Theta(geom.MaxCornerDistance(c.viewport, c.size), a, period)
	var out []geom.Point
	for theta := maxTheta - 8*math.Pi; theta <= maxTheta; theta += geom.QuarterTurn {
		s := geom.ToScreen(c.viewport, geom.SpiralPoint(theta, a, period), c.size)
		if geom.OnScreen(s, c.size, 0) {
			out = append(out, s)
		}
	}
	return out
}

// Node is a tile anchor ready to draw.
type Node struct {
	// Index is the tile's position in priority order; it phases the pulse.
	Index  int
	Tile   *spiral.Tile
	World  geom.Point
	Screen geom.Point
	R      float64
	Band   int
}

// PulseOffset is the per-node pulse phase.
func (n Node) PulseOffset() float64 { return float64(n.Index) * 0.7 }

// Pulse returns the radius multiplier at time t seconds.
func (n Node) Pulse(t float64) float64 {
	return 1 + 0.15*math.Sin(t*2+n.PulseOffset())
}

// Nodes returns every tile's anchor. A negative margin keeps all of them;
// otherwise only anchors within margin of the screen are returned.
func (c *Core) Nodes(margin float64) []Node {
	a := c.norm.A()
	out := make([]Node, 0, len(c.tiles))
	for i := range c.tiles {
		t := &c.tiles[i]
		w := t.BBox.Centroid()
		s := geom.ToScreen(c.viewport, w, c.size)
		if margin >= 0 && !geom.OnScreen(s, c.size, margin) {
			continue
		}
		r := t.BBox.CenterRadius()
		out = append(out, Node{Index: i, Tile: t, World: w, Screen: s, R: r, Band: phase.Index(r, a)})
	}
	return out
}

// Link is a feedback arrow between two consecutive tiles.
type Link struct {
	From, To geom.Point
	Band     int
}

// ArrowHead returns the two barb endpoints of an arrow ending at l.To.
func (l Link) ArrowHead(size float64) (left, right geom.Point) {
	angle := math.Atan2(l.To.Y-l.From.Y, l.To.X-l.From.X)
	left = geom.Point{
		X: l.To.X - size*math.Cos(angle-math.Pi/6),
		Y: l.To.Y - size*math.Sin(angle-math.Pi/6),
	}
	right = geom.Point{
		X: l.To.X - size*math.Cos(angle+math.Pi/6),
		Y: l.To.Y - size*math.Sin(angle+math.Pi/6),
	}
	return left, right
}

// FeedbackLinks connects each adjacent pair in priority order that shares
// a priority or a phase band, when both ends are near the screen.
func (c *Core) FeedbackLinks() []Link {
	if len(c.tiles) < 2 {
		return nil
	}
	a := c.norm.A()
	var out []Link
	for i := 0; i+1 < len(c.tiles); i++ {
		t1, t2 := &c.tiles[i], &c.tiles[i+1]
		b1 := phase.Index(t1.BBox.CenterRadius(), a)
		b2 := phase.Index(t2.BBox.CenterRadius(), a)
		if !spiral.SamePriority(*t1, *t2) && b1 != b2 {
			continue
		}
		s1 := geom.ToScreen(c.viewport, t1.BBox.Centroid(), c.size)
		s2 := geom.ToScreen(c.viewport, t2.BBox.Centroid(), c.size)
		if !geom.OnScreen(s1, c.size, FeedbackMargin) || !geom.OnScreen(s2, c.size, FeedbackMargin) {
			continue
		}
		out = append(out, Link{From: s1, To: s2, Band: b1})
	}
	return out
}

// DebugLines returns the debug overlay text.
func (c *Core) DebugLines() []string {
	v := c.viewport
	return []string{
		fmt.Sprintf("scale: %.4f", v.Scale),
		fmt.Sprintf("offset: (%.2f, %.2f)", v.OffsetX, v.OffsetY),
		fmt.Sprintf("rotation: %.2f°", v.Rotation*180/math.Pi),
		fmt.Sprintf("a: %.4f", c.norm.A()),
		fmt.Sprintf("tiles: %d", len(c.tiles)),
	}
}
