package canvas

import (
	"github.com/gogpu/gg"

	"github.com/gogpu/spiral"
	"github.com/gogpu/spiral/internal/engine"
	"github.com/gogpu/spiral/internal/phase"
)

// Drawing constants in logical pixels.
const (
	spiralWidth   = 2
	guideRadius   = 3
	nodeRadius    = 6
	nodeHalo      = 4
	feedbackWidth = 1
	feedbackAlpha = 0.3
	arrowSize     = 5
	glowWidth     = 10
)

var (
	guideColor = gg.Hex("#6366f1")
	debugColor = gg.Hex("#6366f1")
)

// draw renders one frame into e.dc. Drawing order is spiral, guide dots,
// nodes, feedback paths, particles, then the debug overlay.
func (e *Engine) draw(f engine.Frame) error {
	d := drawer{dc: e.dc}
	d.dc.Clear()

	e.drawSpiral(&d)
	e.drawGuideDots(&d)
	if e.EffectEnabled(spiral.EffectPulse) {
		e.drawNodes(&d, f.Time())
	}
	if e.EffectEnabled(spiral.EffectFeedbackPaths) {
		e.drawFeedback(&d)
	}
	if e.EffectEnabled(spiral.EffectParticles) {
		e.drawParticles(&d)
	}
	if e.Debug() {
		e.drawDebug()
	}
	return d.err
}

// drawer keeps the first error of a frame.
type drawer struct {
	dc  *gg.Context
	err error
}

func (d *drawer) check(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *drawer) setColor(c gg.RGBA) { d.dc.SetRGBA(c.R, c.G, c.B, c.A) }

func (d *drawer) circle(x, y, r float64, c gg.RGBA) {
	d.setColor(c)
	d.dc.DrawCircle(x, y, r)
	d.check(d.dc.Fill())
}

func (e *Engine) drawSpiral(d *drawer) {
	e.samples = e.SpiralSamples(e.samples[:0])
	runs := engine.Runs(e.samples)

	dc := d.dc
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	glow := e.EffectEnabled(spiral.EffectGlow)
	intensity := e.Effects().GlowIntensity

	for _, run := range runs {
		if len(run.Points) < 2 {
			continue
		}
		col := phase.BandRGB(run.Band)
		if glow && intensity > 0 {
			// Soft underlay standing in for a shadow blur.
			d.setColor(phase.WithAlpha(col, 0.25*intensity))
			dc.SetLineWidth(spiralWidth + glowWidth*intensity)
			polyline(dc, run)
			d.check(dc.Stroke())
		}
		d.setColor(col)
		dc.SetLineWidth(spiralWidth)
		polyline(dc, run)
		d.check(dc.Stroke())
	}
}

func polyline(dc *gg.Context, run engine.Run) {
	dc.MoveTo(run.Points[0].X, run.Points[0].Y)
	for _, p := range run.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
}

func (e *Engine) drawGuideDots(d *drawer) {
	for _, p := range e.GuideDots() {
		d.circle(p.X, p.Y, guideRadius, guideColor)
	}
}

func (e *Engine) drawNodes(d *drawer, t float64) {
	a := e.A()
	for _, n := range e.Nodes(engine.NodeMargin) {
		col := phase.RGB(n.R, a)
		r := nodeRadius * n.Pulse(t)
		d.circle(n.Screen.X, n.Screen.Y, r+nodeHalo, phase.WithAlpha(col, 0.18))
		d.circle(n.Screen.X, n.Screen.Y, r, phase.WithAlpha(col, 0.5))
		d.circle(n.Screen.X, n.Screen.Y, r*0.5, phase.WithAlpha(col, 0.9))
	}
}

func (e *Engine) drawFeedback(d *drawer) {
	links := e.FeedbackLinks()
	if len(links) == 0 {
		return
	}
	dc := d.dc
	dc.SetLineWidth(feedbackWidth)
	for _, l := range links {
		d.setColor(phase.WithAlpha(phase.BandRGB(l.Band), feedbackAlpha))

		dc.SetDash(3, 6)
		dc.MoveTo(l.From.X, l.From.Y)
		dc.LineTo(l.To.X, l.To.Y)
		d.check(dc.Stroke())

		left, right := l.ArrowHead(arrowSize)
		dc.MoveTo(l.To.X, l.To.Y)
		dc.LineTo(left.X, left.Y)
		dc.MoveTo(l.To.X, l.To.Y)
		dc.LineTo(right.X, right.Y)
		d.check(dc.Stroke())
	}
	dc.ClearDash()
}

func (e *Engine) drawParticles(d *drawer) {
	for _, p := range e.Particles().Particles() {
		d.circle(p.X, p.Y, p.Radius, phase.WithAlpha(p.Color, p.Alpha()))
	}
}

// Debug text layout.
const (
	debugX    = 10
	debugY    = 20
	debugLine = 15
)

func (e *Engine) drawDebug() {
	if e.face == nil {
		return
	}
	dc := e.dc
	dc.SetFont(e.face)
	dc.SetRGBA(debugColor.R, debugColor.G, debugColor.B, debugColor.A)
	for i, line := range e.DebugLines() {
		dc.DrawString(line, debugX, debugY+float64(i)*debugLine)
	}
}
