package brush

import (
	"math"

	"github.com/sirupsen/logrus"

	"portrait-cutout/internal/mask"
)

// stampSpacingFactor keeps consecutive stamps overlapping regardless of
// pointer sampling rate: stamps are placed every radius/4 along the drag
// path so fast movement leaves no visible gaps.
const stampSpacingFactor = 0.25

// Recorder receives the prior value of every pixel the engine is about to
// mutate. The history package implements it; first-touch dedup lives there.
type Recorder interface {
	Touch(x, y int, prior uint8)
}

// Engine rasterizes strokes into a mask buffer. It mutates the buffer
// directly through its clamping blend API while reporting before-values to
// the recorder.
type Engine struct {
	logger *logrus.Logger
}

func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{logger: logger}
}

// Apply rasterizes the whole stroke against buf. Pointer samples outside the
// image are clamped to the nearest valid position; pointer devices routinely
// report edge coordinates, so this is not an error.
func (e *Engine) Apply(stroke *Stroke, buf *mask.Buffer, rec Recorder) {
	if len(stroke.Points) == 0 || stroke.Radius <= 0 {
		return
	}

	mode := mask.BlendAdd
	if stroke.Tool == ToolErase {
		mode = mask.BlendSubtract
	}

	first := clampPoint(stroke.Points[0], buf)
	e.stamp(buf, rec, first, stroke.Radius, stroke.Hardness, mode)

	prev := first
	for _, raw := range stroke.Points[1:] {
		next := clampPoint(raw, buf)
		e.stampSegment(buf, rec, prev, next, stroke.Radius, stroke.Hardness, mode)
		prev = next
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"tool":     stroke.Tool.String(),
			"radius":   stroke.Radius,
			"hardness": stroke.Hardness,
			"samples":  len(stroke.Points),
		}).Debug("Applied stroke")
	}
}

// stampSegment interpolates stamps between two consecutive pointer samples.
func (e *Engine) stampSegment(buf *mask.Buffer, rec Recorder, from, to Point, radius, hardness float64, mode mask.BlendMode) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	dist := math.Hypot(dx, dy)

	spacing := radius * stampSpacingFactor
	if spacing < 0.25 {
		spacing = 0.25
	}
	if dist < spacing {
		e.stamp(buf, rec, to, radius, hardness, mode)
		return
	}

	steps := int(math.Ceil(dist / spacing))
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := Point{
			X:        from.X + dx*t,
			Y:        from.Y + dy*t,
			Pressure: from.Pressure + (to.Pressure-from.Pressure)*t,
		}
		e.stamp(buf, rec, p, radius, hardness, mode)
	}
}

// stamp applies one radial brush dab centered at p. The loop runs over the
// stamp bounding box only; megapixel images stay interactive because the
// touched area is bounded by the brush radius.
func (e *Engine) stamp(buf *mask.Buffer, rec Recorder, p Point, radius, hardness float64, mode mask.BlendMode) {
	r := radius * pressureScale(p.Pressure)
	if r <= 0 {
		return
	}

	minX := clampInt(int(math.Floor(p.X-r)), 0, buf.Width()-1)
	maxX := clampInt(int(math.Ceil(p.X+r)), 0, buf.Width()-1)
	minY := clampInt(int(math.Floor(p.Y-r)), 0, buf.Height()-1)
	maxY := clampInt(int(math.Ceil(p.Y+r)), 0, buf.Height()-1)

	for y := minY; y <= maxY; y++ {
		fy := float64(y) - p.Y
		for x := minX; x <= maxX; x++ {
			fx := float64(x) - p.X
			strength := Falloff(math.Hypot(fx, fy), r, hardness)
			if strength <= 0 {
				continue
			}
			delta := uint8(math.Round(strength * 255))
			if delta == 0 {
				continue
			}
			prior := buf.Get(x, y)
			if rec != nil {
				rec.Touch(x, y, prior)
			}
			buf.BlendAt(x, y, delta, mode)
		}
	}
}

// Falloff returns the stamp strength in [0,1] at distance dist from the
// stamp center. The profile is full strength inside hardness*radius, then a
// smoothstep decay to zero at the radius; on top of that a half-pixel
// coverage ramp antialiases the rim, so a hardness-1 brush is a hard disk
// with a softened one-pixel edge rather than a jagged circle. Beyond the
// radius the strength is exactly zero.
func Falloff(dist, radius, hardness float64) float64 {
	if dist > radius || radius <= 0 {
		return 0
	}
	hardness = clampFloat(hardness, 0, 1)

	soft := 1.0
	core := hardness * radius
	if dist > core {
		u := (dist - core) / (radius - core)
		soft = 1 - u*u*(3-2*u)
	}

	coverage := clampFloat(radius-dist+0.5, 0, 1)
	return math.Min(soft, coverage)
}

func clampPoint(p Point, buf *mask.Buffer) Point {
	return Point{
		X:        clampFloat(p.X, 0, float64(buf.Width()-1)),
		Y:        clampFloat(p.Y, 0, float64(buf.Height()-1)),
		Pressure: p.Pressure,
	}
}

func pressureScale(pressure float64) float64 {
	if pressure <= 0 {
		return 1
	}
	return math.Min(pressure, 1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
