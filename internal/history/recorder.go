package history

import (
	"image"

	"portrait-cutout/internal/mask"
)

// Recorder accumulates the before-image of every pixel a stroke touches.
// Values are captured lazily on first touch so overlapping stamps within one
// stroke never duplicate capture. The brush engine calls Touch immediately
// before mutating each pixel.
type Recorder struct {
	width   int
	height  int
	shadow  []uint8
	touched []bool
	bounds  image.Rectangle
	any     bool
}

func newRecorder(width, height int) *Recorder {
	return &Recorder{
		width:   width,
		height:  height,
		shadow:  make([]uint8, width*height),
		touched: make([]bool, width*height),
	}
}

// Touch records the prior value of (x, y) if this is the first time the
// in-progress stroke visits the pixel.
func (r *Recorder) Touch(x, y int, prior uint8) {
	i := y*r.width + x
	if r.touched[i] {
		return
	}
	r.touched[i] = true
	r.shadow[i] = prior

	p := image.Rect(x, y, x+1, y+1)
	if !r.any {
		r.bounds = p
		r.any = true
	} else {
		r.bounds = r.bounds.Union(p)
	}
}

// Dirty reports whether the stroke touched any pixel at all.
func (r *Recorder) Dirty() bool { return r.any }

// finalize compacts the capture into an Entry. Pixels inside the bounding
// rect that the stroke never touched are unchanged, so their current value
// doubles as the before value.
func (r *Recorder) finalize(buf *mask.Buffer) *Entry {
	rect := r.bounds
	w := rect.Dx()
	before := make([]uint8, w*rect.Dy())
	after := make([]uint8, w*rect.Dy())
	buf.ReadRect(rect, after)

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := y*r.width + x
			j := (y-rect.Min.Y)*w + (x - rect.Min.X)
			if r.touched[i] {
				before[j] = r.shadow[i]
			} else {
				before[j] = after[j]
			}
		}
	}
	return &Entry{rect: rect, before: before, after: after}
}
