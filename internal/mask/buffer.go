// Package mask holds the per-pixel foreground opacity buffer that every
// editing operation reads and mutates. It is the single source of truth for
// "what is foreground" in an edit session.
package mask

import (
	"fmt"
	"image"
)

// BlendMode selects how a delta combines with an existing opacity sample.
type BlendMode int

const (
	// BlendAdd pushes opacity toward full foreground (Restore brush).
	BlendAdd BlendMode = iota
	// BlendSubtract pushes opacity toward background (Eraser brush).
	BlendSubtract
)

// Buffer is a dense row-major alpha mask. Samples are 8-bit: 0 is fully
// background, 255 is fully foreground. All mutation goes through the Buffer
// API so values can never leave the valid range; saturating arithmetic in
// BlendAt makes the [0,255] clamp structural.
type Buffer struct {
	width  int
	height int
	data   []uint8
}

// New creates a mask of the given dimensions with all samples set to 0.
func New(width, height int) *Buffer {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("mask: invalid dimensions %dx%d", width, height))
	}
	return &Buffer{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// FromGray builds a mask from a grayscale image, typically the output of the
// segmentation model.
func FromGray(img *image.Gray) *Buffer {
	b := img.Bounds()
	m := New(b.Dx(), b.Dy())
	for y := 0; y < m.height; y++ {
		copy(m.data[y*m.width:(y+1)*m.width], img.Pix[y*img.Stride:y*img.Stride+m.width])
	}
	return m
}

// Width returns the mask width in pixels.
func (m *Buffer) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Buffer) Height() int { return m.height }

// Bounds returns the mask dimensions as an image.Rectangle.
func (m *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

func (m *Buffer) checkBounds(x, y int) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		panic(fmt.Sprintf("mask: access (%d,%d) outside %dx%d", x, y, m.width, m.height))
	}
}

// Get returns the opacity sample at (x, y). Out-of-range access is a
// programming error and panics.
func (m *Buffer) Get(x, y int) uint8 {
	m.checkBounds(x, y)
	return m.data[y*m.width+x]
}

// Set stores an opacity sample at (x, y).
func (m *Buffer) Set(x, y int, value uint8) {
	m.checkBounds(x, y)
	m.data[y*m.width+x] = value
}

// BlendAt combines the existing sample at (x, y) with delta using saturating
// addition or subtraction and returns the prior value so callers can record
// undo information.
func (m *Buffer) BlendAt(x, y int, delta uint8, mode BlendMode) uint8 {
	m.checkBounds(x, y)
	i := y*m.width + x
	prior := m.data[i]

	switch mode {
	case BlendAdd:
		v := uint16(prior) + uint16(delta)
		if v > 255 {
			v = 255
		}
		m.data[i] = uint8(v)
	case BlendSubtract:
		if delta > prior {
			m.data[i] = 0
		} else {
			m.data[i] = prior - delta
		}
	default:
		panic(fmt.Sprintf("mask: unknown blend mode %d", mode))
	}
	return prior
}

// Fill sets every sample to value.
func (m *Buffer) Fill(value uint8) {
	for i := range m.data {
		m.data[i] = value
	}
}

// Clone returns an independent copy of the mask.
func (m *Buffer) Clone() *Buffer {
	c := New(m.width, m.height)
	copy(c.data, m.data)
	return c
}

// CopyFrom replaces the mask content with src. Dimensions must match.
func (m *Buffer) CopyFrom(src *Buffer) error {
	if src.width != m.width || src.height != m.height {
		return fmt.Errorf("mask: cannot copy %dx%d into %dx%d",
			src.width, src.height, m.width, m.height)
	}
	copy(m.data, src.data)
	return nil
}

// Equal reports whether two masks have identical dimensions and samples.
func (m *Buffer) Equal(other *Buffer) bool {
	if other.width != m.width || other.height != m.height {
		return false
	}
	for i := range m.data {
		if m.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// ReadRect copies the samples inside rect into dst, row by row. dst must hold
// rect.Dx()*rect.Dy() bytes and rect must lie inside the mask.
func (m *Buffer) ReadRect(rect image.Rectangle, dst []uint8) {
	m.checkRect(rect, len(dst))
	w := rect.Dx()
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := m.data[y*m.width+rect.Min.X : y*m.width+rect.Max.X]
		copy(dst[(y-rect.Min.Y)*w:], row)
	}
}

// WriteRect replaces the samples inside rect with src, row by row.
func (m *Buffer) WriteRect(rect image.Rectangle, src []uint8) {
	m.checkRect(rect, len(src))
	w := rect.Dx()
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		copy(m.data[y*m.width+rect.Min.X:y*m.width+rect.Max.X], src[(y-rect.Min.Y)*w:(y-rect.Min.Y)*w+w])
	}
}

func (m *Buffer) checkRect(rect image.Rectangle, n int) {
	if !rect.In(m.Bounds()) {
		panic(fmt.Sprintf("mask: rect %v outside %dx%d", rect, m.width, m.height))
	}
	if n < rect.Dx()*rect.Dy() {
		panic(fmt.Sprintf("mask: plane of %d bytes for rect %v", n, rect))
	}
}

// ToGray renders the mask as a grayscale image, useful for debugging and for
// feeding the refinement pass.
func (m *Buffer) ToGray() *image.Gray {
	img := image.NewGray(m.Bounds())
	for y := 0; y < m.height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+m.width], m.data[y*m.width:(y+1)*m.width])
	}
	return img
}

// Data exposes the underlying samples for read-only tight loops such as
// compositing. Callers must not mutate the slice.
func (m *Buffer) Data() []uint8 {
	return m.data
}
