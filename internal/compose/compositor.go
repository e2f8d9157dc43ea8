// Package compose renders the source image against the alpha mask. It is a
// pure consumer: no function here ever mutates the source pixels or the
// authoritative mask.
package compose

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"portrait-cutout/internal/mask"
)

// Composite produces the cut-out: output RGB equals the source RGB and the
// alpha channel equals the mask, sample for sample. Dimensions must match.
func Composite(src *image.NRGBA, m *mask.Buffer) (*image.NRGBA, error) {
	b := src.Bounds()
	if b.Dx() != m.Width() || b.Dy() != m.Height() {
		return nil, fmt.Errorf("compose: image %dx%d does not match mask %dx%d",
			b.Dx(), b.Dy(), m.Width(), m.Height())
	}

	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	alpha := m.Data()
	for y := 0; y < b.Dy(); y++ {
		srcRow := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride:]
		outRow := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			si := (x + b.Min.X - src.Rect.Min.X) * 4
			oi := x * 4
			outRow[oi+0] = srcRow[si+0]
			outRow[oi+1] = srcRow[si+1]
			outRow[oi+2] = srcRow[si+2]
			outRow[oi+3] = alpha[y*m.Width()+x]
		}
	}
	return out, nil
}

// Preview composites at full resolution and then downsamples so the long
// edge does not exceed maxDim. Display performance only; the export path
// never goes through here.
func Preview(src *image.NRGBA, m *mask.Buffer, maxDim int) (*image.NRGBA, error) {
	full, err := Composite(src, m)
	if err != nil {
		return nil, err
	}
	if maxDim <= 0 {
		return full, nil
	}

	w, h := full.Bounds().Dx(), full.Bounds().Dy()
	long := w
	if h > long {
		long = h
	}
	if long <= maxDim {
		return full, nil
	}

	scale := float64(maxDim) / float64(long)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	small := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), full, full.Bounds(), draw.Src, nil)
	return small, nil
}

// Thumbnail shrinks an image to fit within w x h preserving aspect ratio,
// for the info side panel.
func Thumbnail(img image.Image, w, h uint) image.Image {
	return resize.Thumbnail(w, h, img, resize.Bilinear)
}
