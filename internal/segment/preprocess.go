package segment

import (
	"image"

	"golang.org/x/image/draw"
)

// resizeBilinear scales img to exactly w x h, the model's fixed input size.
func resizeBilinear(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// normalizeNCHW converts an NRGBA image into a float32 CHW tensor plane.
// Values are scaled to [0,1]; with normalize set, ImageNet mean/std
// normalization matches the model's training pipeline.
func normalizeNCHW(img *image.NRGBA, normalize bool) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]float32, 3*w*h)
	plane := w * h

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			r := float32(row[i]) / 255.0
			g := float32(row[i+1]) / 255.0
			bl := float32(row[i+2]) / 255.0

			if normalize {
				r = (r - imageNetMean[0]) / imageNetStd[0]
				g = (g - imageNetMean[1]) / imageNetStd[1]
				bl = (bl - imageNetMean[2]) / imageNetStd[2]
			}

			idx := y*w + x
			data[idx] = r
			data[plane+idx] = g
			data[2*plane+idx] = bl
		}
	}
	return data
}

// probsToGray converts model probabilities to an 8-bit mask plane, clipping
// to [0,255].
func probsToGray(probs []float32, size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i, p := range probs {
		v := p * 255
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		img.Pix[i] = uint8(v)
	}
	return img
}
