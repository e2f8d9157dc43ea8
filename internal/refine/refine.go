// Package refine post-processes a raw model mask into clean, smooth edges
// while preserving semi-transparency on hair strands and fine detail.
package refine

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"portrait-cutout/internal/mask"
)

// Params controls the refinement thresholds. The defaults reproduce the
// tuned pipeline of the segmentation model: a soft threshold keeps
// transitional hair values semi-transparent, a light Gaussian pass smooths
// jagged edges, and a final threshold locks solid regions.
type Params struct {
	SoftLow   uint8   // values below collapse to background before blurring
	SoftHigh  uint8   // values above lock to foreground before blurring
	BlurSigma float64 // Gaussian sigma for the anti-alias pass
	FinalLow  uint8   // values below collapse to background after blurring
	FinalHigh uint8   // values above lock to foreground after blurring
}

// DefaultParams returns the tuned refinement parameters.
func DefaultParams() Params {
	return Params{
		SoftLow:   15,
		SoftHigh:  240,
		BlurSigma: 1.2,
		FinalLow:  20,
		FinalHigh: 200,
	}
}

// Apply refines m in place.
func Apply(m *mask.Buffer, p Params) error {
	softThreshold(m.Data(), p.SoftLow, p.SoftHigh)

	if p.BlurSigma > 0 {
		if err := gaussianBlur(m, p.BlurSigma); err != nil {
			return err
		}
	}

	finalThreshold(m.Data(), p.FinalLow, p.FinalHigh)
	return nil
}

// softThreshold collapses near-background values and locks near-foreground
// values, keeping everything between as-is for soft transparency.
func softThreshold(data []uint8, low, high uint8) {
	for i, v := range data {
		switch {
		case v < low:
			data[i] = 0
		case v > high:
			data[i] = 255
		}
	}
}

// finalThreshold locks solid foreground/background regions after blurring.
func finalThreshold(data []uint8, low, high uint8) {
	for i, v := range data {
		switch {
		case v > high:
			data[i] = 255
		case v < low:
			data[i] = 0
		}
	}
}

// gaussianBlur runs the OpenCV Gaussian filter over the mask samples.
func gaussianBlur(m *mask.Buffer, sigma float64) error {
	src, err := gocv.NewMatFromBytes(m.Height(), m.Width(), gocv.MatTypeCV8U, m.Data())
	if err != nil {
		return fmt.Errorf("refine: wrap mask: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	// Kernel size 0 lets OpenCV derive it from sigma.
	gocv.GaussianBlur(src, &dst, image.Point{}, sigma, sigma, gocv.BorderDefault)

	blurred, err := dst.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("refine: read blurred mask: %w", err)
	}
	copy(m.Data(), blurred)
	return nil
}
