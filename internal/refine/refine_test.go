package refine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoftThresholdKeepsTransitionalValues(t *testing.T) {
	data := []uint8{0, 10, 14, 15, 100, 200, 240, 241, 255}
	softThreshold(data, 15, 240)
	assert.Equal(t, []uint8{0, 0, 0, 15, 100, 200, 240, 255, 255}, data)
}

func TestFinalThresholdLocksSolidRegions(t *testing.T) {
	data := []uint8{0, 19, 20, 100, 200, 201, 255}
	finalThreshold(data, 20, 200)
	assert.Equal(t, []uint8{0, 0, 20, 100, 200, 255, 255}, data)
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Less(t, p.SoftLow, p.SoftHigh)
	assert.Less(t, p.FinalLow, p.FinalHigh)
	assert.Greater(t, p.BlurSigma, 0.0)
}
