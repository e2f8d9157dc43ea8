package mask

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsAllBackground(t *testing.T) {
	m := New(4, 3)
	assert.Equal(t, 4, m.Width())
	assert.Equal(t, 3, m.Height())
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, uint8(0), m.Get(x, y))
		}
	}
}

func TestBlendAtSaturates(t *testing.T) {
	m := New(2, 2)
	m.Set(0, 0, 200)

	prior := m.BlendAt(0, 0, 100, BlendAdd)
	assert.Equal(t, uint8(200), prior)
	assert.Equal(t, uint8(255), m.Get(0, 0), "addition must clamp at full foreground")

	prior = m.BlendAt(0, 0, 255, BlendSubtract)
	assert.Equal(t, uint8(255), prior)
	assert.Equal(t, uint8(0), m.Get(0, 0), "subtraction must clamp at background")

	m.Set(1, 1, 40)
	m.BlendAt(1, 1, 100, BlendSubtract)
	assert.Equal(t, uint8(0), m.Get(1, 1))
}

func TestBlendAtExactInverseWithoutSaturation(t *testing.T) {
	m := New(1, 1)
	m.Set(0, 0, 100)
	m.BlendAt(0, 0, 55, BlendAdd)
	m.BlendAt(0, 0, 55, BlendSubtract)
	assert.Equal(t, uint8(100), m.Get(0, 0))
}

func TestOutOfRangePanics(t *testing.T) {
	m := New(4, 4)
	assert.Panics(t, func() { m.Get(4, 0) })
	assert.Panics(t, func() { m.Get(0, -1) })
	assert.Panics(t, func() { m.Set(-1, 2, 10) })
	assert.Panics(t, func() { m.BlendAt(2, 4, 1, BlendAdd) })
}

func TestCloneIsIndependent(t *testing.T) {
	m := New(3, 3)
	m.Set(1, 1, 128)

	c := m.Clone()
	require.True(t, m.Equal(c))

	c.Set(1, 1, 7)
	assert.Equal(t, uint8(128), m.Get(1, 1))
	assert.False(t, m.Equal(c))
}

func TestCopyFromDimensionCheck(t *testing.T) {
	m := New(4, 4)
	err := m.CopyFrom(New(4, 5))
	require.Error(t, err)

	src := New(4, 4)
	src.Fill(33)
	require.NoError(t, m.CopyFrom(src))
	assert.Equal(t, uint8(33), m.Get(3, 3))
}

func TestRectRoundTrip(t *testing.T) {
	m := New(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			m.Set(x, y, uint8(y*5+x))
		}
	}

	rect := image.Rect(1, 2, 4, 4)
	plane := make([]uint8, rect.Dx()*rect.Dy())
	m.ReadRect(rect, plane)
	assert.Equal(t, []uint8{11, 12, 13, 16, 17, 18}, plane)

	m.Fill(0)
	m.WriteRect(rect, plane)
	assert.Equal(t, uint8(11), m.Get(1, 2))
	assert.Equal(t, uint8(18), m.Get(3, 3))
	assert.Equal(t, uint8(0), m.Get(0, 0))
}

func TestGrayRoundTrip(t *testing.T) {
	m := New(3, 2)
	m.Set(2, 1, 99)

	g := m.ToGray()
	assert.Equal(t, uint8(99), g.GrayAt(2, 1).Y)

	back := FromGray(g)
	assert.True(t, m.Equal(back))
}
