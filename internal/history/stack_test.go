package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portrait-cutout/internal/brush"
	"portrait-cutout/internal/mask"
)

func newStack(maxEntries int) *Stack {
	return NewStack(maxEntries, 64<<20, nil)
}

// applyStroke runs one recorded stroke through the engine the way the
// session does: Begin, rasterize, End.
func applyStroke(t *testing.T, s *Stack, buf *mask.Buffer, x, y float64) {
	t.Helper()
	rec, err := s.Begin(buf)
	require.NoError(t, err)
	engine := brush.NewEngine(nil)
	engine.Apply(&brush.Stroke{
		Tool:     brush.ToolRestore,
		Radius:   1.5,
		Hardness: 1,
		Points:   []brush.Point{{X: x, Y: y, Pressure: 1}},
	}, buf, rec)
	require.NoError(t, s.End(buf))
}

func TestUndoRestoresBitIdenticalState(t *testing.T) {
	buf := mask.New(16, 16)
	s := newStack(16)

	before := buf.Clone()
	applyStroke(t, s, buf, 5, 5)
	require.False(t, buf.Equal(before))

	require.NoError(t, s.Undo(buf))
	assert.True(t, buf.Equal(before), "undo must restore the exact pre-stroke state")
}

func TestUndoRedoIsNoOp(t *testing.T) {
	buf := mask.New(16, 16)
	s := newStack(16)

	applyStroke(t, s, buf, 5, 5)
	applyStroke(t, s, buf, 10, 10)
	after := buf.Clone()

	require.NoError(t, s.Undo(buf))
	require.NoError(t, s.Redo(buf))
	assert.True(t, buf.Equal(after))
}

func TestUndoOnEmptyHistory(t *testing.T) {
	buf := mask.New(8, 8)
	s := newStack(8)

	assert.ErrorIs(t, s.Undo(buf), ErrNothingToUndo)
	assert.ErrorIs(t, s.Redo(buf), ErrNothingToRedo)
}

func TestNewStrokeDiscardsRedoBranch(t *testing.T) {
	buf := mask.New(16, 16)
	s := newStack(16)

	applyStroke(t, s, buf, 2, 2)
	applyStroke(t, s, buf, 6, 6)
	applyStroke(t, s, buf, 10, 10)

	require.NoError(t, s.Undo(buf))
	require.NoError(t, s.Undo(buf))
	require.True(t, s.CanRedo())

	applyStroke(t, s, buf, 13, 13)
	assert.False(t, s.CanRedo())
	assert.ErrorIs(t, s.Redo(buf), ErrNothingToRedo)
}

func TestClearAllIsUndoable(t *testing.T) {
	original := mask.New(16, 16)
	original.Fill(128)
	buf := original.Clone()
	s := newStack(16)

	applyStroke(t, s, buf, 4, 4)
	preClear := buf.Clone()

	require.NoError(t, s.ClearAll(buf, original))
	assert.True(t, buf.Equal(original), "clear resets to the original segmentation mask")

	require.NoError(t, s.Undo(buf))
	assert.True(t, buf.Equal(preClear), "undo after clear restores the pre-clear mask exactly")
}

func TestClearAllRejectsMismatchedOriginal(t *testing.T) {
	buf := mask.New(16, 16)
	s := newStack(16)
	err := s.ClearAll(buf, mask.New(8, 8))
	require.Error(t, err)
}

func TestEvictionBoundsUndoDepth(t *testing.T) {
	buf := mask.New(32, 32)
	s := newStack(2)

	var states []*mask.Buffer
	states = append(states, buf.Clone())
	for i := 0; i < 5; i++ {
		applyStroke(t, s, buf, float64(3+i*6), 16)
		states = append(states, buf.Clone())
	}

	// Capacity 2: only the two most recent strokes are reversible.
	require.NoError(t, s.Undo(buf))
	assert.True(t, buf.Equal(states[4]))
	require.NoError(t, s.Undo(buf))
	assert.True(t, buf.Equal(states[3]), "mask lands at the oldest retained boundary")

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, s.Undo(buf), ErrHistoryEvicted)
		assert.True(t, buf.Equal(states[3]), "further undo must not move the mask")
	}
}

func TestByteBudgetEviction(t *testing.T) {
	buf := mask.New(64, 64)
	// Each stroke entry retains two 3x3 planes (18 bytes); a 20-byte budget
	// forces eviction down to a single entry.
	s := NewStack(100, 20, nil)

	applyStroke(t, s, buf, 10, 10)
	applyStroke(t, s, buf, 30, 30)
	applyStroke(t, s, buf, 50, 50)

	assert.Equal(t, 1, s.Depth())
	require.NoError(t, s.Undo(buf))
	assert.ErrorIs(t, s.Undo(buf), ErrHistoryEvicted)
}

func TestReplayReproducesCurrentState(t *testing.T) {
	original := mask.New(24, 24)
	original.Fill(60)
	buf := original.Clone()
	s := newStack(32)

	applyStroke(t, s, buf, 4, 4)
	applyStroke(t, s, buf, 12, 12)
	require.NoError(t, s.Undo(buf))
	applyStroke(t, s, buf, 20, 20)

	// Reapplying every past entry to the original must reproduce the
	// current buffer exactly.
	replay := original.Clone()
	for _, e := range s.entries[:s.cursor] {
		e.reapply(replay)
	}
	assert.True(t, replay.Equal(buf))
}

func TestStrokeProtocol(t *testing.T) {
	buf := mask.New(8, 8)
	s := newStack(8)

	assert.ErrorIs(t, s.End(buf), ErrNoStroke)

	_, err := s.Begin(buf)
	require.NoError(t, err)

	_, err = s.Begin(buf)
	assert.ErrorIs(t, err, ErrStrokeOpen)
	assert.ErrorIs(t, s.Undo(buf), ErrStrokeOpen)
	assert.ErrorIs(t, s.Redo(buf), ErrStrokeOpen)
	assert.ErrorIs(t, s.ClearAll(buf, buf.Clone()), ErrStrokeOpen)

	// A stroke that touched nothing pushes no entry.
	require.NoError(t, s.End(buf))
	assert.Equal(t, 0, s.Depth())
}

func TestAbortDropsRecording(t *testing.T) {
	buf := mask.New(8, 8)
	s := newStack(8)

	_, err := s.Begin(buf)
	require.NoError(t, err)
	s.Abort()
	assert.False(t, s.Recording())
	assert.Equal(t, 0, s.Depth())
}

func TestResetDropsEverything(t *testing.T) {
	buf := mask.New(8, 8)
	s := newStack(8)
	applyStroke(t, s, buf, 4, 4)

	s.Reset()
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assert.ErrorIs(t, s.Undo(buf), ErrNothingToUndo)
}
