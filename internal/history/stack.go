package history

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"portrait-cutout/internal/mask"
)

var (
	// ErrNothingToUndo is returned when the past side of the history is empty.
	ErrNothingToUndo = errors.New("history: nothing to undo")
	// ErrNothingToRedo is returned when the future side of the history is empty.
	ErrNothingToRedo = errors.New("history: nothing to redo")
	// ErrHistoryEvicted is returned when undo reaches entries that were
	// dropped under the memory bound. The mask stays at the oldest retained
	// boundary; this is the capacity trade-off of bounded history.
	ErrHistoryEvicted = errors.New("history: entry evicted under memory bound")
	// ErrStrokeOpen is returned when an operation requires no stroke to be
	// in progress.
	ErrStrokeOpen = errors.New("history: stroke in progress")
	// ErrNoStroke is returned by End without a matching Begin.
	ErrNoStroke = errors.New("history: no stroke in progress")
)

// Stack is a linear undo/redo history over one mask buffer. entries[:cursor]
// are the past (undoable), entries[cursor:] the future (redoable). Pushing a
// new entry truncates the future; the redo branch is discarded, never kept
// as a tree.
//
// Memory policy: both the entry count and the total retained bytes are
// bounded; the oldest entries are evicted first. Eviction silently gives up
// the ability to undo past the eviction point, which Undo reports as
// ErrHistoryEvicted.
type Stack struct {
	entries  []*Entry
	cursor   int
	recorder *Recorder

	maxEntries int
	maxBytes   int
	evicted    bool

	logger *logrus.Logger
}

// NewStack creates a history bounded by maxEntries entries and maxBytes of
// retained plane data. Non-positive bounds fall back to minimal sane values.
func NewStack(maxEntries, maxBytes int, logger *logrus.Logger) *Stack {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if maxBytes < 1 {
		maxBytes = 1 << 20
	}
	return &Stack{
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Begin opens a stroke recording against buf. Exactly one stroke may be in
// progress at a time.
func (s *Stack) Begin(buf *mask.Buffer) (*Recorder, error) {
	if s.recorder != nil {
		return nil, ErrStrokeOpen
	}
	s.recorder = newRecorder(buf.Width(), buf.Height())
	return s.recorder, nil
}

// End finalizes the in-progress stroke and pushes it as a history entry,
// truncating any redoable entries. A stroke that touched nothing pushes no
// entry.
func (s *Stack) End(buf *mask.Buffer) error {
	if s.recorder == nil {
		return ErrNoStroke
	}
	rec := s.recorder
	s.recorder = nil

	if !rec.Dirty() {
		return nil
	}
	s.push(rec.finalize(buf))
	return nil
}

// Abort drops the in-progress stroke recording without pushing an entry.
func (s *Stack) Abort() {
	s.recorder = nil
}

// Recording reports whether a stroke is currently open.
func (s *Stack) Recording() bool { return s.recorder != nil }

// Undo reverts the most recent past entry against buf and moves it to the
// future side.
func (s *Stack) Undo(buf *mask.Buffer) error {
	if s.recorder != nil {
		return ErrStrokeOpen
	}
	if s.cursor == 0 {
		if s.evicted {
			return ErrHistoryEvicted
		}
		return ErrNothingToUndo
	}
	s.cursor--
	s.entries[s.cursor].revert(buf)
	return nil
}

// Redo reapplies the oldest future entry against buf and moves it back to
// the past side.
func (s *Stack) Redo(buf *mask.Buffer) error {
	if s.recorder != nil {
		return ErrStrokeOpen
	}
	if s.cursor == len(s.entries) {
		return ErrNothingToRedo
	}
	s.entries[s.cursor].reapply(buf)
	s.cursor++
	return nil
}

// ClearAll resets buf to original and records the reset as a single undoable
// entry. Redoable entries are dropped.
func (s *Stack) ClearAll(buf, original *mask.Buffer) error {
	if s.recorder != nil {
		return ErrStrokeOpen
	}
	if original.Width() != buf.Width() || original.Height() != buf.Height() {
		return fmt.Errorf("history: original mask %dx%d does not match buffer %dx%d",
			original.Width(), original.Height(), buf.Width(), buf.Height())
	}
	entry := snapshotEntry(buf, original)
	if err := buf.CopyFrom(original); err != nil {
		return err
	}
	s.push(entry)
	return nil
}

// CanUndo reports whether Undo would succeed.
func (s *Stack) CanUndo() bool { return s.cursor > 0 }

// CanRedo reports whether Redo would succeed.
func (s *Stack) CanRedo() bool { return s.cursor < len(s.entries) }

// Depth returns the number of past (undoable) entries.
func (s *Stack) Depth() int { return s.cursor }

// Reset drops all entries and any in-progress recording, e.g. when a new
// image is loaded.
func (s *Stack) Reset() {
	s.entries = nil
	s.cursor = 0
	s.recorder = nil
	s.evicted = false
}

func (s *Stack) push(entry *Entry) {
	s.entries = s.entries[:s.cursor]
	s.entries = append(s.entries, entry)
	s.cursor = len(s.entries)
	s.evict()
}

// evict drops the oldest entries until both bounds hold. At least one entry
// is always retained so the stroke just pushed stays undoable.
func (s *Stack) evict() {
	drop := 0
	for len(s.entries)-drop > 1 {
		over := len(s.entries)-drop > s.maxEntries || s.retainedBytes(drop) > s.maxBytes
		if !over {
			break
		}
		drop++
	}
	if drop == 0 {
		return
	}

	s.entries = append([]*Entry(nil), s.entries[drop:]...)
	s.cursor -= drop
	s.evicted = true

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"dropped":   drop,
			"remaining": len(s.entries),
		}).Debug("Evicted oldest history entries")
	}
}

func (s *Stack) retainedBytes(drop int) int {
	total := 0
	for _, e := range s.entries[drop:] {
		total += e.SizeBytes()
	}
	return total
}
