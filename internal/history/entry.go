// Package history records stroke-level deltas against the mask buffer and
// provides linear undo/redo with a bounded memory footprint.
package history

import (
	"image"

	"portrait-cutout/internal/mask"
)

// Entry captures one completed edit. It stores the touched bounding rect and
// dense before/after planes for that rect, which is enough to reverse or
// reapply the edit bit-for-bit.
type Entry struct {
	rect   image.Rectangle
	before []uint8
	after  []uint8
}

// Rect returns the area of the mask the entry covers.
func (e *Entry) Rect() image.Rectangle { return e.rect }

// SizeBytes returns the retained memory of the entry, used for the history
// byte budget.
func (e *Entry) SizeBytes() int { return len(e.before) + len(e.after) }

// revert restores the pre-edit samples inside the entry rect.
func (e *Entry) revert(buf *mask.Buffer) {
	buf.WriteRect(e.rect, e.before)
}

// reapply restores the post-edit samples inside the entry rect.
func (e *Entry) reapply(buf *mask.Buffer) {
	buf.WriteRect(e.rect, e.after)
}

// snapshotEntry builds an entry covering the whole buffer, used by ClearAll
// where the reset touches every pixel.
func snapshotEntry(current, replacement *mask.Buffer) *Entry {
	rect := current.Bounds()
	before := make([]uint8, rect.Dx()*rect.Dy())
	after := make([]uint8, rect.Dx()*rect.Dy())
	current.ReadRect(rect, before)
	replacement.ReadRect(rect, after)
	return &Entry{rect: rect, before: before, after: after}
}
