// Package session orchestrates one image edit: it owns the mask buffer and
// the history stack for the loaded image and exposes the stroke, undo/redo,
// clear and export API consumed by the GUI layer.
package session

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"portrait-cutout/internal/brush"
	"portrait-cutout/internal/compose"
	"portrait-cutout/internal/history"
	"portrait-cutout/internal/mask"
)

// State is the lifecycle phase of an edit session.
type State int

const (
	// StateEmpty means no image is loaded.
	StateEmpty State = iota
	// StateLoaded means a segmentation result is available and the history
	// is empty.
	StateLoaded
	// StateEditing means at least one stroke has been applied.
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateEditing:
		return "editing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNoImage is returned by operations that need a loaded image.
	ErrNoImage = errors.New("session: no image loaded")
	// ErrInvalidDimensions is returned when the mask does not match the
	// image; the operation aborts and the session is left unchanged.
	ErrInvalidDimensions = errors.New("session: mask dimensions do not match image")
	// ErrStrokeInProgress is returned when an operation requires the
	// current stroke to be finished first. The UI layer serializes pointer
	// input, so hitting this means a missing EndStroke.
	ErrStrokeInProgress = errors.New("session: stroke in progress")
	// ErrNoStroke is returned by stroke-stream calls outside BeginStroke/EndStroke.
	ErrNoStroke = errors.New("session: no stroke in progress")
)

// Options configures a session.
type Options struct {
	// HistoryMaxEntries bounds the undo depth.
	HistoryMaxEntries int
	// HistoryMaxBytes bounds the total retained history plane data.
	HistoryMaxBytes int
}

// ExportResult is a full-resolution composited cut-out plus the mask
// generation it was rendered from, so a caller running exports off the
// interactive thread can tell a stale result from a current one.
type ExportResult struct {
	Image      *image.NRGBA
	Generation uint64
}

// EditSession owns the mask buffer and history for exactly one loaded image.
// A single writer is assumed: the UI serializes pointer input into one
// stroke stream. All methods are mutex-guarded so read-only preview and
// export calls are safe from other goroutines at stroke boundaries.
type EditSession struct {
	mu sync.RWMutex

	id      string
	logger  *logrus.Logger
	engine  *brush.Engine
	options Options

	source   *image.NRGBA
	current  *mask.Buffer
	original *mask.Buffer
	stack    *history.Stack

	stroke     *brush.Stroke
	recorder   *history.Recorder
	state      State
	generation uint64
}

// New creates an empty session. An image must be loaded before strokes are
// accepted.
func New(opts Options, logger *logrus.Logger) *EditSession {
	if opts.HistoryMaxEntries <= 0 {
		opts.HistoryMaxEntries = 64
	}
	if opts.HistoryMaxBytes <= 0 {
		opts.HistoryMaxBytes = 256 << 20
	}
	return &EditSession{
		id:      ksuid.New().String(),
		logger:  logger,
		engine:  brush.NewEngine(logger),
		options: opts,
	}
}

// ID returns the session identifier used for log correlation.
func (s *EditSession) ID() string { return s.id }

// LoadImage installs a new source image and its initial segmentation mask,
// discarding any previous image and unsaved history. The initial mask is
// retained separately so Clear can reset back to it.
func (s *EditSession) LoadImage(src *image.NRGBA, initial *mask.Buffer) error {
	if src == nil || initial == nil {
		return ErrNoImage
	}
	b := src.Bounds()
	if b.Dx() != initial.Width() || b.Dy() != initial.Height() {
		return fmt.Errorf("%w: image %dx%d, mask %dx%d",
			ErrInvalidDimensions, b.Dx(), b.Dy(), initial.Width(), initial.Height())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = src
	s.original = initial.Clone()
	s.current = initial.Clone()
	s.stack = history.NewStack(s.options.HistoryMaxEntries, s.options.HistoryMaxBytes, s.logger)
	s.stroke = nil
	s.recorder = nil
	s.state = StateLoaded
	s.generation++

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"session": s.id,
			"width":   b.Dx(),
			"height":  b.Dy(),
		}).Info("Image loaded into edit session")
	}
	return nil
}

// State returns the current lifecycle phase.
func (s *EditSession) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// BeginStroke opens a stroke stream with the given tool parameters. Exactly
// one stroke may be in flight.
func (s *EditSession) BeginStroke(tool brush.Tool, radius, hardness float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return ErrNoImage
	}
	if s.stroke != nil {
		return ErrStrokeInProgress
	}

	rec, err := s.stack.Begin(s.current)
	if err != nil {
		return err
	}
	s.recorder = rec
	s.stroke = &brush.Stroke{Tool: tool, Radius: radius, Hardness: hardness}
	return nil
}

// AddPoint appends a pointer sample to the in-flight stroke and rasterizes
// the new segment immediately so the preview can follow the pointer.
func (s *EditSession) AddPoint(x, y, pressure float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stroke == nil {
		return ErrNoStroke
	}

	p := brush.Point{X: x, Y: y, Pressure: pressure}
	// Rasterize incrementally: only the segment from the previous sample.
	segment := &brush.Stroke{
		Tool:     s.stroke.Tool,
		Radius:   s.stroke.Radius,
		Hardness: s.stroke.Hardness,
	}
	if n := len(s.stroke.Points); n > 0 {
		segment.Points = []brush.Point{s.stroke.Points[n-1], p}
	} else {
		segment.Points = []brush.Point{p}
	}
	s.engine.Apply(segment, s.current, s.recorder)
	s.stroke.Points = append(s.stroke.Points, p)
	s.state = StateEditing
	s.generation++
	return nil
}

// EndStroke finalizes the in-flight stroke into one history entry.
func (s *EditSession) EndStroke() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stroke == nil {
		return ErrNoStroke
	}
	samples := len(s.stroke.Points)
	s.stroke = nil
	s.recorder = nil
	if err := s.stack.End(s.current); err != nil {
		return err
	}
	if s.stack.Depth() == 0 {
		// The stroke touched nothing and pushed no entry.
		s.state = StateLoaded
	}
	s.generation++

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"session": s.id,
			"samples": samples,
			"depth":   s.stack.Depth(),
		}).Debug("Stroke committed")
	}
	return nil
}

// ApplyStroke applies a complete stroke as one history entry. Convenience
// wrapper over the BeginStroke/AddPoint/EndStroke stream.
func (s *EditSession) ApplyStroke(stroke *brush.Stroke) error {
	if err := s.BeginStroke(stroke.Tool, stroke.Radius, stroke.Hardness); err != nil {
		return err
	}
	for _, p := range stroke.Points {
		if err := s.AddPoint(p.X, p.Y, p.Pressure); err != nil {
			return err
		}
	}
	return s.EndStroke()
}

// Undo reverts the most recent stroke or clear. With nothing left to undo it
// returns history.ErrNothingToUndo, or history.ErrHistoryEvicted when older
// entries were dropped under the memory bound.
func (s *EditSession) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return ErrNoImage
	}
	if err := s.stack.Undo(s.current); err != nil {
		return err
	}
	if s.stack.Depth() == 0 {
		s.state = StateLoaded
	} else {
		s.state = StateEditing
	}
	s.generation++
	return nil
}

// Redo reapplies the most recently undone entry.
func (s *EditSession) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return ErrNoImage
	}
	if err := s.stack.Redo(s.current); err != nil {
		return err
	}
	s.state = StateEditing
	s.generation++
	return nil
}

// Clear resets the mask to the original segmentation output as a single
// undoable entry and drops all redoable entries.
func (s *EditSession) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == nil {
		return ErrNoImage
	}
	if err := s.stack.ClearAll(s.current, s.original); err != nil {
		return err
	}
	// Clear lands back in Loaded even though the reset itself stays
	// undoable as one history entry.
	s.state = StateLoaded
	s.generation++
	return nil
}

// CanUndo reports whether Undo would change the mask.
func (s *EditSession) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stack != nil && s.stack.CanUndo()
}

// CanRedo reports whether Redo would change the mask.
func (s *EditSession) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stack != nil && s.stack.CanRedo()
}

// Generation returns the mutation counter. Every stroke segment, undo, redo,
// clear and load bumps it; callers compare generations to detect stale
// asynchronous results.
func (s *EditSession) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Preview composites the current mask over the source, downsampled so the
// long edge fits maxDim (0 disables downsampling). Unlike Export it is
// allowed mid-stroke, reading the in-flight state for live feedback.
func (s *EditSession) Preview(maxDim int) (*image.NRGBA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.source == nil {
		return nil, ErrNoImage
	}
	return compose.Preview(s.source, s.current, maxDim)
}

// Export renders the full-resolution cut-out from a consistent snapshot of
// the mask. It refuses to run mid-stroke; the caller must wait for
// EndStroke first.
func (s *EditSession) Export() (*ExportResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.source == nil {
		return nil, ErrNoImage
	}
	if s.stroke != nil {
		return nil, ErrStrokeInProgress
	}
	img, err := compose.Composite(s.source, s.current)
	if err != nil {
		return nil, err
	}
	return &ExportResult{Image: img, Generation: s.generation}, nil
}

// MaskSnapshot returns an independent copy of the current mask, e.g. for
// re-editing an exported cut-out later.
func (s *EditSession) MaskSnapshot() (*mask.Buffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoImage
	}
	return s.current.Clone(), nil
}

// Source returns the immutable source image, or nil when empty.
func (s *EditSession) Source() *image.NRGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}
