// Package segment produces the initial foreground mask for a photo. The
// editing core treats it as an opaque collaborator: image in, single-channel
// mask of the same dimensions out.
package segment

import (
	"fmt"
	"image"

	"portrait-cutout/internal/mask"
)

// Segmenter is the collaborator contract the edit session depends on.
type Segmenter interface {
	Segment(img image.Image) (*mask.Buffer, error)
}

// ModelError wraps any failure of the segmentation model, from invalid
// dimensions to inference errors. It is propagated unchanged to the UI.
type ModelError struct {
	Stage string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model: %s: %v", e.Stage, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }
