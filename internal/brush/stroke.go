// Package brush converts pointer strokes into pixel-level mask changes.
package brush

import "fmt"

// Tool selects the brush semantics.
type Tool int

const (
	// ToolRestore pushes mask opacity toward foreground, recovering areas
	// the model misclassified as background.
	ToolRestore Tool = iota
	// ToolErase pushes mask opacity toward background, removing unwanted
	// foreground.
	ToolErase
)

func (t Tool) String() string {
	switch t {
	case ToolRestore:
		return "restore"
	case ToolErase:
		return "erase"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// Point is one pointer sample in image coordinates. Pressure scales the
// stamp radius; devices without pressure report 1.
type Point struct {
	X        float64
	Y        float64
	Pressure float64
}

// Stroke is one continuous pointer drag with a fixed tool, radius and
// hardness. It is ephemeral input: applying it produces mask changes and a
// history entry, after which the stroke itself is discarded.
type Stroke struct {
	Tool     Tool
	Radius   float64
	Hardness float64
	Points   []Point
}
