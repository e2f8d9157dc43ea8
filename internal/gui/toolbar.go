package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"portrait-cutout/internal/brush"
)

// Toolbar holds the editing controls: tool selection, brush parameters and
// the history actions.
type Toolbar struct {
	container *fyne.Container

	toolSelect     *widget.RadioGroup
	radiusSlider   *widget.Slider
	radiusLabel    *widget.Label
	hardnessSlider *widget.Slider
	hardnessLabel  *widget.Label

	undoButton  *widget.Button
	redoButton  *widget.Button
	clearButton *widget.Button

	onToolChanged     func(tool brush.Tool)
	onRadiusChanged   func(radius float64)
	onHardnessChanged func(hardness float64)
	onUndo            func()
	onRedo            func()
	onClear           func()
}

const (
	toolLabelErase   = "Eraser"
	toolLabelRestore = "Restore"
)

// NewToolbar builds the toolbar with the given initial brush parameters.
func NewToolbar(radius, hardness float64) *Toolbar {
	t := &Toolbar{}

	t.toolSelect = widget.NewRadioGroup([]string{toolLabelErase, toolLabelRestore}, func(selected string) {
		if t.onToolChanged == nil {
			return
		}
		tool := brush.ToolErase
		if selected == toolLabelRestore {
			tool = brush.ToolRestore
		}
		t.onToolChanged(tool)
	})
	t.toolSelect.SetSelected(toolLabelErase)
	t.toolSelect.Horizontal = true

	t.radiusLabel = widget.NewLabel(fmt.Sprintf("Radius: %.0f px", radius))
	t.radiusSlider = widget.NewSlider(1, 200)
	t.radiusSlider.Step = 1
	t.radiusSlider.Value = radius
	t.radiusSlider.OnChanged = func(value float64) {
		t.radiusLabel.SetText(fmt.Sprintf("Radius: %.0f px", value))
		if t.onRadiusChanged != nil {
			t.onRadiusChanged(value)
		}
	}

	t.hardnessLabel = widget.NewLabel(fmt.Sprintf("Hardness: %.2f", hardness))
	t.hardnessSlider = widget.NewSlider(0, 1)
	t.hardnessSlider.Step = 0.05
	t.hardnessSlider.Value = hardness
	t.hardnessSlider.OnChanged = func(value float64) {
		t.hardnessLabel.SetText(fmt.Sprintf("Hardness: %.2f", value))
		if t.onHardnessChanged != nil {
			t.onHardnessChanged(value)
		}
	}

	t.undoButton = widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), func() {
		if t.onUndo != nil {
			t.onUndo()
		}
	})
	t.redoButton = widget.NewButtonWithIcon("Redo", theme.ContentRedoIcon(), func() {
		if t.onRedo != nil {
			t.onRedo()
		}
	})
	t.clearButton = widget.NewButtonWithIcon("Reset Mask", theme.ContentClearIcon(), func() {
		if t.onClear != nil {
			t.onClear()
		}
	})

	t.container = container.NewVBox(
		widget.NewLabelWithStyle("Brush", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		t.toolSelect,
		t.radiusLabel,
		t.radiusSlider,
		t.hardnessLabel,
		t.hardnessSlider,
		widget.NewSeparator(),
		container.NewHBox(t.undoButton, t.redoButton),
		t.clearButton,
	)

	t.Disable()
	return t
}

// GetContainer returns the toolbar layout container.
func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

// SetCallbacks wires the toolbar controls to the application.
func (t *Toolbar) SetCallbacks(
	onToolChanged func(tool brush.Tool),
	onRadiusChanged func(radius float64),
	onHardnessChanged func(hardness float64),
	onUndo, onRedo, onClear func(),
) {
	t.onToolChanged = onToolChanged
	t.onRadiusChanged = onRadiusChanged
	t.onHardnessChanged = onHardnessChanged
	t.onUndo = onUndo
	t.onRedo = onRedo
	t.onClear = onClear
}

// Enable activates the controls once an image is loaded.
func (t *Toolbar) Enable() {
	t.toolSelect.Enable()
	t.clearButton.Enable()
}

// Disable deactivates everything that needs a loaded image.
func (t *Toolbar) Disable() {
	t.toolSelect.Disable()
	t.undoButton.Disable()
	t.redoButton.Disable()
	t.clearButton.Disable()
}

// SetHistoryState toggles the undo and redo buttons.
func (t *Toolbar) SetHistoryState(canUndo, canRedo bool) {
	if canUndo {
		t.undoButton.Enable()
	} else {
		t.undoButton.Disable()
	}
	if canRedo {
		t.redoButton.Enable()
	} else {
		t.redoButton.Disable()
	}
}
