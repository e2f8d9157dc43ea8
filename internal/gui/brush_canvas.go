// Brush canvas widget: displays the live cut-out preview and turns pointer
// input into mask strokes.
package gui

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"portrait-cutout/internal/brush"
	"portrait-cutout/internal/session"
)

// BrushCanvas is a custom widget that renders the composited preview and
// feeds pointer events into the edit session as a single serialized stroke
// stream.
type BrushCanvas struct {
	widget.BaseWidget

	session *session.EditSession
	logger  *logrus.Logger

	previewImage *canvas.Image
	cursorRaster *canvas.Raster

	tool     brush.Tool
	radius   float64
	hardness float64

	painting bool
	hovering bool
	mousePos fyne.Position

	previewMaxDim int
	onStrokeDone  func()
}

// NewBrushCanvas creates the canvas bound to one edit session.
func NewBrushCanvas(sess *session.EditSession, previewMaxDim int, logger *logrus.Logger) *BrushCanvas {
	bc := &BrushCanvas{
		session:       sess,
		logger:        logger,
		tool:          brush.ToolErase,
		radius:        24,
		hardness:      0.8,
		previewMaxDim: previewMaxDim,
	}
	bc.ExtendBaseWidget(bc)
	return bc
}

// CreateRenderer creates the renderer for the brush canvas.
func (bc *BrushCanvas) CreateRenderer() fyne.WidgetRenderer {
	bc.previewImage = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	bc.previewImage.FillMode = canvas.ImageFillContain

	bc.cursorRaster = canvas.NewRaster(func(w, h int) image.Image {
		return bc.drawCursorOverlay(w, h)
	})

	return &brushCanvasRenderer{
		canvas:  bc,
		image:   bc.previewImage,
		overlay: bc.cursorRaster,
	}
}

// SetTool selects the Restore or Eraser brush.
func (bc *BrushCanvas) SetTool(tool brush.Tool) {
	bc.tool = tool
	bc.logger.WithField("tool", tool.String()).Debug("Active tool changed")
}

// SetRadius sets the brush radius in image pixels.
func (bc *BrushCanvas) SetRadius(radius float64) {
	bc.radius = radius
	bc.refreshCursor()
}

// refreshCursor redraws the outline overlay. The raster only exists once the
// renderer has been created, which may be after the first parameter updates.
func (bc *BrushCanvas) refreshCursor() {
	if bc.cursorRaster != nil {
		bc.cursorRaster.Refresh()
	}
}

// SetHardness sets the brush edge hardness in [0,1].
func (bc *BrushCanvas) SetHardness(hardness float64) {
	bc.hardness = hardness
}

// SetStrokeDoneCallback registers the callback fired after every committed
// stroke, e.g. to refresh undo/redo button state.
func (bc *BrushCanvas) SetStrokeDoneCallback(cb func()) {
	bc.onStrokeDone = cb
}

// RefreshPreview re-composites the session preview into the widget.
func (bc *BrushCanvas) RefreshPreview() {
	img, err := bc.session.Preview(bc.previewMaxDim)
	if err != nil {
		if err != session.ErrNoImage {
			bc.logger.WithError(err).Warn("Preview render failed")
		}
		return
	}
	bc.previewImage.Image = img
	bc.previewImage.Refresh()
}

// MouseDown starts a stroke at the pressed position.
func (bc *BrushCanvas) MouseDown(event *desktop.MouseEvent) {
	if bc.session.State() == session.StateEmpty {
		return
	}

	if err := bc.session.BeginStroke(bc.tool, bc.radius, bc.hardness); err != nil {
		bc.logger.WithError(err).Warn("Could not begin stroke")
		return
	}
	bc.painting = true

	x, y := bc.screenToImage(event.Position)
	if err := bc.session.AddPoint(x, y, 1); err != nil {
		bc.logger.WithError(err).Warn("Dropped stroke sample")
	}
	bc.RefreshPreview()
}

// Dragged extends the in-flight stroke and refreshes the live preview.
func (bc *BrushCanvas) Dragged(event *fyne.DragEvent) {
	bc.mousePos = event.Position
	bc.refreshCursor()

	if !bc.painting {
		return
	}
	x, y := bc.screenToImage(event.Position)
	if err := bc.session.AddPoint(x, y, 1); err != nil {
		bc.logger.WithError(err).Warn("Dropped stroke sample")
		return
	}
	bc.RefreshPreview()
}

// DragEnd commits the stroke as one undoable history entry.
func (bc *BrushCanvas) DragEnd() {
	bc.finishStroke()
}

// MouseUp commits a click-without-drag stroke.
func (bc *BrushCanvas) MouseUp(_ *desktop.MouseEvent) {
	bc.finishStroke()
}

func (bc *BrushCanvas) finishStroke() {
	if !bc.painting {
		return
	}
	bc.painting = false

	if err := bc.session.EndStroke(); err != nil {
		bc.logger.WithError(err).Warn("Could not finish stroke")
		return
	}
	bc.RefreshPreview()
	if bc.onStrokeDone != nil {
		bc.onStrokeDone()
	}
}

// Hover handling keeps the brush outline under the pointer.

func (bc *BrushCanvas) MouseIn(event *desktop.MouseEvent) {
	bc.hovering = true
	bc.mousePos = event.Position
	bc.refreshCursor()
}

func (bc *BrushCanvas) MouseMoved(event *desktop.MouseEvent) {
	bc.mousePos = event.Position
	bc.refreshCursor()
}

func (bc *BrushCanvas) MouseOut() {
	bc.hovering = false
	bc.refreshCursor()
}

// screenToImage converts widget coordinates to image coordinates, matching
// the ImageFillContain letterboxing.
func (bc *BrushCanvas) screenToImage(pos fyne.Position) (float64, float64) {
	src := bc.session.Source()
	if src == nil {
		return 0, 0
	}
	scale, offsetX, offsetY := bc.displayTransform()
	if scale <= 0 {
		return 0, 0
	}
	x := (float64(pos.X) - offsetX) / scale
	y := (float64(pos.Y) - offsetY) / scale
	return x, y
}

// displayTransform returns the scale and letterbox offsets that map image
// coordinates onto the widget.
func (bc *BrushCanvas) displayTransform() (scale, offsetX, offsetY float64) {
	src := bc.session.Source()
	if src == nil {
		return 0, 0, 0
	}
	widgetSize := bc.Size()
	imgW := float64(src.Bounds().Dx())
	imgH := float64(src.Bounds().Dy())
	if imgW <= 0 || imgH <= 0 {
		return 0, 0, 0
	}

	scale = math.Min(float64(widgetSize.Width)/imgW, float64(widgetSize.Height)/imgH)
	offsetX = (float64(widgetSize.Width) - imgW*scale) / 2
	offsetY = (float64(widgetSize.Height) - imgH*scale) / 2
	return scale, offsetX, offsetY
}

// drawCursorOverlay renders the brush outline ring at the pointer position.
func (bc *BrushCanvas) drawCursorOverlay(w, h int) image.Image {
	overlay := image.NewRGBA(image.Rect(0, 0, w, h))
	if !bc.hovering || bc.session.State() == session.StateEmpty {
		return overlay
	}

	scale, _, _ := bc.displayTransform()
	if scale <= 0 {
		return overlay
	}

	ringColor := color.RGBA{R: 255, G: 255, B: 255, A: 200}
	if bc.tool == brush.ToolRestore {
		ringColor = color.RGBA{R: 80, G: 220, B: 80, A: 200}
	}

	cx := float64(bc.mousePos.X)
	cy := float64(bc.mousePos.Y)
	r := bc.radius * scale
	steps := int(math.Max(24, r))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := int(cx + r*math.Cos(a))
		y := int(cy + r*math.Sin(a))
		if x >= 0 && x < w && y >= 0 && y < h {
			overlay.Set(x, y, ringColor)
		}
	}
	return overlay
}

// brushCanvasRenderer is the renderer for the brush canvas.
type brushCanvasRenderer struct {
	canvas  *BrushCanvas
	image   *canvas.Image
	overlay *canvas.Raster
}

func (r *brushCanvasRenderer) Layout(size fyne.Size) {
	r.image.Resize(size)
	r.overlay.Resize(size)
}

func (r *brushCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *brushCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.image, r.overlay}
}

func (r *brushCanvasRenderer) Refresh() {
	r.image.Refresh()
	r.overlay.Refresh()
}

func (r *brushCanvasRenderer) Destroy() {
}
