// Package gui implements the desktop editor: a brush canvas over the live
// cut-out preview, the brush/history toolbar and the file menu.
package gui

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"portrait-cutout/internal/brush"
	"portrait-cutout/internal/compose"
	"portrait-cutout/internal/config"
	"portrait-cutout/internal/history"
	appio "portrait-cutout/internal/io"
	"portrait-cutout/internal/mask"
	"portrait-cutout/internal/segment"
	"portrait-cutout/internal/session"
)

var openFileExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".tiff", ".tif"}

// Application wires the edit session, the segmentation engine and the
// widgets into one window.
type Application struct {
	app    fyne.App
	window fyne.Window
	logger *logrus.Logger
	cfg    *config.Config

	session   *session.EditSession
	loader    *appio.Loader
	segmenter segment.Segmenter

	canvas      *BrushCanvas
	toolbar     *Toolbar
	thumbnail   *canvas.Image
	statusLabel *widget.Label
	mainContent *container.Split
}

// NewApplication builds the main window. The segmenter may be nil when no
// model is available; images then start fully opaque and are cut out by hand.
func NewApplication(app fyne.App, cfg *config.Config, segmenter segment.Segmenter, logger *logrus.Logger) *Application {
	window := app.NewWindow("Portrait Cutout")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		cfg:       cfg,
		segmenter: segmenter,
		loader:    appio.NewLoader(logger),
		session: session.New(session.Options{
			HistoryMaxEntries: cfg.History.MaxEntries,
			HistoryMaxBytes:   cfg.History.MaxBytes,
		}, logger),
	}

	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a
}

func (a *Application) initializeGUI() {
	a.canvas = NewBrushCanvas(a.session, a.cfg.Preview.MaxDimension, a.logger)
	a.canvas.SetRadius(a.cfg.Brush.Radius)
	a.canvas.SetHardness(a.cfg.Brush.Hardness)
	a.toolbar = NewToolbar(a.cfg.Brush.Radius, a.cfg.Brush.Hardness)
	a.thumbnail = canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	a.thumbnail.FillMode = canvas.ImageFillContain
	a.thumbnail.SetMinSize(fyne.NewSize(200, 140))
	a.statusLabel = widget.NewLabel("Open an image to start")
}

func (a *Application) setupLayout() {
	sidebar := container.NewVBox(
		widget.NewCard("Source", "", a.thumbnail),
		widget.NewCard("Tools", "", a.toolbar.GetContainer()),
	)

	center := container.NewBorder(
		nil,           // top
		a.statusLabel, // bottom
		nil,           // left
		nil,           // right
		container.NewPadded(a.canvas),
	)

	a.mainContent = container.NewHSplit(sidebar, center)
	a.mainContent.SetOffset(0.22)

	a.window.SetMainMenu(a.buildMainMenu())
	a.window.SetContent(a.mainContent)
}

func (a *Application) buildMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", a.openImageDialog),
		fyne.NewMenuItem("Export PNG...", a.exportDialog),
	)
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", a.undo),
		fyne.NewMenuItem("Redo", a.redo),
		fyne.NewMenuItem("Reset Mask", a.clearMask),
	)
	return fyne.NewMainMenu(fileMenu, editMenu)
}

func (a *Application) setupCallbacks() {
	a.toolbar.SetCallbacks(
		func(tool brush.Tool) {
			a.canvas.SetTool(tool)
			a.setStatus(fmt.Sprintf("Tool: %s", tool))
		},
		func(radius float64) { a.canvas.SetRadius(radius) },
		func(hardness float64) { a.canvas.SetHardness(hardness) },
		a.undo,
		a.redo,
		a.clearMask,
	)

	a.canvas.SetStrokeDoneCallback(func() {
		a.toolbar.SetHistoryState(a.session.CanUndo(), a.session.CanRedo())
	})
}

func (a *Application) openImageDialog() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError("Open Image", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		go a.loadImage(path)
	}, a.window)

	fd.SetFilter(storage.NewExtensionFileFilter(openFileExtensions))
	fd.Resize(fyne.NewSize(800, 600))
	fd.Show()
}

// loadImage decodes and segments off the UI thread, then installs the result.
func (a *Application) loadImage(path string) {
	fyne.Do(func() { a.setStatus(fmt.Sprintf("Loading %s...", path)) })

	img, err := a.loader.LoadImage(path)
	if err != nil {
		fyne.Do(func() { a.showError("Open Image", err) })
		return
	}

	b := img.Bounds()
	var initial *mask.Buffer
	if a.segmenter != nil {
		fyne.Do(func() { a.setStatus("Segmenting...") })
		initial, err = a.segmenter.Segment(img)
		if err != nil {
			a.logger.WithError(err).Warn("Segmentation failed, starting from an opaque mask")
			initial = nil
		}
	}
	if initial == nil {
		initial = mask.New(b.Dx(), b.Dy())
		initial.Fill(255)
	}

	if err := a.session.LoadImage(img, initial); err != nil {
		fyne.Do(func() { a.showError("Open Image", err) })
		return
	}

	thumb := compose.Thumbnail(img, 200, 200)
	fyne.Do(func() {
		a.thumbnail.Image = thumb
		a.thumbnail.Refresh()
		a.canvas.RefreshPreview()
		a.toolbar.Enable()
		a.toolbar.SetHistoryState(false, false)
		a.setStatus(fmt.Sprintf("Loaded %s (%dx%d)", path, b.Dx(), b.Dy()))
	})
}

func (a *Application) exportDialog() {
	result, err := a.session.Export()
	if err != nil {
		a.showError("Export", err)
		return
	}

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			a.showError("Export", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		go func() {
			if err := a.loader.SavePNG(result.Image, path); err != nil {
				fyne.Do(func() { a.showError("Export", err) })
				return
			}
			stale := a.session.Generation() != result.Generation
			fyne.Do(func() {
				if stale {
					a.setStatus(fmt.Sprintf("Saved %s (edited since the export was taken)", path))
				} else {
					a.setStatus(fmt.Sprintf("Saved %s", path))
				}
			})
		}()
	}, a.window)

	fd.SetFileName("cutout.png")
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	fd.Show()
}

func (a *Application) undo() {
	switch err := a.session.Undo(); err {
	case nil:
		a.canvas.RefreshPreview()
		a.setStatus("Undo")
	case history.ErrNothingToUndo:
		a.setStatus("Nothing to undo")
	case history.ErrHistoryEvicted:
		a.setStatus("Older edits were dropped to bound memory use")
	default:
		a.showError("Undo", err)
	}
	a.toolbar.SetHistoryState(a.session.CanUndo(), a.session.CanRedo())
}

func (a *Application) redo() {
	switch err := a.session.Redo(); err {
	case nil:
		a.canvas.RefreshPreview()
		a.setStatus("Redo")
	case history.ErrNothingToRedo:
		a.setStatus("Nothing to redo")
	default:
		a.showError("Redo", err)
	}
	a.toolbar.SetHistoryState(a.session.CanUndo(), a.session.CanRedo())
}

func (a *Application) clearMask() {
	if err := a.session.Clear(); err != nil {
		if err != session.ErrNoImage {
			a.showError("Reset Mask", err)
		}
		return
	}
	a.canvas.RefreshPreview()
	a.toolbar.SetHistoryState(a.session.CanUndo(), a.session.CanRedo())
	a.setStatus("Mask reset to segmentation result")
}

func (a *Application) setStatus(message string) {
	a.statusLabel.SetText(message)
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(err, a.window)
	a.setStatus(fmt.Sprintf("Error: %v", err))
}

// ShowAndRun shows the window and enters the event loop.
func (a *Application) ShowAndRun() {
	a.logger.Info("Showing editor window")

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.app.Quit()
	})

	a.window.ShowAndRun()
}

func (a *Application) cleanup() {
	if eng, ok := a.segmenter.(*segment.Engine); ok && eng != nil {
		if err := eng.Destroy(); err != nil {
			a.logger.WithError(err).Warn("Segmentation engine shutdown failed")
		}
	}
}
