package segment

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"

	"portrait-cutout/internal/mask"
	"portrait-cutout/internal/refine"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// Engine runs the human-segmentation ONNX model. It implements Segmenter.
type Engine struct {
	session    *ort.DynamicAdvancedSession
	config     Config
	inputName  string
	outputName string
	logger     *logrus.Logger
}

// NewEngine loads the model and prepares an inference session. The ONNX
// runtime environment is initialized once per process.
func NewEngine(cfg Config, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, &ModelError{Stage: "config", Err: err}
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, &ModelError{Stage: "load", Err: fmt.Errorf("model file not found: %w", err)}
	}

	ortInitOnce.Do(func() {
		ort.SetSharedLibraryPath(cfg.OnnxRuntimeLibPath)
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, &ModelError{Stage: "init", Err: ortInitErr}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, &ModelError{Stage: "init", Err: err}
	}
	defer options.Destroy()
	if cfg.NumThreads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, &ModelError{Stage: "init", Err: err}
		}
	}

	// The model's tensor names are discovered at load time, matching
	// whatever export produced the .onnx file.
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, &ModelError{Stage: "load", Err: err}
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, &ModelError{Stage: "load", Err: fmt.Errorf("model has no inputs or outputs")}
	}
	inputName := inputs[0].Name
	outputName := outputs[0].Name

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputName}, []string{outputName}, options)
	if err != nil {
		return nil, &ModelError{Stage: "load", Err: err}
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"model":  cfg.ModelPath,
			"input":  inputName,
			"output": outputName,
			"size":   cfg.InputSize,
		}).Info("Segmentation model loaded")
	}

	return &Engine{
		session:    session,
		config:     cfg,
		inputName:  inputName,
		outputName: outputName,
		logger:     logger,
	}, nil
}

// Destroy releases the inference session.
func (e *Engine) Destroy() error {
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			return &ModelError{Stage: "destroy", Err: err}
		}
		e.session = nil
	}
	return nil
}

// Segment runs inference on img and returns a foreground mask of the same
// dimensions with values in [0,255].
func (e *Engine) Segment(img image.Image) (*mask.Buffer, error) {
	if e.session == nil {
		return nil, &ModelError{Stage: "inference", Err: fmt.Errorf("engine destroyed")}
	}
	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()
	if origW <= 0 || origH <= 0 {
		return nil, &ModelError{Stage: "preprocess", Err: fmt.Errorf("invalid image dimensions %dx%d", origW, origH)}
	}

	size := e.config.InputSize
	resized := resizeBilinear(img, size, size)
	tensorData := normalizeNCHW(resized, e.config.Normalize)

	inputShape := ort.NewShape(1, 3, int64(size), int64(size))
	inputTensor, err := ort.NewTensor(inputShape, tensorData)
	if err != nil {
		return nil, &ModelError{Stage: "preprocess", Err: err}
	}
	defer inputTensor.Destroy()

	outputs := make([]ort.Value, 1)
	if err := e.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, &ModelError{Stage: "inference", Err: err}
	}
	defer outputs[0].Destroy()

	raw := outputs[0].(*ort.Tensor[float32]).GetData()
	if len(raw) < size*size {
		return nil, &ModelError{Stage: "postprocess",
			Err: fmt.Errorf("output has %d values, want at least %d", len(raw), size*size)}
	}

	small := probsToGray(raw[:size*size], size)
	full := upscaleGray(small, origW, origH)
	m := mask.FromGray(full)

	if e.config.RefineMask {
		if err := refine.Apply(m, refine.DefaultParams()); err != nil {
			return nil, &ModelError{Stage: "postprocess", Err: err}
		}
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"width":  origW,
			"height": origH,
		}).Debug("Segmentation complete")
	}
	return m, nil
}

// upscaleGray resizes the model-resolution mask back to source resolution.
// Catmull-Rom keeps soft alpha gradients smooth on hair edges.
func upscaleGray(src *image.Gray, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
