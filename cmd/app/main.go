package main

import (
	"flag"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"portrait-cutout/internal/config"
	"portrait-cutout/internal/gui"
	"portrait-cutout/internal/segment"
)

const (
	AppID      = "io.portraitcutout.editor"
	AppVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "Path to the TOML configuration file")
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	flag.Parse()

	logger := initLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
	}).Info("Starting Portrait Cutout")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Configuration rejected")
	}

	segmenter := initSegmenter(cfg, logger)

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	mainApp := gui.NewApplication(myApp, cfg, segmenter, logger)
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
	os.Exit(0)
}

// initSegmenter brings up the ONNX engine. A missing model or runtime is not
// fatal: the editor still works, starting every image from an opaque mask.
func initSegmenter(cfg *config.Config, logger *logrus.Logger) segment.Segmenter {
	libPath := cfg.Model.LibraryPath
	if libPath == "" {
		libPath = segment.DefaultLibraryPath()
	}

	engine, err := segment.NewEngine(segment.Config{
		OnnxRuntimeLibPath: libPath,
		ModelPath:          cfg.Model.Path,
		InputSize:          cfg.Model.InputSize,
		NumThreads:         cfg.Model.NumThreads,
		Normalize:          cfg.Model.Normalize,
		RefineMask:         cfg.Model.Refine,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("Segmentation unavailable, images will open fully opaque")
		return nil
	}
	return engine
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}
