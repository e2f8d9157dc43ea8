// Package io handles image decode and encode for the editor. The editing
// core consumes and produces raw pixel buffers only; this is the boundary
// where files become buffers and back.
package io

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// CodecError wraps a decode or encode failure with the operation and path
// that produced it. It is surfaced to the user unchanged, never swallowed.
type CodecError struct {
	Op   string
	Path string
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// Loader handles image file operations.
type Loader struct {
	logger *logrus.Logger
}

func NewLoader(logger *logrus.Logger) *Loader {
	return &Loader{logger: logger}
}

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".tiff", ".tif"}

// Supported reports whether the file extension belongs to a decodable format.
func Supported(path string) bool {
	ext := strings.ToLower(extension(path))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func extension(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}
	return ""
}

// LoadImage decodes the file at path into an NRGBA buffer.
func (l *Loader) LoadImage(path string) (*image.NRGBA, error) {
	if l.logger != nil {
		l.logger.WithField("path", path).Debug("Loading image")
	}
	if !Supported(path) {
		return nil, &CodecError{Op: "decode", Path: path, Err: fmt.Errorf("unsupported format %q", extension(path))}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CodecError{Op: "decode", Path: path, Err: err}
	}
	img, err := Decode(data)
	if err != nil {
		return nil, &CodecError{Op: "decode", Path: path, Err: err}
	}

	if l.logger != nil {
		l.logger.WithFields(logrus.Fields{
			"path":   path,
			"width":  img.Bounds().Dx(),
			"height": img.Bounds().Dy(),
		}).Info("Image loaded")
	}
	return img, nil
}

// Decode turns encoded bytes into an NRGBA buffer regardless of the source
// pixel format.
func Decode(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba, nil
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}

// EncodePNG writes the RGBA cut-out as PNG bytes. PNG is the one export
// format because it keeps the alpha channel.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SavePNG writes the RGBA cut-out to path.
func (l *Loader) SavePNG(img image.Image, path string) error {
	data, err := EncodePNG(img)
	if err != nil {
		return &CodecError{Op: "encode", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &CodecError{Op: "encode", Path: path, Err: err}
	}

	if l.logger != nil {
		l.logger.WithFields(logrus.Fields{
			"path":   path,
			"width":  img.Bounds().Dx(),
			"height": img.Bounds().Dy(),
		}).Info("Image saved")
	}
	return nil
}

// EncodeJPEG renders an opaque preview; the alpha channel is discarded.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
