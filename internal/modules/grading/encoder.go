package grading

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"

	_ "image/gif"
	_ "image/png"

	"github.com/inkgrade/core/internal/config"
	xdraw "golang.org/x/image/draw"
)

// Encoder normalizes essay page images for the vision API: flatten to RGB
// over white, cap the longest edge, re-encode as JPEG, base64.
type Encoder struct {
	maxEdge int
	quality int
}

func NewEncoder(cfg config.GradingConfig) *Encoder {
	return &Encoder{
		maxEdge: cfg.MaxImageEdge,
		quality: cfg.JPEGQuality,
	}
}

// EncodeFile reads and normalizes the image at path, returning base64 JPEG.
func (e *Encoder) EncodeFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", &PreprocessingError{Path: path, Err: err}
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return "", &PreprocessingError{Path: path, Err: err}
	}
	return e.Encode(src)
}

// Encode normalizes an already decoded image.
func (e *Encoder) Encode(src image.Image) (string, error) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return "", &PreprocessingError{Err: fmt.Errorf("empty image")}
	}

	targetW, targetH := fitWithin(width, height, e.maxEdge)

	// Flatten alpha and palettes onto white so JPEG stays clean.
	flat := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	if targetW == width && targetH == height {
		xdraw.Draw(flat, flat.Bounds(), src, bounds.Min, xdraw.Over)
	} else {
		xdraw.CatmullRom.Scale(flat, flat.Bounds(), src, bounds, xdraw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: e.quality}); err != nil {
		return "", &PreprocessingError{Err: err}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DataURL wraps base64 JPEG content as an inline data URL.
func DataURL(b64 string) string {
	return "data:image/jpeg;base64," + b64
}

// fitWithin shrinks (never grows) dimensions so max(w,h) <= maxEdge,
// preserving the aspect ratio.
func fitWithin(width, height, maxEdge int) (int, int) {
	if maxEdge <= 0 || (width <= maxEdge && height <= maxEdge) {
		return width, height
	}
	if width >= height {
		scaled := height * maxEdge / width
		if scaled < 1 {
			scaled = 1
		}
		return maxEdge, scaled
	}
	scaled := width * maxEdge / height
	if scaled < 1 {
		scaled = 1
	}
	return scaled, maxEdge
}
