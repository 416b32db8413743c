package ocr

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "image/jpeg"
	_ "image/png"
)

// Preprocessing constants: scale up small photos (bounded), then stretch
// contrast linearly around the midpoint to sharpen faded print.
const (
	maxScale       = 2.0
	maxWidthPx     = 2600
	contrastFactor = 1.45
	contrastPivot  = 128.0

	lumR = 0.299
	lumG = 0.587
	lumB = 0.114
)

// EnhanceContrast decodes the image at path, produces a contrast-enhanced
// grayscale variant and writes it as a PNG under tmpDir. The caller removes
// the file via cleanup.
func EnhanceContrast(path, tmpDir string) (outPath string, cleanup func(), err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}

	scaled := scaleUp(src)
	gray := contrastGray(scaled)

	out, err := os.CreateTemp(tmpDir, "cardscan-enhanced-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("temp file: %w", err)
	}
	cleanup = func() { _ = os.Remove(out.Name()) }
	if err := png.Encode(out, gray); err != nil {
		_ = out.Close()
		cleanup()
		return "", nil, fmt.Errorf("encode png: %w", err)
	}
	if err := out.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return out.Name(), cleanup, nil
}

// scaleUp enlarges the image up to 2x, bounded by the max width.
func scaleUp(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	scale := maxScale
	if float64(w)*scale > maxWidthPx {
		scale = maxWidthPx / float64(w)
	}
	if scale <= 1.0 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

// contrastGray converts to luminance grayscale and applies a linear contrast
// stretch around the midpoint, clamped to [0,255].
func contrastGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := src.At(x, y).RGBA()
			lum := lumR*float64(r>>8) + lumG*float64(g>>8) + lumB*float64(bb>>8)
			v := contrastPivot + (lum-contrastPivot)*contrastFactor
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: uint8(v)})
		}
	}
	return dst
}
