// Package imaging prepares listing photos before upload: an optional
// rectangular crop, a bounded downscale, and an iterative JPEG re-encode that
// walks quality down until the result fits the size target.
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"hiawto/pkg/errors"
)

const (
	startQuality = 90
	qualityStep  = 10
	floorQuality = 30
)

// CropRect is a pixel-bound crop request.
type CropRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width" validate:"gte=1"`
	Height int `json:"height" validate:"gte=1"`
}

// Decode parses an uploaded JPEG or PNG photo.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.BadRequest("Unsupported or corrupt image", err)
	}
	return img, nil
}

// Crop cuts rect out of img. The rect is clamped to the image bounds; an empty
// intersection is an error.
func Crop(img image.Image, rect CropRect) (image.Image, error) {
	bounds := img.Bounds()
	crop := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height).Intersect(bounds)
	if crop.Empty() {
		return nil, errors.BadRequest("Crop rectangle is outside the image", nil)
	}

	out := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	xdraw.Copy(out, image.Point{}, img, crop, xdraw.Src, nil)
	return out, nil
}

// Downscale limits the longest edge to maxDim, preserving aspect ratio.
// Images already within bounds are returned unchanged.
func Downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	var newW, newH int
	if w >= h {
		newW = maxDim
		newH = h * maxDim / w
	} else {
		newH = maxDim
		newW = w * maxDim / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(out, out.Bounds(), img, bounds, xdraw.Src, nil)
	return out
}

// CompressJPEG re-encodes img starting at quality 0.9 and stepping down by 0.1
// until the payload fits targetBytes or the 0.3 floor is reached. The floor
// result is returned even when it exceeds the target, so the loop always
// terminates within seven encodes.
func CompressJPEG(img image.Image, targetBytes int64) ([]byte, int, error) {
	var buf bytes.Buffer

	for quality := startQuality; ; quality -= qualityStep {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, 0, errors.Internal("Failed to encode JPEG", err)
		}

		if targetBytes <= 0 || int64(buf.Len()) <= targetBytes || quality <= floorQuality {
			return buf.Bytes(), quality, nil
		}
	}
}
