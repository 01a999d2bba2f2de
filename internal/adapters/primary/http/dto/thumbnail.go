package dto

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"mnist-dashboard/internal/core/domain"
)

// Thumbnail renders a sample as a grayscale PNG.
func Thumbnail(s domain.ImageSample) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, domain.ImageCols, domain.ImageRows))
	for y := 0; y < domain.ImageRows; y++ {
		for x := 0; x < domain.ImageCols; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(s.At(y, x)*255 + 0.5)})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailBase64 returns the PNG thumbnail as standard base64.
func ThumbnailBase64(s domain.ImageSample) (string, error) {
	data, err := Thumbnail(s)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
