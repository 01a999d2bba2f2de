package domain

import "fmt"

// Image geometry of the reference dataset.
const (
	ImageRows     = 28
	ImageCols     = 28
	ImageChannels = 1
	ImagePixels   = ImageRows * ImageCols * ImageChannels
	NumClasses    = 10
)

// ImageSample is a single-channel normalised grid and its class label.
// Pixels are row-major, length ImagePixels, each value in [0,1].
type ImageSample struct {
	Pixels []float32
	Label  int
}

// NewImageSample normalises raw 8-bit intensities into an ImageSample.
func NewImageSample(raw []byte, label int) (ImageSample, error) {
	if len(raw) != ImagePixels {
		return ImageSample{}, fmt.Errorf("%w: expected %d pixels, got %d", ErrInvalidSample, ImagePixels, len(raw))
	}
	if label < 0 || label >= NumClasses {
		return ImageSample{}, fmt.Errorf("%w: label %d out of range", ErrInvalidSample, label)
	}
	pixels := make([]float32, ImagePixels)
	for i, v := range raw {
		pixels[i] = float32(v) / 255.0
	}
	return ImageSample{Pixels: pixels, Label: label}, nil
}

// OneHot returns the label as a NumClasses vector.
func (s ImageSample) OneHot() []float32 {
	return OneHot(s.Label)
}

// At returns the intensity at row y, column x.
func (s ImageSample) At(y, x int) float32 {
	return s.Pixels[y*ImageCols+x]
}

// Validate checks the sample invariants.
func (s ImageSample) Validate() error {
	if len(s.Pixels) != ImagePixels {
		return fmt.Errorf("%w: expected %d pixels, got %d", ErrInvalidSample, ImagePixels, len(s.Pixels))
	}
	if s.Label < 0 || s.Label >= NumClasses {
		return fmt.Errorf("%w: label %d out of range", ErrInvalidSample, s.Label)
	}
	for i, v := range s.Pixels {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: pixel %d = %f outside [0,1]", ErrInvalidSample, i, v)
		}
	}
	return nil
}

// OneHot encodes label as a NumClasses vector with a single 1.
func OneHot(label int) []float32 {
	v := make([]float32, NumClasses)
	if label >= 0 && label < NumClasses {
		v[label] = 1
	}
	return v
}

// Argmax returns the index of the largest value, or -1 for an empty vector.
// Ties resolve to the lowest index.
func Argmax(v []float32) int {
	if len(v) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
