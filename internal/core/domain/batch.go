package domain

// Batch is a contiguous block of samples packed for the training framework.
// Input holds Size*ImagePixels values, Target holds Size*NumClasses values.
type Batch struct {
	Input  []float32
	Target []float32
	Size   int
}

// PackBatches packs samples into full batches of size n. A trailing partial
// batch is dropped so every batch matches the network batch dimension.
func PackBatches(samples []ImageSample, n int) []Batch {
	if n <= 0 {
		return nil
	}
	count := len(samples) / n
	out := make([]Batch, 0, count)
	for b := 0; b < count; b++ {
		input := make([]float32, n*ImagePixels)
		target := make([]float32, n*NumClasses)
		for i := 0; i < n; i++ {
			s := samples[b*n+i]
			copy(input[i*ImagePixels:], s.Pixels)
			target[i*NumClasses+s.Label] = 1
		}
		out = append(out, Batch{Input: input, Target: target, Size: n})
	}
	return out
}
