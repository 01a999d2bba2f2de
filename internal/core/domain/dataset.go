package domain

// Reference split sizes of the MNIST dataset.
const (
	ReferenceTrainSize = 60000
	ReferenceTestSize  = 10000
)

// Dataset holds the disjoint train and test splits.
type Dataset struct {
	Train []ImageSample
	Test  []ImageSample
}

// Validate checks every sample of both splits.
func (d *Dataset) Validate() error {
	for _, split := range [][]ImageSample{d.Train, d.Test} {
		for _, s := range split {
			if err := s.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
