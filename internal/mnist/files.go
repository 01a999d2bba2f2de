// Package mnist reads the MNIST handwritten-digit dataset in its published
// gzip-compressed IDX format.
package mnist

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// File is one of the four published dataset files.
type File struct {
	Name   string
	Digest string // sha256 of the compressed file
	Images bool
	Train  bool
}

var (
	TrainImages = File{
		Name:   "train-images-idx3-ubyte.gz",
		Digest: "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
		Images: true,
		Train:  true,
	}
	TrainLabels = File{
		Name:   "train-labels-idx1-ubyte.gz",
		Digest: "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
		Train:  true,
	}
	TestImages = File{
		Name:   "t10k-images-idx3-ubyte.gz",
		Digest: "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
		Images: true,
	}
	TestLabels = File{
		Name:   "t10k-labels-idx1-ubyte.gz",
		Digest: "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
	}
)

// Files returns the four dataset files in download order.
func Files() []File {
	return []File{TrainImages, TrainLabels, TestImages, TestLabels}
}

// Verify compares the sha256 of data against the published digest.
func (f File) Verify(data []byte) error {
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != f.Digest {
		return fmt.Errorf("%w: %s has digest %s, want %s", ErrChecksum, f.Name, got, f.Digest)
	}
	return nil
}
