package mnist

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	magicLabels = 0x00000801
	magicImages = 0x00000803

	// MaxItems bounds the item count a header may declare.
	MaxItems = 60000
	// MaxImageBytes bounds rows*cols of a single image.
	MaxImageBytes = 28 * 28
)

var (
	ErrBadMagic  = errors.New("idx: unexpected magic number")
	ErrBadHeader = errors.New("idx: implausible header")
	ErrTruncated = errors.New("idx: truncated payload")
	ErrChecksum  = errors.New("idx: checksum mismatch")
	ErrLabel     = errors.New("idx: label out of range")
)

// Images is a decoded image file. Pixels holds Count*Rows*Cols bytes, row-major.
type Images struct {
	Count  int
	Rows   int
	Cols   int
	Pixels []byte
}

// Image returns the raw bytes of image i.
func (im *Images) Image(i int) []byte {
	size := im.Rows * im.Cols
	return im.Pixels[i*size : (i+1)*size]
}

// DecodeImages reads a gzip-compressed IDX3 image file. A positive limit keeps
// only the first limit images.
func DecodeImages(r io.Reader, limit int) (*Images, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()

	var hdr struct {
		Magic, Count, Rows, Cols uint32
	}
	if err := binary.Read(zr, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if hdr.Magic != magicImages {
		return nil, fmt.Errorf("%w: %#x", ErrBadMagic, hdr.Magic)
	}

	if hdr.Count > MaxItems {
		return nil, fmt.Errorf("%w: %d images exceeds %d", ErrBadHeader, hdr.Count, MaxItems)
	}
	if hdr.Rows == 0 || hdr.Cols == 0 || uint64(hdr.Rows)*uint64(hdr.Cols) > MaxImageBytes {
		return nil, fmt.Errorf("%w: %dx%d images", ErrBadHeader, hdr.Rows, hdr.Cols)
	}

	count := clampCount(int(hdr.Count), limit)
	size := int(hdr.Rows) * int(hdr.Cols)
	pixels, err := readExactly(zr, count*size)
	if err != nil {
		return nil, fmt.Errorf("%w: %d images of %d bytes: %v", ErrTruncated, count, size, err)
	}

	return &Images{Count: count, Rows: int(hdr.Rows), Cols: int(hdr.Cols), Pixels: pixels}, nil
}

// DecodeLabels reads a gzip-compressed IDX1 label file. Labels above 9 are rejected.
func DecodeLabels(r io.Reader, limit int) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()

	var hdr struct {
		Magic, Count uint32
	}
	if err := binary.Read(zr, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrTruncated, err)
	}
	if hdr.Magic != magicLabels {
		return nil, fmt.Errorf("%w: %#x", ErrBadMagic, hdr.Magic)
	}

	if hdr.Count > MaxItems {
		return nil, fmt.Errorf("%w: %d labels exceeds %d", ErrBadHeader, hdr.Count, MaxItems)
	}

	n := clampCount(int(hdr.Count), limit)
	labels, err := readExactly(zr, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %d labels: %v", ErrTruncated, n, err)
	}
	for i, l := range labels {
		if l > 9 {
			return nil, fmt.Errorf("%w: label %d at %d", ErrLabel, l, i)
		}
	}
	return labels, nil
}

// EncodeImages writes images in the gzip-compressed IDX3 format.
func EncodeImages(images [][]byte, rows, cols int) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	hdr := []uint32{magicImages, uint32(len(images)), uint32(rows), uint32(cols)}
	if err := binary.Write(zw, binary.BigEndian, hdr); err != nil {
		return nil, err
	}
	for _, img := range images {
		if _, err := zw.Write(img); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeLabels writes labels in the gzip-compressed IDX1 format.
func EncodeLabels(labels []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := binary.Write(zw, binary.BigEndian, []uint32{magicLabels, uint32(len(labels))}); err != nil {
		return nil, err
	}
	if _, err := zw.Write(labels); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readExactly reads n bytes, growing the buffer with the data actually present
// rather than allocating n up front.
func readExactly(r io.Reader, n int) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, err
	}
	if len(buf) < n {
		return nil, fmt.Errorf("got %d of %d bytes: %w", len(buf), n, io.ErrUnexpectedEOF)
	}
	return buf, nil
}

func clampCount(count, limit int) int {
	if limit > 0 && limit < count {
		return limit
	}
	return count
}
