package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"mnist-dashboard/internal/core/domain"
	"mnist-dashboard/internal/core/ports/output"
	"mnist-dashboard/internal/mnist"
)

type DatasetOptions struct {
	VerifyChecksums bool
	TrainLimit      int
	TestLimit       int
}

// invalidator is implemented by caching sources that can drop a bad copy.
type invalidator interface {
	Invalidate(name string) error
}

type DatasetService struct {
	source ports.DatasetSource
	opts   DatasetOptions
}

func NewDatasetService(source ports.DatasetSource, opts DatasetOptions) *DatasetService {
	return &DatasetService{source: source, opts: opts}
}

// Load fetches and decodes both splits. Any failure is reported as ErrDataUnavailable.
func (s *DatasetService) Load(ctx context.Context) (*domain.Dataset, error) {
	logger := log.WithField("source", s.source.Name())
	logger.Info("loading dataset")

	train, err := s.loadSplit(ctx, mnist.TrainImages, mnist.TrainLabels, s.opts.TrainLimit)
	if err != nil {
		return nil, err
	}
	test, err := s.loadSplit(ctx, mnist.TestImages, mnist.TestLabels, s.opts.TestLimit)
	if err != nil {
		return nil, err
	}

	logger.WithFields(log.Fields{
		"train": len(train),
		"test":  len(test),
	}).Info("dataset loaded")

	return &domain.Dataset{Train: train, Test: test}, nil
}

func (s *DatasetService) loadSplit(ctx context.Context, imgFile, lblFile mnist.File, limit int) ([]domain.ImageSample, error) {
	var images *mnist.Images
	err := s.withFile(ctx, imgFile, func(r io.Reader) error {
		var err error
		images, err = mnist.DecodeImages(r, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if images.Rows != domain.ImageRows || images.Cols != domain.ImageCols {
		return nil, fmt.Errorf("%w: %s has %dx%d images", domain.ErrDataUnavailable, imgFile.Name, images.Rows, images.Cols)
	}

	var labels []byte
	err = s.withFile(ctx, lblFile, func(r io.Reader) error {
		var err error
		labels, err = mnist.DecodeLabels(r, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(labels) != images.Count {
		return nil, fmt.Errorf("%w: %d images but %d labels", domain.ErrDataUnavailable, images.Count, len(labels))
	}

	samples := make([]domain.ImageSample, images.Count)
	for i := range samples {
		sample, err := domain.NewImageSample(images.Image(i), int(labels[i]))
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d: %w", domain.ErrDataUnavailable, i, err)
		}
		samples[i] = sample
	}
	return samples, nil
}

func (s *DatasetService) withFile(ctx context.Context, f mnist.File, decode func(io.Reader) error) error {
	rc, err := s.source.Open(ctx, f.Name)
	if err != nil {
		return fmt.Errorf("%w: fetch %s: %w", domain.ErrDataUnavailable, f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", domain.ErrDataUnavailable, f.Name, err)
	}

	if s.opts.VerifyChecksums {
		if err := f.Verify(data); err != nil {
			s.invalidate(f.Name)
			return fmt.Errorf("%w: %w: %w", domain.ErrDataUnavailable, domain.ErrChecksumMismatch, err)
		}
	}

	if err := decode(bytes.NewReader(data)); err != nil {
		s.invalidate(f.Name)
		return fmt.Errorf("%w: decode %s: %w", domain.ErrDataUnavailable, f.Name, err)
	}
	return nil
}

func (s *DatasetService) invalidate(name string) {
	inv, ok := s.source.(invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(name); err != nil {
		log.WithError(err).WithField("file", name).Warn("failed to drop cached dataset file")
	}
}
