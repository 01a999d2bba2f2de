// Package metrics aggregates training throughput for progress logging.
package metrics

import "time"

// Window accumulates timing stats across epochs.
type Window struct {
	samples  int
	prepare  time.Duration
	fit      time.Duration
	epochs   int
	lastLoss float64
}

// Record adds one epoch measurement to the window.
func (w *Window) Record(samples int, prepareTime, fitTime time.Duration, loss float64) {
	w.samples += samples
	w.prepare += prepareTime
	w.fit += fitTime
	w.epochs++
	w.lastLoss = loss
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{}
	total := w.prepare + w.fit
	if total > 0 {
		snap.SamplesPerSec = float64(w.samples) / total.Seconds()
	}
	if w.epochs > 0 {
		snap.AvgPrepareMS = (w.prepare.Seconds() * 1000) / float64(w.epochs)
		snap.AvgFitMS = (w.fit.Seconds() * 1000) / float64(w.epochs)
	}
	snap.LastLoss = w.lastLoss

	*w = Window{}
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	SamplesPerSec float64
	AvgPrepareMS  float64
	AvgFitMS      float64
	LastLoss      float64
}
