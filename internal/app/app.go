// Package app drives the capture, detect, localize, export loop.
package app

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ayusman/handfuse/internal/capture"
	"github.com/ayusman/handfuse/internal/detector"
	"github.com/ayusman/handfuse/internal/export"
	"github.com/ayusman/handfuse/internal/hand"
)

var (
	// ErrStopped is returned by Run once the driver has released its resources.
	ErrStopped = errors.New("driver stopped")
	// ErrRunning is returned by Run when another Run is in progress.
	ErrRunning = errors.New("driver already running")
)

// Config holds the driver options.
type Config struct {
	// Mirror says whether the detector sees a mirrored image. It decides how
	// the detector's handedness maps to physical left and right.
	Mirror hand.MirrorPolicy
}

// Stats are running counters for one driver.
type Stats struct {
	Serial         string `json:"serial,omitempty"`
	Mirror         string `json:"mirror"`
	Running        bool   `json:"running"`
	Cycles         uint64 `json:"cycles"`
	Desyncs        uint64 `json:"desyncs"`
	ReadErrors     uint64 `json:"read_errors"`
	DetectorErrors uint64 `json:"detector_errors"`
	ExportErrors   uint64 `json:"export_errors"`
	HandsEmitted   uint64 `json:"hands_emitted"`
	HandsDropped   uint64 `json:"hands_dropped"`
}

// Driver owns one frame source, one detector and one exporter, and runs
// exactly one frame through them at a time.
type Driver struct {
	config   Config
	source   capture.Source
	detector detector.Detector
	exporter export.Exporter
	logger   *zap.SugaredLogger

	// serial is resolved once; empty when the source cannot identify itself.
	serial string

	stopped     atomic.Bool
	sourceOnce  sync.Once
	sourceErr   error
	releaseOnce sync.Once
	releaseErr  error

	mu       sync.Mutex
	running  bool
	released bool
	stats    Stats
}

// New creates a Driver. It takes ownership of src, det and exp: they are
// released exactly once when the driver stops, or before New returns an error.
func New(cfg Config, src capture.Source, det detector.Detector, exp export.Exporter, logger *zap.SugaredLogger) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var missing error
	if src == nil {
		missing = multierr.Append(missing, errors.New("nil frame source"))
	}
	if det == nil {
		missing = multierr.Append(missing, errors.New("nil detector"))
	}
	if exp == nil {
		missing = multierr.Append(missing, errors.New("nil exporter"))
	}
	if missing != nil {
		if src != nil {
			missing = multierr.Append(missing, src.Close())
		}
		if det != nil {
			missing = multierr.Append(missing, det.Close())
		}
		if exp != nil {
			missing = multierr.Append(missing, exp.Close())
		}
		return nil, missing
	}

	d := &Driver{
		config:   cfg,
		source:   src,
		detector: det,
		exporter: exp,
	}
	if id, ok := src.(capture.Identified); ok {
		d.serial = id.Serial()
	}
	d.logger = logger.With("serial", d.serial, "mirror", cfg.Mirror.String())
	d.stats.Serial = d.serial
	d.stats.Mirror = cfg.Mirror.String()

	return d, nil
}

// Serial returns the device serial, or "" when the source has none.
func (d *Driver) Serial() string {
	return d.serial
}

// Stop asks a running loop to end by closing the frame source. A Next call
// blocked on the device returns and Run releases everything else. Stop does
// not wait for Run to return.
//
// On a driver that is not running, Stop releases the source, detector and
// exporter itself, and any later Run returns ErrStopped.
func (d *Driver) Stop() {
	d.stopped.Store(true)

	d.mu.Lock()
	idle := !d.running
	if idle {
		d.released = true
	}
	d.mu.Unlock()

	if idle {
		_ = d.release()
		return
	}
	if err := d.closeSource(); err != nil {
		d.logger.Warnw("closing frame source", "error", err)
	}
}

// Stats returns a snapshot of the counters.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Driver) closeSource() error {
	d.sourceOnce.Do(func() {
		d.sourceErr = d.source.Close()
	})
	return d.sourceErr
}

// release closes the source, detector and exporter once.
func (d *Driver) release() error {
	d.releaseOnce.Do(func() {
		d.mu.Lock()
		d.released = true
		d.running = false
		d.stats.Running = false
		d.mu.Unlock()

		d.releaseErr = multierr.Combine(
			d.closeSource(),
			d.detector.Close(),
			d.exporter.Close(),
		)
		if d.releaseErr != nil {
			d.logger.Warnw("released with errors", "error", d.releaseErr)
			return
		}
		d.logger.Info("released")
	})
	return d.releaseErr
}
