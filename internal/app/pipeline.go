package app

import (
	"errors"

	"github.com/ayusman/handfuse/internal/capture"
	"github.com/ayusman/handfuse/internal/export"
	"github.com/ayusman/handfuse/internal/localize"
)

// Run processes frames until the source ends, then releases the source,
// detector and exporter and returns any release error.
//
// Each cycle:
//  1. Wait for the next color+depth pair. End of stream stops the loop; a
//     desynchronized or unreadable pair skips the cycle.
//  2. Detect hands in the color image. A detector failure skips the cycle.
//  3. Localize every detection against the depth map.
//  4. Export the hands. An export failure is logged and the loop goes on.
//
// Next blocks without a timeout, so a stalled sensor stalls Run until Stop.
func (d *Driver) Run() (err error) {
	d.mu.Lock()
	switch {
	case d.released:
		d.mu.Unlock()
		return ErrStopped
	case d.running:
		d.mu.Unlock()
		return ErrRunning
	}
	d.running = true
	d.stats.Running = true
	d.mu.Unlock()

	defer func() {
		if rerr := d.release(); err == nil {
			err = rerr
		}
	}()

	d.logger.Info("driver running")
	for {
		frame, err := d.source.Next()
		if err != nil {
			if errors.Is(err, capture.ErrStreamEnd) || d.stopped.Load() {
				if err != capture.ErrStreamEnd && !d.stopped.Load() {
					d.logger.Warnw("stream ended early", "cycles", d.Stats().Cycles, "error", err)
				} else {
					d.logger.Infow("stream ended", "cycles", d.Stats().Cycles)
				}
				return nil
			}
			d.skip(err)
			continue
		}

		d.cycle(frame)
		frame.Close()
	}
}

// skip accounts for a cycle that produced no frame pair.
func (d *Driver) skip(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if errors.Is(err, capture.ErrFrameDesync) {
		d.stats.Desyncs++
		d.logger.Debugw("skipping desynchronized frame", "error", err)
		return
	}
	d.stats.ReadErrors++
	d.logger.Warnw("skipping unreadable frame", "error", err)
}

func (d *Driver) cycle(frame *capture.Frame) {
	d.mu.Lock()
	d.stats.Cycles++
	seq := d.stats.Cycles
	d.mu.Unlock()

	res, err := d.detector.Detect(frame.Color)
	if err != nil {
		d.mu.Lock()
		d.stats.DetectorErrors++
		d.mu.Unlock()
		d.logger.Warnw("hand detection failed", "seq", seq, "error", err)
		return
	}

	hands, report := localize.Localize(frame.Depth, res, d.config.Mirror)

	d.mu.Lock()
	d.stats.HandsEmitted += uint64(report.Emitted)
	d.stats.HandsDropped += uint64(report.Dropped())
	d.mu.Unlock()
	if report.Dropped() > 0 {
		d.logger.Debugw("dropped hands",
			"seq", seq,
			"detections", report.Detections,
			"out_of_bounds", report.OutOfBounds,
			"unclassified", report.Unclassified,
		)
	}

	err = d.exporter.Export(export.Cycle{
		Seq:    seq,
		Frame:  frame,
		Hands:  hands,
		Serial: d.serial,
	})
	if err != nil {
		d.mu.Lock()
		d.stats.ExportErrors++
		d.mu.Unlock()
		d.logger.Warnw("export failed", "seq", seq, "error", err)
	}
}
