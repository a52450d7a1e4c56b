package shell

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/framehost/errors"
	"github.com/wippyai/framehost/runtime"
	"github.com/wippyai/framehost/surface"
)

// HeadlessOptions configures RunHeadless.
type HeadlessOptions struct {
	// Frames is the number of ticks to run. Zero runs until the guest stops.
	Frames int
	// Interval paces the ticks. Zero ticks back to back.
	Interval time.Duration
	// Snapshot is the PNG path written after the last tick, if set.
	Snapshot string
}

// RunHeadless ticks sess without a display. It stops after the configured
// frame count, when the guest stops, or when ctx is done. Capability faults
// are logged and do not end the run.
func RunHeadless(ctx context.Context, sess *runtime.Session, opts HeadlessOptions) error {
	var ticker *time.Ticker
	if opts.Interval > 0 {
		ticker = time.NewTicker(opts.Interval)
		defer ticker.Stop()
	}

	for frame := 0; opts.Frames == 0 || frame < opts.Frames; frame++ {
		if sess.State() == runtime.StateStopped {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sess.Tick(ctx); err != nil {
			Logger().Debug("tick error", zap.Int("frame", frame), zap.Error(err))
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}

	Logger().Info("headless run finished",
		zap.Uint64("ticks", sess.Ticks()),
		zap.Uint64("faults", sess.Faults()),
		zap.Stringer("state", sess.State()))

	if opts.Snapshot != "" {
		if err := WriteSnapshot(opts.Snapshot, sess.Surface()); err != nil {
			return err
		}
	}
	return sess.Err()
}

// WriteSnapshot writes the surface to path as PNG.
func WriteSnapshot(path string, surf *surface.Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.PhaseHost, errors.KindInvalidInput, err, "create snapshot")
	}
	if err := surf.WritePNG(f); err != nil {
		f.Close()
		return errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "encode snapshot")
	}
	return f.Close()
}
