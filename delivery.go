package webmfix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Sink receives finished recordings, for example a download service or a
// directory on disk.
type Sink interface {
	Deliver(ctx context.Context, name string, data []byte) error
}

// Fixer sits between a recorder and a Sink: it repairs each finished
// recording and hands it on, logging what it did.
type Fixer struct {
	logger *slog.Logger
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithLogger sets the logger used to report each repair.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fixer) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFixer returns a Fixer. Without WithLogger it logs nothing.
func NewFixer(opts ...Option) *Fixer {
	f := &Fixer{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Repair fixes buf in place and logs the outcome. When elapsed is positive
// it is written as the Duration; otherwise the stored Duration is rescaled.
// The returned error is informational: buf is always safe to deliver.
func (f *Fixer) Repair(name string, buf []byte, elapsed time.Duration) (Result, error) {
	var (
		res Result
		err error
	)
	if elapsed > 0 {
		res, err = FixElapsed(buf, elapsed)
	} else {
		res, err = Fix(buf)
	}

	logger := f.logger.With(slog.String("file", name), slog.Int("bytes", len(buf)))
	switch {
	case err == nil:
		logger.Info("duration repaired",
			slog.Float64("previous", res.Previous),
			slog.Float64("duration", res.Duration),
			slog.Uint64("timecode_scale", res.TimecodeScale),
			slog.Int("offset", res.Offset),
			slog.Int("width", res.Width),
			slog.Bool("changed", res.Changed),
		)
	case errors.Is(err, ErrMissingMetadata):
		logger.Info("duration metadata absent, left unchanged", slog.String("reason", err.Error()))
	default:
		logger.Warn("container not parseable, left unchanged", slog.String("error", err.Error()))
	}
	return res, err
}

// Deliver repairs buf and passes it to sink. The recording is delivered
// whether or not the repair succeeded; only cancellation or a sink failure
// is returned as an error. The Result reports what the repair did.
func (f *Fixer) Deliver(ctx context.Context, sink Sink, name string, buf []byte, elapsed time.Duration) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res, _ := f.Repair(name, buf, elapsed)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := sink.Deliver(ctx, name, buf); err != nil {
		return res, fmt.Errorf("deliver %s: %w", name, err)
	}
	return res, nil
}
