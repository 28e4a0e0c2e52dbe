package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/fwojciec/casedoc"
)

// classify converts a viewer error into a classified *casedoc.Error.
// Expired per-operation deadlines become ETIMEOUT; application errors keep
// their code; anything else takes the fallback code.
func classify(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var e *casedoc.Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return casedoc.Errorf(casedoc.ETIMEOUT, "%v", err)
	}
	return casedoc.Errorf(fallback, "%v", err)
}

// errorRun counts consecutive viewer operation failures.
type errorRun struct {
	limit int
	count int
}

func newErrorRun(limit int) *errorRun {
	if limit < 1 {
		limit = 1
	}
	return &errorRun{limit: limit}
}

// record counts err and returns a classified error when stepping should
// stop: the context is done or the limit was reached.
func (r *errorRun) record(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return classify(ctx.Err(), casedoc.ETIMEOUT)
	}
	r.count++
	if r.count >= r.limit {
		return classify(err, casedoc.ENAVIGATION)
	}
	return nil
}

func (r *errorRun) reset() {
	r.count = 0
}

// belowFloor reports whether got is under ratio of expected.
func belowFloor(got, expected int, ratio float64) bool {
	if expected <= 0 {
		return false
	}
	return float64(got) < ratio*float64(expected)
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
