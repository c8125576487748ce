package status

import (
	"context"
	"io"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📈 LogTracker reports progress through the context logger. It logs at most
// once per `every` processed items so large batches do not flood the log.
type LogTracker struct {
	formatter ProgressFormatter
	every     int

	mu        sync.Mutex
	total     int
	processed int
}

// 🏭 NewLogTracker creates a tracker that logs every n items (n < 1 means
// only start and finish are logged)
func NewLogTracker(every int) *LogTracker {
	return &LogTracker{formatter: NewDefaultFormatter(), every: every}
}

func (t *LogTracker) StartOperation(ctx context.Context, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total = total
	t.processed = 0
	zerolog.Ctx(ctx).Info().Int("total", total).Msg(t.formatter.FormatProgress(0, total))
}

func (t *LogTracker) UpdateProgress(ctx context.Context, processed int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if processed <= t.processed {
		return
	}
	t.processed = processed
	if t.every < 1 || processed%t.every != 0 || processed == t.total {
		return
	}
	zerolog.Ctx(ctx).Info().
		Int("processed", processed).
		Int("total", t.total).
		Msg(t.formatter.FormatProgress(processed, t.total))
}

func (t *LogTracker) FinishOperation(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	zerolog.Ctx(ctx).Info().
		Int("processed", t.processed).
		Int("total", t.total).
		Msg(t.formatter.FormatProgress(t.processed, t.total))
}

// Processed is the highest progress value seen.
func (t *LogTracker) Processed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processed
}

// 📊 BarTracker draws a pterm progress bar. Updates from several workers are
// folded into monotonic increments.
type BarTracker struct {
	title  string
	writer io.Writer

	mu   sync.Mutex
	bar  *pterm.ProgressbarPrinter
	last int
}

// 🏭 NewBarTracker creates a progress bar tracker writing to w
func NewBarTracker(title string, w io.Writer) *BarTracker {
	return &BarTracker{title: title, writer: w}
}

func (t *BarTracker) StartOperation(ctx context.Context, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(t.title).
		WithWriter(t.writer).
		WithRemoveWhenDone(false).
		Start()
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("starting progress bar")
		return
	}
	t.bar = bar
	t.last = 0
}

func (t *BarTracker) UpdateProgress(ctx context.Context, processed int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bar == nil || processed <= t.last {
		return
	}
	t.bar.Add(processed - t.last)
	t.last = processed
}

func (t *BarTracker) FinishOperation(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bar == nil {
		return
	}
	if _, err := t.bar.Stop(); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("stopping progress bar")
	}
	t.bar = nil
}
