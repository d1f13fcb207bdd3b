package sender

import (
	"context"
	"fmt"
)

// CancelPoller reports whether the user asked to stop. It must not block for
// longer than a short poll interval.
type CancelPoller func() bool

// BatchOptions configures SendBatch.
type BatchOptions struct {
	// Cancel is polled before each line.
	Cancel CancelPoller

	// OnProgress is called before each line with its 1-based index.
	OnProgress func(index, total int, line string)
}

// BatchResult summarizes a batch.
type BatchResult struct {
	Sent      int
	Total     int
	Cancelled bool
}

// SendBatch sends lines in order, pausing NextLine after each successful
// line. Cancellation is checked only between lines; a started line always
// completes. The first failed line stops the batch.
func (s *Sender) SendBatch(ctx context.Context, lines []string, title string, opts BatchOptions) (BatchResult, error) {
	res := BatchResult{Total: len(lines)}
	s.log.Info().Int("lines", len(lines)).Str("window", title).Msg("Sender: batch started")

	for i, line := range lines {
		if ctx.Err() != nil || (opts.Cancel != nil && opts.Cancel()) {
			res.Cancelled = true
			s.log.Info().Int("sent", res.Sent).Msg("Sender: batch cancelled")
			return res, nil
		}

		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(lines), line)
		}

		if err := s.SendLine(line, title); err != nil {
			return res, fmt.Errorf("line %d of %d: %w", i+1, len(lines), err)
		}
		res.Sent++

		s.sleep(s.delays.NextLine)
	}

	s.log.Info().Int("sent", res.Sent).Msg("Sender: batch finished")
	return res, nil
}
