package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tghelper/quizbank/internal/domain/question"
)

// FailureMarker is stored as the analysis of a question the service could
// not explain, so the run does not retry it forever.
const FailureMarker = "解析失败"

// Event reports the handling of one question. Index is 0-based.
type Event struct {
	Index  int
	Total  int
	Status Status
}

type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusExplained Status = "explained"
	StatusFailed    Status = "failed"
)

// Report counts what a run did.
type Report struct {
	Total     int `json:"total"`
	Skipped   int `json:"skipped"`
	Explained int `json:"explained"`
	Failed    int `json:"failed"`
}

// Worker explains every question without an analysis, one at a time, and
// checkpoints the whole bank through Save.
type Worker struct {
	Annotator Annotator
	// Save overwrites the bank document with the current questions.
	Save func([]question.Question) error
	// CheckpointEvery saves after that many completed questions. Zero
	// disables intermediate saves.
	CheckpointEvery int
	Logger          *slog.Logger
	OnProgress      func(Event)
}

// Run updates qs in place. Cancellation is checked before each remaining
// question; a cancelled run still saves what it has and returns ctx.Err().
func (w *Worker) Run(ctx context.Context, qs []question.Question) (Report, error) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	report := Report{Total: len(qs)}
	completed := 0

	var runErr error
	for i := range qs {
		if qs[i].HasAnalysis() {
			report.Skipped++
			w.emit(i, len(qs), StatusSkipped)
			continue
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		text, err := w.Annotator.Explain(ctx, qs[i])
		if err != nil && ctx.Err() != nil {
			runErr = ctx.Err()
			break
		}
		if err != nil {
			logger.Warn("explanation failed", "question_id", qs[i].ID, "error", err)
			qs[i].Analysis = FailureMarker
			report.Failed++
			w.emit(i, len(qs), StatusFailed)
		} else {
			qs[i].Analysis = text
			report.Explained++
			w.emit(i, len(qs), StatusExplained)
		}

		completed++
		if w.CheckpointEvery > 0 && completed%w.CheckpointEvery == 0 {
			if err := w.Save(qs); err != nil {
				logger.Error("checkpoint failed", "completed", completed, "error", err)
			}
		}
	}

	if err := w.Save(qs); err != nil {
		return report, errors.Join(runErr, fmt.Errorf("final save: %w", err))
	}
	return report, runErr
}

func (w *Worker) emit(i, total int, s Status) {
	if w.OnProgress != nil {
		w.OnProgress(Event{Index: i, Total: total, Status: s})
	}
}
