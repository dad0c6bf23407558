package enrich_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/enrich"
)

// fakeAnnotator explains every question as "why <id>" and fails the ids in
// fail. After calls reaches cancelAfter it cancels the run.
type fakeAnnotator struct {
	fail        map[int]bool
	calls       int
	cancelAfter int
	cancel      context.CancelFunc
}

func (f *fakeAnnotator) Explain(ctx context.Context, q question.Question) (string, error) {
	f.calls++
	if f.cancel != nil && f.calls == f.cancelAfter {
		f.cancel()
	}
	if f.fail[q.ID] {
		return "", &enrich.AnnotateError{Reason: "boom"}
	}
	return fmt.Sprintf("why %d", q.ID), nil
}

type saver struct {
	snapshots [][]question.Question
	err       error
}

func (s *saver) Save(qs []question.Question) error {
	cp := make([]question.Question, len(qs))
	copy(cp, qs)
	s.snapshots = append(s.snapshots, cp)
	return s.err
}

func bank(n int, explained ...int) []question.Question {
	qs := make([]question.Question, n)
	for i := range qs {
		qs[i] = question.Question{ID: i + 1, Type: question.TypeFillBlank}
	}
	for _, id := range explained {
		qs[id-1].Analysis = "already"
	}
	return qs
}

func TestWorker_Run(t *testing.T) {
	qs := bank(7, 2)
	ann := &fakeAnnotator{fail: map[int]bool{4: true}}
	s := &saver{}
	var events []enrich.Event

	w := &enrich.Worker{
		Annotator:       ann,
		Save:            s.Save,
		CheckpointEvery: 5,
		OnProgress:      func(e enrich.Event) { events = append(events, e) },
	}
	report, err := w.Run(context.Background(), qs)

	require.NoError(t, err)
	assert.Equal(t, enrich.Report{Total: 7, Skipped: 1, Explained: 5, Failed: 1}, report)
	assert.Equal(t, 6, ann.calls, "explained questions are not sent again")
	assert.Equal(t, "already", qs[1].Analysis)
	assert.Equal(t, enrich.FailureMarker, qs[3].Analysis)
	assert.Equal(t, "why 7", qs[6].Analysis)
	assert.Len(t, events, 7)

	// One checkpoint after five completions, then the final save.
	require.Len(t, s.snapshots, 2)
	assert.Equal(t, "why 6", s.snapshots[0][5].Analysis)
	assert.Equal(t, "", s.snapshots[0][6].Analysis)
	assert.Equal(t, "why 7", s.snapshots[1][6].Analysis)
}

func TestWorker_CancelStillSaves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	qs := bank(5)
	ann := &fakeAnnotator{cancelAfter: 2, cancel: cancel}
	s := &saver{}

	w := &enrich.Worker{Annotator: ann, Save: s.Save, CheckpointEvery: 5}
	report, err := w.Run(ctx, qs)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, ann.calls)
	assert.Equal(t, 2, report.Explained)
	require.Len(t, s.snapshots, 1, "final checkpoint on cancellation")
	assert.Equal(t, "why 2", s.snapshots[0][1].Analysis)
	assert.Equal(t, "", s.snapshots[0][2].Analysis)
}

func TestWorker_FinalSaveError(t *testing.T) {
	s := &saver{err: errors.New("disk full")}
	w := &enrich.Worker{Annotator: &fakeAnnotator{}, Save: s.Save}

	_, err := w.Run(context.Background(), bank(1))

	assert.ErrorContains(t, err, "disk full")
}

func TestWorker_CheckpointErrorDoesNotStopRun(t *testing.T) {
	s := &saver{err: errors.New("locked")}
	w := &enrich.Worker{Annotator: &fakeAnnotator{}, Save: s.Save, CheckpointEvery: 1}

	report, err := w.Run(context.Background(), bank(3))

	assert.Error(t, err)
	assert.Equal(t, 3, report.Explained)
	assert.Len(t, s.snapshots, 4)
}
