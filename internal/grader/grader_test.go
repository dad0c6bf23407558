package grader_test

import (
	"testing"

	practicesession "github.com/tghelper/quizbank/internal/domain/practice_session"
	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/grader"
)

type answers map[int][]string

func (a answers) Answer(i int) []string {
	if v, ok := a[i]; ok {
		return v
	}
	return []string{}
}

func TestIsCorrect(t *testing.T) {
	single := question.Question{
		Type:          question.TypeSingleChoice,
		Options:       []string{"A. 开发项目", "B. 功能内聚"},
		CorrectAnswer: []string{"B. 功能内聚"},
	}
	multi := question.Question{
		Type:          question.TypeMultipleChoice,
		Options:       []string{"A. x", "B. y", "C. z"},
		CorrectAnswer: []string{"A. x", "C. z"},
	}
	fill := question.Question{Type: question.TypeFillBlank, CorrectAnswer: []string{"a", "b"}}
	unlabelled := question.Question{
		Type:          question.TypeSingleChoice,
		Options:       []string{"I agree", "agree"},
		CorrectAnswer: []string{"agree"},
	}
	sameText := question.Question{
		Type:          question.TypeSingleChoice,
		Options:       []string{"A. 是", "B. 是"},
		CorrectAnswer: []string{"A. 是"},
	}
	trueFalse := question.Question{
		Type:          question.TypeTrueFalse,
		Options:       []string{"正确", "错误"},
		CorrectAnswer: []string{"错误"},
	}

	tests := []struct {
		name   string
		q      question.Question
		answer []string
		want   bool
	}{
		{"single exact", single, []string{"B. 功能内聚"}, true},
		{"single wrong", single, []string{"A. 开发项目"}, false},
		{"single relabelled", single, []string{"D. 功能内聚"}, true},
		{"multi any order", multi, []string{"C. z", "A. x"}, true},
		{"multi duplicates", multi, []string{"A. x", "C. z", "A. x"}, true},
		{"multi subset", multi, []string{"A. x"}, false},
		{"multi superset", multi, []string{"A. x", "B. y", "C. z"}, false},
		{"unlabelled leading word kept", unlabelled, []string{"I agree"}, false},
		{"unlabelled exact", unlabelled, []string{" agree "}, true},
		{"duplicate texts keep labels", sameText, []string{"B. 是"}, false},
		{"true/false wrong", trueFalse, []string{"正确"}, false},
		{"true/false right", trueFalse, []string{"错误"}, true},
		{"fill exact", fill, []string{"a", "b"}, true},
		{"fill trims ends", fill, []string{" a ", "b\t"}, true},
		{"fill order matters", fill, []string{"b", "a"}, false},
		{"fill case sensitive", fill, []string{"A", "b"}, false},
		{"fill length differs", fill, []string{"a"}, false},
		{"unanswered", single, []string{}, false},
		{"unknown type", question.Question{Type: "论述题", CorrectAnswer: []string{"x"}}, []string{"x"}, false},
		{"unset type", question.Question{CorrectAnswer: []string{"x"}}, []string{"x"}, false},
		{"unresolved choice", question.Question{Type: question.TypeChoice, CorrectAnswer: []string{"x"}}, []string{"x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := grader.IsCorrect(tt.q, tt.answer); got != tt.want {
				t.Errorf("IsCorrect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCorrect_CorrectAnswerOrderIrrelevantForChoice(t *testing.T) {
	q := question.Question{
		Type:          question.TypeMultipleChoice,
		Options:       []string{"A. x", "B. y"},
		CorrectAnswer: []string{"A. x", "B. y"},
	}
	answer := []string{"A. x", "B. y"}
	before := grader.IsCorrect(q, answer)

	q.CorrectAnswer = []string{"B. y", "A. x"}
	if after := grader.IsCorrect(q, answer); after != before || !after {
		t.Errorf("swapping correct answers changed the result: before=%v after=%v", before, after)
	}
}

func TestGrade_TrueFalseWrongAnswerRecorded(t *testing.T) {
	qs := []question.Question{{
		ID:            7,
		Title:         "期末测试",
		Type:          question.TypeTrueFalse,
		Content:       "地球是圆的",
		Options:       []string{"正确", "错误"},
		CorrectAnswer: []string{"正确"},
	}}

	res := grader.Grade(qs, answers{0: {"错误"}})

	if res.CorrectCount != 0 || res.Score != 0 {
		t.Errorf("expected nothing correct, got %+v", res)
	}
	if len(res.Wrong) != 1 {
		t.Fatalf("expected one wrong question, got %d", len(res.Wrong))
	}
	w := res.Wrong[0]
	if w.ID != 1 {
		t.Errorf("expected 1-based position id 1, got %d", w.ID)
	}
	if len(w.UserAnswer) != 1 || w.UserAnswer[0] != "错误" {
		t.Errorf("user answer not recorded verbatim: %v", w.UserAnswer)
	}
	if len(w.CorrectAnswer) != 1 || w.CorrectAnswer[0] != "正确" {
		t.Errorf("correct answer not recorded verbatim: %v", w.CorrectAnswer)
	}
}

func TestGrade_Score(t *testing.T) {
	qs := make([]question.Question, 3)
	for i := range qs {
		qs[i] = question.Question{Type: question.TypeFillBlank, CorrectAnswer: []string{"x"}}
	}

	res := grader.Grade(qs, answers{0: {"x"}, 2: {"y"}})

	if res.CorrectCount != 1 || res.TotalQuestions != 3 {
		t.Errorf("unexpected counts %+v", res)
	}
	if res.Score != 33.3 {
		t.Errorf("expected score 33.3, got %v", res.Score)
	}
	if len(res.Wrong) != 2 {
		t.Errorf("expected the wrong and the unanswered question, got %d", len(res.Wrong))
	}
}

func TestGrade_NoQuestions(t *testing.T) {
	res := grader.Grade(nil, answers{})

	if res.Score != 0 {
		t.Errorf("expected score 0, got %v", res.Score)
	}
	if res.Wrong == nil {
		t.Error("expected an empty, non-nil wrong set")
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{0, 0, 0},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := grader.Score(tt.correct, tt.total); got != tt.want {
			t.Errorf("Score(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestGradeSession_IsIdempotent(t *testing.T) {
	qs := []question.Question{
		{Type: question.TypeSingleChoice, Options: []string{"A. x", "B. y"}, CorrectAnswer: []string{"A. x"}},
		{Type: question.TypeSingleChoice, Options: []string{"A. x", "B. y"}, CorrectAnswer: []string{"B. y"}},
	}
	s := practicesession.New("s", qs, false)
	s.SetAnswer(0, []string{"A. x"})

	first := grader.GradeSession(s)
	second := grader.GradeSession(s)

	if first.Score != second.Score || first.CorrectCount != second.CorrectCount || len(first.Wrong) != len(second.Wrong) {
		t.Errorf("grading twice differs: %+v vs %+v", first, second)
	}
	if first.Score != 50 {
		t.Errorf("expected 50, got %v", first.Score)
	}
	if got := s.Answer(1); len(got) != 0 {
		t.Errorf("grading must not write answers, got %v", got)
	}
}

func TestWrongQuestion_Canonical(t *testing.T) {
	w := grader.NewWrongQuestion(2, question.Question{
		Title:         "t",
		Type:          question.TypeFillBlank,
		CorrectAnswer: []string{"a"},
		Analysis:      "because",
	}, nil)

	if w.ID != 3 {
		t.Errorf("expected id 3, got %d", w.ID)
	}
	if w.UserAnswer == nil || w.Options == nil {
		t.Error("expected empty arrays instead of nil")
	}

	q := w.Canonical()
	if q.ID != 3 || q.Analysis != "because" || q.CorrectAnswer[0] != "a" {
		t.Errorf("unexpected canonical record %+v", q)
	}
}
