// Package grader checks user answers against canonical answers and derives
// the score and the wrong set of a session.
package grader

import (
	"math"
	"strings"

	practicesession "github.com/tghelper/quizbank/internal/domain/practice_session"
	"github.com/tghelper/quizbank/internal/domain/question"
)

// AnswerSource yields the user's answer for a 0-based session position.
// Absent answers are returned as an empty list.
type AnswerSource interface {
	Answer(i int) []string
}

// Compile-time check: a practice session is an answer source.
var _ AnswerSource = (*practicesession.PracticeSession)(nil)

// Result is the outcome of grading a whole session.
type Result struct {
	Score          float64         `json:"score"`
	CorrectCount   int             `json:"correct_count"`
	TotalQuestions int             `json:"total_questions"`
	Wrong          []WrongQuestion `json:"wrong_questions"`
}

// WrongQuestion is one failed question together with both answers. ID is the
// 1-based position in the session.
type WrongQuestion struct {
	ID            int           `json:"id"`
	Title         string        `json:"title"`
	Type          question.Type `json:"type"`
	Content       string        `json:"content"`
	Options       []string      `json:"options"`
	UserAnswer    []string      `json:"user_answer"`
	CorrectAnswer []string      `json:"correct_answer"`
	Analysis      string        `json:"analysis"`
}

// Canonical drops the user's answer and returns the plain question record.
func (w WrongQuestion) Canonical() question.Question {
	return question.Question{
		ID:            w.ID,
		Title:         w.Title,
		Type:          w.Type,
		Content:       w.Content,
		Options:       nonNil(w.Options),
		CorrectAnswer: nonNil(w.CorrectAnswer),
		Analysis:      w.Analysis,
	}
}

// NewWrongQuestion packages question q at session position i (0-based).
func NewWrongQuestion(i int, q question.Question, userAnswer []string) WrongQuestion {
	return WrongQuestion{
		ID:            i + 1,
		Title:         q.Title,
		Type:          q.Type,
		Content:       q.Content,
		Options:       nonNil(q.Options),
		UserAnswer:    nonNil(userAnswer),
		CorrectAnswer: nonNil(q.CorrectAnswer),
		Analysis:      q.Analysis,
	}
}

// Grade compares every answer with its question. It never mutates answers,
// so grading the same state twice gives the same result.
func Grade(questions []question.Question, answers AnswerSource) Result {
	res := Result{TotalQuestions: len(questions), Wrong: []WrongQuestion{}}
	for i, q := range questions {
		ans := answers.Answer(i)
		if IsCorrect(q, ans) {
			res.CorrectCount++
			continue
		}
		res.Wrong = append(res.Wrong, NewWrongQuestion(i, q, ans))
	}
	res.Score = Score(res.CorrectCount, res.TotalQuestions)
	return res
}

// GradeSession grades a practice session.
func GradeSession(s *practicesession.PracticeSession) Result {
	return Grade(s.Questions, s)
}

// Score is correct/total as a percentage rounded to one decimal, 0 when
// there are no questions.
func Score(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)*1000/float64(total)) / 10
}

// IsCorrect applies the comparison rule of the question's type. Types with
// no rule are never correct.
func IsCorrect(q question.Question, answer []string) bool {
	switch q.Type.Comparison() {
	case question.CompareSet:
		return sameSet(q, answer)
	case question.ComparePositional:
		return samePositions(answer, q.CorrectAnswer)
	default:
		return false
	}
}

// sameSet compares answers as sets, ignoring order and duplicates. Letter
// labels are ignored only when the question's own options are labelled;
// otherwise entries are compared as trimmed strings.
func sameSet(q question.Question, answer []string) bool {
	stripLabels := q.LabelledOptions()
	sa, sb := optionSet(answer, stripLabels), optionSet(q.CorrectAnswer, stripLabels)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if _, ok := sb[k]; !ok {
			return false
		}
	}
	return true
}

func optionSet(answers []string, stripLabels bool) map[string]struct{} {
	set := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		key := strings.TrimSpace(a)
		if stripLabels {
			key = question.OptionText(a)
		}
		set[key] = struct{}{}
	}
	return set
}

func samePositions(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i]) != strings.TrimSpace(b[i]) {
			return false
		}
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
