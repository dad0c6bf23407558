package practicesession

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/domain/questionbank"
)

var ErrIndexOutOfRange = errors.New("question index out of range")

// PracticeSession is one exam drawn from a bank. Answers and "viewed" flags
// are keyed by 0-based position and only exist once written.
//
// A session is not safe for concurrent use; callers serialise access.
type PracticeSession struct {
	ID        string
	BankFile  string
	Questions []question.Question
	StudyMode bool
	CreatedAt time.Time

	position int
	answers  map[int][]string
	viewed   map[int]bool
}

// New creates a session over an already sampled question list.
func New(id string, questions []question.Question, studyMode bool) *PracticeSession {
	return &PracticeSession{
		ID:        id,
		Questions: questions,
		StudyMode: studyMode,
		CreatedAt: time.Now(),
		answers:   make(map[int][]string),
		viewed:    make(map[int]bool),
	}
}

// NewWithConfig samples the bank according to config and creates a session.
// Explicit quotas win over ratios.
func NewWithConfig(id string, bank *questionbank.Bank, config SessionConfig, sampler *Sampler) *PracticeSession {
	var questions []question.Question
	if len(config.Quotas) > 0 {
		questions = sampler.SampleByCount(bank, config.Quotas)
	} else if len(config.Ratios) > 0 {
		questions = sampler.SampleByRatio(bank, config.Total, config.Ratios)
	}
	return New(id, questions, config.StudyMode)
}

// Len is the number of questions in the session.
func (s *PracticeSession) Len() int {
	return len(s.Questions)
}

func (s *PracticeSession) check(i int) error {
	if i < 0 || i >= len(s.Questions) {
		return ErrIndexOutOfRange
	}
	return nil
}

// Question returns the question at position i.
func (s *PracticeSession) Question(i int) (question.Question, error) {
	if err := s.check(i); err != nil {
		return question.Question{}, err
	}
	return s.Questions[i], nil
}

// SetAnswer records the user's answer for position i, replacing any
// previous one.
func (s *PracticeSession) SetAnswer(i int, answer []string) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.answers[i] = slices.Clone(answer)
	return nil
}

// Answer returns the recorded answer, or an empty list if there is none.
func (s *PracticeSession) Answer(i int) []string {
	a, ok := s.answers[i]
	if !ok {
		return []string{}
	}
	return slices.Clone(a)
}

// MarkViewed records that the answer for position i has been revealed.
func (s *PracticeSession) MarkViewed(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.viewed[i] = true
	return nil
}

// IsViewed reports whether the answer for position i has been revealed.
func (s *PracticeSession) IsViewed(i int) bool {
	return s.viewed[i]
}

// Answered reports whether position i holds a real answer. A list made only
// of blank strings, such as [""], is a placeholder and does not count.
func (s *PracticeSession) Answered(i int) bool {
	for _, a := range s.answers[i] {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

// CanSubmit is true when every position is answered. Study mode disables
// submission permanently.
func (s *PracticeSession) CanSubmit() bool {
	if s.StudyMode {
		return false
	}
	for i := range s.Questions {
		if !s.Answered(i) {
			return false
		}
	}
	return true
}

// Progress summarises how far the user has got.
type Progress struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Viewed   int `json:"viewed"`
	Position int `json:"position"`
}

func (s *PracticeSession) Progress() Progress {
	p := Progress{Total: len(s.Questions), Position: s.position}
	for i := range s.Questions {
		if s.Answered(i) {
			p.Answered++
		}
		if s.viewed[i] {
			p.Viewed++
		}
	}
	return p
}

// Position is the index of the question currently shown.
func (s *PracticeSession) Position() int {
	return s.position
}

// Goto moves to position i.
func (s *PracticeSession) Goto(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.position = i
	return nil
}

// Next advances one question. It returns false at the last question.
func (s *PracticeSession) Next() bool {
	if s.position+1 >= len(s.Questions) {
		return false
	}
	s.position++
	return true
}

// Prev goes back one question. It returns false at the first question.
func (s *PracticeSession) Prev() bool {
	if s.position == 0 {
		return false
	}
	s.position--
	return true
}
