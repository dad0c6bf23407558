package questionbank

import (
	"github.com/tghelper/quizbank/internal/domain/question"
)

// Bank is an in-memory question bank loaded from one document. It is
// replaced wholesale on the next load, never updated incrementally.
type Bank struct {
	questions []question.Question
	stats     Stats
}

// New builds a bank from decoded records. Legacy "Choice" records are
// resolved in place before statistics are computed, so the stats always
// describe canonical types.
func New(questions []question.Question) *Bank {
	for i := range questions {
		questions[i].ResolveChoice()
	}
	return &Bank{
		questions: questions,
		stats:     computeStats(questions),
	}
}

// Questions returns the bank's records. Callers must not mutate them.
func (b *Bank) Questions() []question.Question {
	return b.questions
}

// Total is the number of questions in the bank.
func (b *Bank) Total() int {
	return len(b.questions)
}

// ByType returns all questions of the given type in bank order.
func (b *Bank) ByType(t question.Type) []question.Question {
	var out []question.Question
	for _, q := range b.questions {
		if q.Type == t {
			out = append(out, q)
		}
	}
	return out
}
