package questionbank

import "github.com/tghelper/quizbank/internal/domain/question"

// Stats maps a type label to the number of questions of that type.
type Stats map[question.Type]int

// computeStats is a single pass over the bank.
func computeStats(questions []question.Question) Stats {
	stats := make(Stats)
	for _, q := range questions {
		stats[q.Type]++
	}
	return stats
}

// Stats returns a copy of the per-type counts.
func (b *Bank) Stats() Stats {
	out := make(Stats, len(b.stats))
	for t, n := range b.stats {
		out[t] = n
	}
	return out
}

// Count is the number of questions of type t.
func (b *Bank) Count(t question.Type) int {
	return b.stats[t]
}

// Types lists the types present in the bank, preferred order first.
func (b *Bank) Types() []question.Type {
	types := make([]question.Type, 0, len(b.stats))
	for t := range b.stats {
		types = append(types, t)
	}
	return question.OrderTypes(types)
}

// Labels returns the stats keyed by the stored label, as they appear in
// bank documents and API responses.
func (s Stats) Labels() map[string]int {
	out := make(map[string]int, len(s))
	for t, n := range s {
		out[string(t)] = n
	}
	return out
}
