package practicesession

import (
	"math"
	"math/rand/v2"

	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/domain/questionbank"
)

// Sampler draws stratified random subsets of a bank.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler uses rng for every draw. A nil rng gets a randomly seeded one.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{rng: rng}
}

// SampleByCount draws min(quota, available) questions of each type without
// replacement. Types are processed in the preferred order, then any extra
// quota types sorted by label. The result is grouped by type, each group in
// draw order. Quotas of zero or below omit the type.
func (s *Sampler) SampleByCount(bank *questionbank.Bank, quotas Quotas) []question.Question {
	types := make([]question.Type, 0, len(quotas))
	for t := range quotas {
		types = append(types, t)
	}

	var selected []question.Question
	for _, t := range question.OrderTypes(types) {
		n := quotas[t]
		if n <= 0 {
			continue
		}
		selected = append(selected, s.draw(bank.ByType(t), n)...)
	}
	return selected
}

// SampleByRatio converts percentages into counts with RatioCounts and then
// draws with SampleByCount.
func (s *Sampler) SampleByRatio(bank *questionbank.Bank, total int, ratios Ratios) []question.Question {
	return s.SampleByCount(bank, RatioCounts(bank, total, ratios))
}

// RatioCounts computes floor(total*pct/100) per type, clamped to what the
// bank has, then hands any shortfall to types with spare questions, one type
// at a time in iteration order (preferred order, then extras by label).
// Types absent from the bank are ignored.
func RatioCounts(bank *questionbank.Bank, total int, ratios Ratios) Quotas {
	types := make([]question.Type, 0, len(ratios))
	for t := range ratios {
		if bank.Count(t) > 0 {
			types = append(types, t)
		}
	}
	types = question.OrderTypes(types)

	counts := make(Quotas, len(types))
	sum := 0
	for _, t := range types {
		n := int(math.Floor(float64(total) * ratios[t] / 100))
		n = max(0, min(n, bank.Count(t)))
		counts[t] = n
		sum += n
	}

	remaining := total - sum
	for _, t := range types {
		if remaining <= 0 {
			break
		}
		spare := bank.Count(t) - counts[t]
		if spare > 0 {
			add := min(remaining, spare)
			counts[t] += add
			remaining -= add
		}
	}
	return counts
}

// draw picks n items without replacement using a partial Fisher-Yates
// shuffle over a copy of the pool. Clamps n to the pool size.
func (s *Sampler) draw(pool []question.Question, n int) []question.Question {
	n = min(n, len(pool))
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}

	out := make([]question.Question, 0, n)
	for i := 0; i < n; i++ {
		j := i + s.rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, pool[idx[i]].Clone())
	}
	return out
}
