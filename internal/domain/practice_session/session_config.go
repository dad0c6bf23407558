package practicesession

import (
	"errors"
	"fmt"

	"github.com/tghelper/quizbank/internal/domain/question"
)

// Quotas is the maximum number of questions to draw per type.
type Quotas map[question.Type]int

// Ratios is the share of a session, in percent, given to each type.
type Ratios map[question.Type]float64

// SessionConfig describes how a session is drawn from a bank.
type SessionConfig struct {
	Quotas    Quotas // explicit per-type counts; used when non-empty
	Total     int    // desired size for ratio-based sampling
	Ratios    Ratios // per-type percentages, used with Total
	StudyMode bool   // answers shown immediately, submission disabled
}

// DefaultConfig returns a config that draws nothing.
func DefaultConfig() SessionConfig {
	return SessionConfig{
		Quotas:    Quotas{},
		Total:     0,
		Ratios:    nil,
		StudyMode: false,
	}
}

// Validate rejects negative counts and incomplete ratio configs.
func (c SessionConfig) Validate() error {
	for t, n := range c.Quotas {
		if n < 0 {
			return fmt.Errorf("quota for %s must be non-negative, got %d", t.Name(), n)
		}
	}
	if len(c.Quotas) > 0 {
		return nil
	}
	if len(c.Ratios) > 0 && c.Total <= 0 {
		return errors.New("total must be positive when ratios are given")
	}
	for t, pct := range c.Ratios {
		if pct < 0 {
			return fmt.Errorf("ratio for %s must be non-negative, got %v", t.Name(), pct)
		}
	}
	return nil
}
