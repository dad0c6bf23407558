package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Question is the canonical, storage-format representation of one quiz item.
// ID is the position within one extraction and is not stable across files.
type Question struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Type          Type     `json:"type"`
	Content       string   `json:"content"`
	Options       []string `json:"options"`
	CorrectAnswer []string `json:"correct_answer"`
	Analysis      string   `json:"analysis"`
}

// MarshalJSON always writes options and correct_answer as arrays and keeps
// markup characters in question text unescaped.
func (q Question) MarshalJSON() ([]byte, error) {
	type plain Question
	p := plain(q)
	if p.Options == nil {
		p.Options = []string{}
	}
	if p.CorrectAnswer == nil {
		p.CorrectAnswer = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Clone returns a deep copy so sessions never alias bank slices.
func (q Question) Clone() Question {
	q.Options = slices.Clone(q.Options)
	q.CorrectAnswer = slices.Clone(q.CorrectAnswer)
	return q
}

// ResolveChoice rewrites the legacy TypeChoice into single or multiple
// choice by counting non-blank correct answers. Zero answers resolve to
// single choice. Other types are left untouched.
func (q *Question) ResolveChoice() {
	if q.Type != TypeChoice {
		return
	}
	n := 0
	for _, a := range q.CorrectAnswer {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	if n > 1 {
		q.Type = TypeMultipleChoice
	} else {
		q.Type = TypeSingleChoice
	}
}

// HasAnalysis reports whether an explanation is already available.
func (q Question) HasAnalysis() bool {
	return strings.TrimSpace(q.Analysis) != ""
}

// Validate reports the first violated invariant of a canonical record.
func (q Question) Validate() error {
	switch q.Type.Comparison() {
	case CompareSet:
		for _, a := range q.CorrectAnswer {
			if !slices.Contains(q.Options, a) {
				return fmt.Errorf("question %d: correct answer %q is not one of the options", q.ID, a)
			}
		}
	case ComparePositional:
		if len(q.Options) > 0 {
			return fmt.Errorf("question %d: %s question must not carry options", q.ID, q.Type.Name())
		}
	default:
		if q.Type == TypeUnset {
			return fmt.Errorf("question %d: %w", q.ID, ErrUnsetType)
		}
		return fmt.Errorf("question %d: %w: %q", q.ID, ErrUnknownType, string(q.Type))
	}
	return nil
}

var (
	ErrUnsetType   = errors.New("type is unset")
	ErrUnknownType = errors.New("type is not part of the taxonomy")
)

// optionLabel matches a leading letter label: "A.", "A、", "A．", "A:", "A)"
// or a bare "A " followed by text.
var optionLabel = regexp.MustCompile(`^\s*([A-Za-z])(?:\s*[.、．:：)）]\s*|\s+)`)

// OptionText is an option without its letter label, trimmed. It identifies
// an option only within a question whose options are all labelled, see
// LabelledOptions.
func OptionText(option string) string {
	if loc := optionLabel.FindStringIndex(option); loc != nil && loc[1] < len(option) {
		return strings.TrimSpace(option[loc[1]:])
	}
	return strings.TrimSpace(option)
}

// LabelledOptions reports whether every option carries a letter label and
// the labels and label-free texts are all distinct. Only then is an option
// identified by its text alone.
func (q Question) LabelledOptions() bool {
	if len(q.Options) == 0 {
		return false
	}
	labels := make(map[string]bool, len(q.Options))
	texts := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		label, text := OptionLabel(o), OptionText(o)
		if label == "" || labels[label] || texts[text] {
			return false
		}
		labels[label], texts[text] = true, true
	}
	return true
}

// OptionLabel returns the letter label of an option, or "" if it has none.
func OptionLabel(option string) string {
	m := optionLabel.FindStringSubmatchIndex(option)
	if m == nil || m[1] >= len(option) {
		return ""
	}
	return strings.ToUpper(option[m[2]:m[3]])
}
