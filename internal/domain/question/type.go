package question

import "sort"

// Type is the question kind. The string value is the label stored in bank
// documents, so existing files keep loading unchanged.
type Type string

const (
	TypeUnset          Type = ""
	TypeSingleChoice   Type = "单选题"
	TypeMultipleChoice Type = "多选题"
	TypeTrueFalse      Type = "判断题"
	TypeFillBlank      Type = "填空题"
	TypeShortAnswer    Type = "简答题"
	TypeParaphrase     Type = "释义题"

	// TypeChoice is emitted by legacy producers that could not tell single
	// from multiple choice. It never survives ResolveChoice.
	TypeChoice Type = "选择题"
)

// PreferredOrder is the order in which types are grouped in a session.
var PreferredOrder = []Type{
	TypeSingleChoice,
	TypeMultipleChoice,
	TypeTrueFalse,
	TypeFillBlank,
	TypeShortAnswer,
	TypeParaphrase,
}

var englishNames = map[Type]string{
	TypeSingleChoice:   "SingleChoice",
	TypeMultipleChoice: "MultipleChoice",
	TypeTrueFalse:      "TrueFalse",
	TypeFillBlank:      "FillBlank",
	TypeShortAnswer:    "ShortAnswer",
	TypeParaphrase:     "Paraphrase",
	TypeChoice:         "Choice",
}

var byEnglishName = func() map[string]Type {
	m := make(map[string]Type, len(englishNames))
	for t, name := range englishNames {
		m[name] = t
	}
	return m
}()

// ParseType accepts either the stored label or the English name.
// Unrecognised labels are returned verbatim.
func ParseType(s string) Type {
	if t, ok := byEnglishName[s]; ok {
		return t
	}
	return Type(s)
}

// Name returns the English name of a known type, or the raw label otherwise.
func (t Type) Name() string {
	if name, ok := englishNames[t]; ok {
		return name
	}
	return string(t)
}

// Known reports whether t belongs to the canonical taxonomy.
// TypeChoice is not canonical: it must be resolved first.
func (t Type) Known() bool {
	return t.Comparison() != CompareNone
}

// Comparison selects the answer comparison rule for a type.
type Comparison int

const (
	// CompareNone means the type cannot be graded; answers are always wrong.
	CompareNone Comparison = iota
	// CompareSet compares answers as sets of option identities.
	CompareSet
	// ComparePositional compares answers entry by entry after trimming.
	ComparePositional
)

// Comparison is the single place where types are dispatched to a grading
// rule. Anything not listed here grades as incorrect.
func (t Type) Comparison() Comparison {
	switch t {
	case TypeSingleChoice, TypeMultipleChoice, TypeTrueFalse:
		return CompareSet
	case TypeFillBlank, TypeShortAnswer, TypeParaphrase:
		return ComparePositional
	default:
		return CompareNone
	}
}

// HasOptions reports whether questions of this type carry an option list.
func (t Type) HasOptions() bool {
	return t.Comparison() == CompareSet
}

// OrderTypes returns types with the preferred ones first (in preferred
// order) followed by the remaining ones sorted by label.
func OrderTypes(types []Type) []Type {
	present := make(map[Type]bool, len(types))
	for _, t := range types {
		present[t] = true
	}

	ordered := make([]Type, 0, len(present))
	for _, t := range PreferredOrder {
		if present[t] {
			ordered = append(ordered, t)
			delete(present, t)
		}
	}

	extra := make([]Type, 0, len(present))
	for t := range present {
		extra = append(extra, t)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(ordered, extra...)
}
