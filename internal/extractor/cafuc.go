package extractor

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tghelper/quizbank/internal/domain/question"
)

// Paper export of the CAFUC exam platform. Only the fields we read.
type cafucPaper struct {
	Data struct {
		ExamCaption string         `json:"examCaption"`
		Sections    []cafucSection `json:"studentPaperQuestionTypeVoList"`
	} `json:"data"`
}

type cafucSection struct {
	Caption  string      `json:"questionTypeCaption"`
	BaseType string      `json:"baseQuestionType"`
	Items    []cafucItem `json:"studentPaperItemVoList"`
}

type cafucItem struct {
	Text       string `json:"text"`
	AnswerJSON string `json:"answerJson"`
	Answer     string `json:"answer"`
	MarkingKey string `json:"markingKey"`
	Analysis   string `json:"analysis"`
}

type cafucOptions struct {
	AnswerList []struct {
		Answer string `json:"answer"`
		Desc   string `json:"desc"`
	} `json:"answerList"`
}

var cafucBaseTypes = map[string]question.Type{
	"S_C":   question.TypeSingleChoice,
	"M_C":   question.TypeMultipleChoice,
	"T_O_F": question.TypeTrueFalse,
	"F_B":   question.TypeFillBlank,
}

var (
	trueFalseOptions = []string{"正确", "错误"}

	// The platform fills unmarked keys with repeated "^~^".
	placeholderKey = regexp.MustCompile(`^(\^~\^)+$`)
	answerLetters  = regexp.MustCompile(`^[A-Za-z](?:[\s,，、]*[A-Za-z])*$`)
)

// ConvertCAFUC converts a CAFUC paper export into question records with ids
// running across the whole paper.
func (e *Extractor) ConvertCAFUC(r io.Reader) ([]question.Question, error) {
	var paper cafucPaper
	if err := json.NewDecoder(r).Decode(&paper); err != nil {
		return nil, fmt.Errorf("decode paper: %w", err)
	}

	qs := []question.Question{}
	for _, sec := range paper.Data.Sections {
		typ := sectionType(sec)
		for _, item := range sec.Items {
			q := question.Question{
				ID:            len(qs) + 1,
				Title:         paper.Data.ExamCaption,
				Type:          typ,
				Content:       fragmentText(item.Text),
				Options:       []string{},
				CorrectAnswer: []string{},
				Analysis:      strings.TrimSpace(item.Analysis),
			}

			switch sec.BaseType {
			case "S_C", "M_C":
				opts, err := parseOptions(item.AnswerJSON)
				if err != nil {
					e.logger.Warn("bad option list", "question_id", q.ID, "error", err)
				}
				q.Options = opts
			case "T_O_F":
				q.Options = append([]string(nil), trueFalseOptions...)
			}

			if ans := itemAnswer(item); ans != "" {
				q.CorrectAnswer = matchOptions(ans, q.Options)
			}
			qs = append(qs, q)
		}
	}
	return qs, nil
}

func sectionType(sec cafucSection) question.Type {
	if t := question.ParseType(strings.TrimSpace(sec.Caption)); t.Known() {
		return t
	}
	if t, ok := cafucBaseTypes[sec.BaseType]; ok {
		return t
	}
	return question.Type(sec.Caption)
}

func parseOptions(raw string) ([]string, error) {
	opts := []string{}
	if strings.TrimSpace(raw) == "" {
		return opts, nil
	}
	var list cafucOptions
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return opts, err
	}
	for _, o := range list.AnswerList {
		opts = append(opts, strings.TrimSpace(o.Answer)+" "+fragmentText(o.Desc))
	}
	return opts, nil
}

func itemAnswer(item cafucItem) string {
	if a := strings.TrimSpace(item.Answer); a != "" {
		return a
	}
	if k := strings.TrimSpace(item.MarkingKey); k != "" && !placeholderKey.MatchString(k) {
		return k
	}
	return ""
}

// matchOptions maps a letters-only answer such as "AC" or "A,C" to the
// labelled options it names. Anything else is kept verbatim.
func matchOptions(answer string, options []string) []string {
	if len(options) == 0 || !answerLetters.MatchString(answer) {
		return []string{answer}
	}

	byLabel := make(map[string]string, len(options))
	for _, o := range options {
		if l := question.OptionLabel(o); l != "" {
			byLabel[l] = o
		}
	}

	var matched []string
	for _, r := range strings.ToUpper(answer) {
		if r < 'A' || r > 'Z' {
			continue
		}
		o, ok := byLabel[string(r)]
		if !ok {
			return []string{answer}
		}
		matched = append(matched, o)
	}
	return matched
}
