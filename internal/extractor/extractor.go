// Package extractor turns captured exam pages into canonical question
// records.
package extractor

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tghelper/quizbank/internal/domain/question"
)

// UnknownTitle is used when a page has no <title>.
const UnknownTitle = "Unknown Title"

// Markup of the captured platform pages.
const (
	selStem          = ".subject"
	selStemBody      = ".subject-body"
	selTextarea      = "textarea"
	selOptionDiv     = "div.option"
	selOptionBox     = ".option"
	selRadioGroup    = ".ant-radio-group"
	selRadioItem     = ".ant-radio-wrapper"
	selRadioLabel    = "span.ant-radio-label"
	classRadioPicked = "ant-radio-wrapper-checked"
	selChoiceEntry   = "a.flex-container"
	selChoiceLabel   = ".checkTitle"
	selCheckbox      = "input[type=checkbox]"
	selRadio         = "input[type=radio]"
	selChecked       = "input[checked]"
)

// QuestionError describes a question that was skipped because its markup
// is incomplete. Index is the 1-based position of the stem in the page.
type QuestionError struct {
	Index  int
	Reason string
}

func (e *QuestionError) Error() string {
	return fmt.Sprintf("question %d: %s", e.Index, e.Reason)
}

type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractFile parses one captured page from disk.
func (e *Extractor) ExtractFile(path string) ([]question.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	qs, err := e.Extract(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return qs, nil
}

// Extract parses one page. Only an unreadable document is an error; a
// question with broken markup is logged and skipped, and the others keep
// their page position as id.
func (e *Extractor) Extract(r io.Reader) ([]question.Question, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	title := UnknownTitle
	if t := doc.Find("title").First(); t.Length() > 0 {
		if text := plainText(t); text != "" {
			title = text
		}
	}

	qs := []question.Question{}
	doc.Find(selStem).Each(func(i int, stem *goquery.Selection) {
		q, err := extractQuestion(i+1, title, stem)
		if err != nil {
			e.logger.Warn("skipping question", "question_id", i+1, "error", err)
			return
		}
		qs = append(qs, q)
	})
	return qs, nil
}

// extractQuestion classifies one stem: a free-text field makes it fill
// blank, then a radio group makes it true/false, then an option box makes
// it a choice. Without any of these the type stays unset.
func extractQuestion(id int, title string, stem *goquery.Selection) (question.Question, error) {
	q := question.Question{
		ID:            id,
		Title:         title,
		Content:       plainText(stem.Find(selStemBody).First()),
		Options:       []string{},
		CorrectAnswer: []string{},
	}
	parent := stem.Parent()

	if field := answerField(stem, parent); field != nil {
		q.Type = question.TypeFillBlank
		q.CorrectAnswer = splitBlanks(field.Text())
		return q, nil
	}

	if group := parent.Find(selRadioGroup).First(); group.Length() > 0 {
		q.Type = question.TypeTrueFalse
		err := eachUntilErr(group.Find(selRadioItem), func(item *goquery.Selection) error {
			label := item.Find(selRadioLabel).First()
			if label.Length() == 0 {
				return &QuestionError{Index: id, Reason: "radio item without label"}
			}
			text := plainText(label)
			q.Options = append(q.Options, text)
			if item.HasClass(classRadioPicked) {
				q.CorrectAnswer = append(q.CorrectAnswer, text)
			}
			return nil
		})
		return q, err
	}

	box := parent.Find(selOptionBox).First()
	entries := box.Find(selChoiceEntry)
	if entries.Length() == 0 {
		return q, nil
	}

	err := eachUntilErr(entries, func(entry *goquery.Selection) error {
		label := entry.Find(selChoiceLabel).First()
		body := entry.Find(selStemBody).First()
		if label.Length() == 0 || body.Length() == 0 {
			return &QuestionError{Index: id, Reason: "choice entry without label or text"}
		}
		option := plainText(label) + " " + plainText(body)
		q.Options = append(q.Options, option)
		if entry.Find(selChecked).Length() > 0 {
			q.CorrectAnswer = append(q.CorrectAnswer, option)
		}
		return nil
	})
	if err != nil {
		return q, err
	}

	switch {
	case box.Find(selCheckbox).Length() > 0:
		q.Type = question.TypeMultipleChoice
	case box.Find(selRadio).Length() > 0:
		q.Type = question.TypeSingleChoice
	}
	return q, nil
}

// answerField finds the free-text answer of a stem: inside the enclosing
// list item, else in the option block following the stem or its parent.
func answerField(stem, parent *goquery.Selection) *goquery.Selection {
	if li := stem.ParentsFiltered("li").First(); li.Length() > 0 {
		if ta := li.Find(selTextarea).First(); ta.Length() > 0 {
			return ta
		}
	}

	block := stem.NextAllFiltered(selOptionDiv).First()
	if block.Length() == 0 {
		block = parent.NextAllFiltered(selOptionDiv).First()
	}
	if ta := block.Find(selTextarea).First(); ta.Length() > 0 {
		return ta
	}
	return nil
}

func eachUntilErr(sel *goquery.Selection, fn func(*goquery.Selection) error) error {
	var err error
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		err = fn(s)
		return err == nil
	})
	return err
}

// splitBlanks splits a fill-blank answer on ASCII and full-width commas and
// semicolons, dropping empty parts.
func splitBlanks(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return strings.ContainsRune(",;，；", r)
	})
	answers := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			answers = append(answers, p)
		}
	}
	return answers
}

// plainText is the visible text of a selection with whitespace runs
// collapsed to one space.
func plainText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// fragmentText strips markup from an HTML fragment.
func fragmentText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return plainText(doc.Selection)
}
