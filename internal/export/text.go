// Package export renders a bank as plain text for printing and revision.
package export

import (
	"bufio"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/tghelper/quizbank/internal/domain/question"
)

const noAnalysis = "无"

// WriteText writes one block per question:
//
//	1.【单选题】content
//	A. x B. y
//	答案：A
//	解析：...
//
// Blocks are separated by a blank line.
func WriteText(w io.Writer, qs []question.Question) error {
	bw := bufio.NewWriter(w)
	for i, q := range qs {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(strings.Join([]string{
			strconv.Itoa(i+1) + ".【" + string(q.Type) + "】" + q.Content,
			strings.Join(q.Options, " "),
			"答案：" + strings.Join(answerLabels(q), " "),
			"解析：" + analysisText(q),
		}, "\n"))
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// answerLabels reduces choice answers to their letter when the answer is a
// labelled option; other answers are kept as they are.
func answerLabels(q question.Question) []string {
	out := make([]string, 0, len(q.CorrectAnswer))
	for _, a := range q.CorrectAnswer {
		if q.Type.HasOptions() && slices.Contains(q.Options, a) {
			if l := question.OptionLabel(a); l != "" {
				out = append(out, l)
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func analysisText(q question.Question) string {
	if q.HasAnalysis() {
		return q.Analysis
	}
	return noAnalysis
}
