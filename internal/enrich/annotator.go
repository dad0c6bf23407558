// Package enrich fills in missing question explanations with an
// OpenAI-compatible chat model.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tghelper/quizbank/internal/domain/question"
)

// Annotator explains the answer of one question.
type Annotator interface {
	Explain(ctx context.Context, q question.Question) (string, error)
}

// AnnotateError is returned when no explanation could be obtained, so the
// caller can tell "service unreachable" from a bad reply.
type AnnotateError struct {
	Reason  string
	Wrapped error
}

func (e *AnnotateError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("annotation failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("annotation failed: %s", e.Reason)
}

func (e *AnnotateError) Unwrap() error {
	return e.Wrapped
}

const (
	maxAttempts    = 2
	requestTimeout = 30 * time.Second
	temperature    = 0.7
	maxTokens      = 500

	systemPrompt = "你是一名计算机科学与技术专业的老师。请用简洁准确的语言解释这道题的答案，直接回答问题；" +
		"如果是选择题，说明正确选项为什么正确、其他选项为什么错误。只输出纯文本，不要使用 markdown 格式。"
)

// OpenAIAnnotator talks to any endpoint speaking the OpenAI chat API, such
// as DeepSeek.
type OpenAIAnnotator struct {
	client *openai.Client
	model  string
}

// Compile-time check: *OpenAIAnnotator satisfies the Annotator interface.
var _ Annotator = (*OpenAIAnnotator)(nil)

func NewOpenAIAnnotator(baseURL, model, apiKey string) (*OpenAIAnnotator, error) {
	if apiKey == "" {
		return nil, errors.New("enrich: API key is required")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIAnnotator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Explain asks the model once and retries once on failure.
func (a *OpenAIAnnotator) Explain(ctx context.Context, q question.Question) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildMessage(q)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := a.call(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}

	return "", &AnnotateError{
		Reason:  fmt.Sprintf("failed after %d attempts", maxAttempts),
		Wrapped: lastErr,
	}
}

func (a *OpenAIAnnotator) call(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &AnnotateError{Reason: fmt.Sprintf("service returned status %d", apiErr.HTTPStatusCode), Wrapped: err}
		}
		return "", &AnnotateError{Reason: "service unreachable", Wrapped: err}
	}
	if len(resp.Choices) == 0 {
		return "", &AnnotateError{Reason: "no choices in response"}
	}

	text := Clean(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &AnnotateError{Reason: "empty explanation"}
	}
	return text, nil
}

// BuildMessage renders the question, its options and its answer as the
// user prompt.
func BuildMessage(q question.Question) string {
	var b strings.Builder
	b.WriteString("题目：" + q.Content + "\n")

	if len(q.Options) > 0 {
		b.WriteString("选项：\n")
		for _, o := range q.Options {
			b.WriteString("  " + o + "\n")
		}
	}

	switch len(q.CorrectAnswer) {
	case 0:
	case 1:
		b.WriteString("正确答案：" + q.CorrectAnswer[0])
	default:
		b.WriteString("正确答案：\n")
		for _, a := range q.CorrectAnswer {
			b.WriteString("  " + a + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

var markdownLeftovers = strings.NewReplacer("**", "", "`", "")

// Clean removes bold markers and backticks the model adds despite being
// asked for plain text.
func Clean(s string) string {
	return strings.TrimSpace(markdownLeftovers.Replace(s))
}
