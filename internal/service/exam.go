// Package service holds the current question bank and the open practice
// sessions, and exposes every operation the HTTP layer offers.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	practicesession "github.com/tghelper/quizbank/internal/domain/practice_session"
	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/domain/questionbank"
	"github.com/tghelper/quizbank/internal/grader"
	"github.com/tghelper/quizbank/internal/id"
	"github.com/tghelper/quizbank/internal/store"
)

var (
	ErrNoBankLoaded       = errors.New("no question bank loaded")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSubmissionDisabled = errors.New("submission is disabled in study mode")
	ErrInvalidRequest     = errors.New("invalid request")
)

// Wrong-book formats accepted by SaveWrongBook.
const (
	FormatEnvelope = "envelope"
	FormatArray    = "array"
)

// ExamService owns the loaded bank and the session registry. The registry
// lock only guards the map; each session has its own lock, so different
// sessions never wait on each other.
type ExamService struct {
	banks  store.BankFiles
	books  store.WrongBooks
	logger *slog.Logger
	now    func() time.Time

	samplerMu sync.Mutex
	sampler   *practicesession.Sampler

	bankMu   sync.RWMutex
	bank     *questionbank.Bank
	bankFile string

	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu sync.Mutex
	s  *practicesession.PracticeSession
}

// NewExamService creates an ExamService. A nil sampler draws from a random
// seed.
func NewExamService(banks store.BankFiles, books store.WrongBooks, sampler *practicesession.Sampler, logger *slog.Logger) *ExamService {
	if sampler == nil {
		sampler = practicesession.NewSampler(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExamService{
		banks:    banks,
		books:    books,
		logger:   logger,
		now:      time.Now,
		sampler:  sampler,
		sessions: make(map[string]*entry),
	}
}

// BankInfo describes the loaded bank.
type BankInfo struct {
	File           string         `json:"file"`
	TotalQuestions int            `json:"total_questions"`
	Stats          map[string]int `json:"stats"`
}

func (es *ExamService) AvailableBanks() ([]string, error) {
	return es.banks.List()
}

// LoadBank replaces the current bank. An empty name loads the default bank.
// On failure the previous bank stays.
func (es *ExamService) LoadBank(name string) (BankInfo, error) {
	if name == "" {
		name = es.banks.Default
	}
	if name == "" {
		return BankInfo{}, fmt.Errorf("%w: no bank file given", ErrInvalidRequest)
	}

	bank, err := es.banks.Load(name)
	if err != nil {
		es.logger.Error("bank load failed", "file", name, "error", err)
		return BankInfo{}, err
	}

	es.bankMu.Lock()
	es.bank, es.bankFile = bank, name
	es.bankMu.Unlock()

	es.logger.Info("bank loaded", "file", name, "questions", bank.Total())
	return bankInfo(name, bank), nil
}

func (es *ExamService) BankStats() (BankInfo, error) {
	bank, name := es.currentBank()
	if bank == nil {
		return BankInfo{}, ErrNoBankLoaded
	}
	return bankInfo(name, bank), nil
}

func (es *ExamService) currentBank() (*questionbank.Bank, string) {
	es.bankMu.RLock()
	defer es.bankMu.RUnlock()
	return es.bank, es.bankFile
}

func bankInfo(name string, bank *questionbank.Bank) BankInfo {
	return BankInfo{File: name, TotalQuestions: bank.Total(), Stats: bank.Stats().Labels()}
}

// SessionSummary is returned when a session is created.
type SessionSummary struct {
	SessionID      string         `json:"session_id"`
	BankFile       string         `json:"bank_file"`
	QuestionsCount int            `json:"questions_count"`
	TypeCounts     map[string]int `json:"type_counts"`
	StudyMode      bool           `json:"study_mode"`
}

// CreateSession samples the current bank. Quotas win over ratios; one of
// them is required.
func (es *ExamService) CreateSession(config practicesession.SessionConfig) (SessionSummary, error) {
	bank, name := es.currentBank()
	if bank == nil {
		return SessionSummary{}, ErrNoBankLoaded
	}
	if err := config.Validate(); err != nil {
		return SessionSummary{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if len(config.Quotas) == 0 && len(config.Ratios) == 0 {
		return SessionSummary{}, fmt.Errorf("%w: type counts or ratios are required", ErrInvalidRequest)
	}

	es.samplerMu.Lock()
	s := practicesession.NewWithConfig(id.GenerateID(), bank, config, es.sampler)
	es.samplerMu.Unlock()
	s.BankFile = name

	es.mu.Lock()
	es.sessions[s.ID] = &entry{s: s}
	es.mu.Unlock()

	counts := make(map[string]int)
	for _, q := range s.Questions {
		counts[string(q.Type)]++
	}
	es.logger.Info("session created", "session_id", s.ID, "questions", s.Len(), "study_mode", s.StudyMode)

	return SessionSummary{
		SessionID:      s.ID,
		BankFile:       name,
		QuestionsCount: s.Len(),
		TypeCounts:     counts,
		StudyMode:      s.StudyMode,
	}, nil
}

// withSession runs fn while holding the session's lock.
func (es *ExamService) withSession(sessionID string, fn func(*practicesession.PracticeSession) error) error {
	es.mu.RLock()
	e, ok := es.sessions[sessionID]
	es.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.s)
}

// SessionStatus is the overview of one session.
type SessionStatus struct {
	SessionID string                   `json:"session_id"`
	BankFile  string                   `json:"bank_file"`
	StudyMode bool                     `json:"study_mode"`
	CreatedAt time.Time                `json:"created_at"`
	CanSubmit bool                     `json:"can_submit"`
	Progress  practicesession.Progress `json:"progress"`
}

func (es *ExamService) Status(sessionID string) (SessionStatus, error) {
	var st SessionStatus
	err := es.withSession(sessionID, func(s *practicesession.PracticeSession) error {
		st = SessionStatus{
			SessionID: s.ID,
			BankFile:  s.BankFile,
			StudyMode: s.StudyMode,
			CreatedAt: s.CreatedAt,
			CanSubmit: s.CanSubmit(),
			Progress:  s.Progress(),
		}
		return nil
	})
	return st, err
}

// QuestionView is one session question as shown to the user. The correct
// answer and analysis stay empty until the answer has been viewed, except in
// study mode.
type QuestionView struct {
	Index          int           `json:"index"`
	Total          int           `json:"total"`
	ID             int           `json:"id"`
	Title          string        `json:"title"`
	Type           question.Type `json:"type"`
	Content        string        `json:"content"`
	Options        []string      `json:"options"`
	CorrectAnswer  []string      `json:"correct_answer"`
	Analysis       string        `json:"analysis"`
	UserAnswer     []string      `json:"user_answer"`
	IsAnswerViewed bool          `json:"is_answer_viewed"`
}

func (es *ExamService) Question(sessionID string, i int) (QuestionView, error) {
	var view QuestionView
	err := es.withSession(sessionID, func(s *practicesession.PracticeSession) error {
		q, err := s.Question(i)
		if err != nil {
			return err
		}
		if err := s.Goto(i); err != nil {
			return err
		}

		viewed := s.IsViewed(i)
		view = QuestionView{
			Index:          i,
			Total:          s.Len(),
			ID:             q.ID,
			Title:          q.Title,
			Type:           q.Type,
			Content:        q.Content,
			Options:        nonNil(q.Options),
			CorrectAnswer:  []string{},
			UserAnswer:     s.Answer(i),
			IsAnswerViewed: viewed,
		}
		if viewed || s.StudyMode {
			view.CorrectAnswer = nonNil(q.CorrectAnswer)
			view.Analysis = q.Analysis
		}
		return nil
	})
	return view, err
}

func (es *ExamService) SubmitAnswer(sessionID string, i int, answer []string) error {
	return es.withSession(sessionID, func(s *practicesession.PracticeSession) error {
		return s.SetAnswer(i, answer)
	})
}

// AnswerView is the revealed answer of one question.
type AnswerView struct {
	CorrectAnswer []string `json:"correct_answer"`
	Analysis      string   `json:"analysis"`
}

// ViewAnswer marks the answer of question i as viewed and returns it.
func (es *ExamService) ViewAnswer(sessionID string, i int) (AnswerView, error) {
	var view AnswerView
	err := es.withSession(sessionID, func(s *practicesession.PracticeSession) error {
		q, err := s.Question(i)
		if err != nil {
			return err
		}
		if err := s.MarkViewed(i); err != nil {
			return err
		}
		view = AnswerView{CorrectAnswer: nonNil(q.CorrectAnswer), Analysis: q.Analysis}
		return nil
	})
	return view, err
}

// Submit grades the session. Unanswered questions count as wrong.
func (es *ExamService) Submit(sessionID string) (grader.Result, error) {
	var res grader.Result
	err := es.withSession(sessionID, func(s *practicesession.PracticeSession) error {
		if s.StudyMode {
			return ErrSubmissionDisabled
		}
		res = grader.GradeSession(s)
		return nil
	})
	if err == nil {
		es.logger.Info("session graded", "session_id", sessionID, "score", res.Score, "wrong", len(res.Wrong))
	}
	return res, err
}

// SaveWrongBook grades the session and writes its wrong set, either as an
// enveloped book or as a bare array of question records.
func (es *ExamService) SaveWrongBook(sessionID, title, fileName, format string) (store.SavedBook, error) {
	if format == "" {
		format = FormatEnvelope
	}
	if format != FormatEnvelope && format != FormatArray {
		return store.SavedBook{}, fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, format)
	}

	res, err := es.Submit(sessionID)
	if err != nil {
		return store.SavedBook{}, err
	}

	if format == FormatArray {
		qs := make([]question.Question, len(res.Wrong))
		for i, w := range res.Wrong {
			qs[i] = w.Canonical()
		}
		return es.saved(es.books.SaveQuestions(fileName, qs, es.now()))
	}
	return es.saved(es.books.Save(title, fileName, res.Wrong, es.now()))
}

// SaveWrongQuestions writes a wrong set assembled by the client.
func (es *ExamService) SaveWrongQuestions(title, fileName string, qs []grader.WrongQuestion) (store.SavedBook, error) {
	return es.saved(es.books.Save(title, fileName, qs, es.now()))
}

// GenerateWrongBook writes the session questions at the given 1-based
// positions with the user answers keyed by the same positions. Positions
// outside the session are ignored.
func (es *ExamService) GenerateWrongBook(sessionID string, positions []int, userAnswers map[string][]string) (store.SavedBook, error) {
	if len(positions) == 0 {
		return store.SavedBook{}, fmt.Errorf("%w: no question positions given", ErrInvalidRequest)
	}

	var wrong []grader.WrongQuestion
	err := es.withSession(sessionID, func(s *practicesession.PracticeSession) error {
		for _, pos := range positions {
			q, err := s.Question(pos - 1)
			if err != nil {
				continue
			}
			wrong = append(wrong, grader.NewWrongQuestion(pos-1, q, userAnswers[strconv.Itoa(pos)]))
		}
		return nil
	})
	if err != nil {
		return store.SavedBook{}, err
	}
	return es.saved(es.books.Save("", "", wrong, es.now()))
}

func (es *ExamService) saved(book store.SavedBook, err error) (store.SavedBook, error) {
	if err != nil {
		if !errors.Is(err, store.ErrNothingToExport) {
			es.logger.Error("wrong book save failed", "error", err)
		}
		return book, err
	}
	es.logger.Info("wrong book saved", "file", book.Path)
	return book, nil
}

func (es *ExamService) WrongBooks() ([]store.BookInfo, error) {
	return es.books.List()
}

// CloseSession discards a session.
func (es *ExamService) CloseSession(sessionID string) error {
	es.mu.Lock()
	defer es.mu.Unlock()
	if _, ok := es.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(es.sessions, sessionID)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
