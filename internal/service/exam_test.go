package service_test

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	practicesession "github.com/tghelper/quizbank/internal/domain/practice_session"
	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/grader"
	"github.com/tghelper/quizbank/internal/service"
	"github.com/tghelper/quizbank/internal/store"
)

const bankJSON = `[
  {"id": 1, "title": "t", "type": "单选题", "content": "s1", "options": ["A. x", "B. y"], "correct_answer": ["A. x"], "analysis": "a1"},
  {"id": 2, "title": "t", "type": "单选题", "content": "s2", "options": ["A. x", "B. y"], "correct_answer": ["B. y"], "analysis": "a2"},
  {"id": 3, "title": "t", "type": "判断题", "content": "tf", "options": ["正确", "错误"], "correct_answer": ["正确"], "analysis": ""},
  {"id": 4, "title": "t", "type": "填空题", "content": "fb", "options": [], "correct_answer": ["a", "b"], "analysis": ""}
]`

func newService(t *testing.T) (*service.ExamService, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "questions.json"), []byte(bankJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	es := service.NewExamService(
		store.BankFiles{Dir: dir},
		store.WrongBooks{Dir: filepath.Join(dir, "wrong_questions"), Logger: logger},
		practicesession.NewSampler(rand.New(rand.NewPCG(7, 9))),
		logger,
	)
	return es, dir
}

func loaded(t *testing.T) *service.ExamService {
	t.Helper()
	es, _ := newService(t)
	if _, err := es.LoadBank("questions.json"); err != nil {
		t.Fatalf("LoadBank: %v", err)
	}
	return es
}

// allQuestions draws the whole bank in preferred type order:
// two single choice, then true/false, then fill blank.
func allQuestions(t *testing.T, es *service.ExamService, studyMode bool) string {
	t.Helper()
	sum, err := es.CreateSession(practicesession.SessionConfig{
		Quotas: practicesession.Quotas{
			question.TypeSingleChoice: 5,
			question.TypeTrueFalse:    5,
			question.TypeFillBlank:    5,
		},
		StudyMode: studyMode,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sum.QuestionsCount != 4 {
		t.Fatalf("expected 4 questions, got %d", sum.QuestionsCount)
	}
	return sum.SessionID
}

func TestLoadBank(t *testing.T) {
	es, _ := newService(t)

	if _, err := es.BankStats(); !errors.Is(err, service.ErrNoBankLoaded) {
		t.Errorf("expected ErrNoBankLoaded, got %v", err)
	}

	info, err := es.LoadBank("questions.json")
	if err != nil {
		t.Fatalf("LoadBank: %v", err)
	}
	if info.TotalQuestions != 4 || info.Stats["单选题"] != 2 {
		t.Errorf("unexpected info %+v", info)
	}

	files, err := es.AvailableBanks()
	if err != nil || len(files) != 1 {
		t.Errorf("AvailableBanks() = %v, %v", files, err)
	}
}

func TestLoadBank_FailureKeepsPreviousBank(t *testing.T) {
	es := loaded(t)

	_, err := es.LoadBank("missing.json")
	var loadErr *store.LoadError
	if !errors.As(err, &loadErr) || loadErr.Reason != store.NotFound {
		t.Fatalf("expected NotFound load error, got %v", err)
	}

	_, err = es.LoadBank("../escape.json")
	var pathErr *store.PathSecurityError
	if !errors.As(err, &pathErr) {
		t.Fatalf("expected PathSecurityError, got %v", err)
	}

	info, err := es.BankStats()
	if err != nil || info.File != "questions.json" || info.TotalQuestions != 4 {
		t.Errorf("previous bank lost: %+v, %v", info, err)
	}
}

func TestLoadBank_Default(t *testing.T) {
	es, dir := newService(t)
	if _, err := es.LoadBank(""); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest without a default bank, got %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	es = service.NewExamService(
		store.BankFiles{Dir: dir, Default: "questions.json"},
		store.WrongBooks{Dir: filepath.Join(dir, "wrong_questions"), Logger: logger},
		nil,
		logger,
	)
	info, err := es.LoadBank("")
	if err != nil {
		t.Fatalf("LoadBank: %v", err)
	}
	if info.File != "questions.json" || info.TotalQuestions != 4 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestCreateSession_Validation(t *testing.T) {
	es, _ := newService(t)
	if _, err := es.CreateSession(practicesession.SessionConfig{Quotas: practicesession.Quotas{question.TypeFillBlank: 1}}); !errors.Is(err, service.ErrNoBankLoaded) {
		t.Errorf("expected ErrNoBankLoaded, got %v", err)
	}

	es = loaded(t)
	tests := []practicesession.SessionConfig{
		{},
		{Quotas: practicesession.Quotas{question.TypeFillBlank: -1}},
		{Ratios: practicesession.Ratios{question.TypeFillBlank: 50}},
	}
	for _, cfg := range tests {
		if _, err := es.CreateSession(cfg); !errors.Is(err, service.ErrInvalidRequest) {
			t.Errorf("CreateSession(%+v) = %v, want ErrInvalidRequest", cfg, err)
		}
	}
}

func TestCreateSession_ByRatio(t *testing.T) {
	es := loaded(t)

	sum, err := es.CreateSession(practicesession.SessionConfig{
		Total:  3,
		Ratios: practicesession.Ratios{question.TypeSingleChoice: 50, question.TypeFillBlank: 50},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	// floor(1.5) = 1 each, the shortfall goes to single choice first.
	if sum.TypeCounts["单选题"] != 2 || sum.TypeCounts["填空题"] != 1 {
		t.Errorf("unexpected type counts %v", sum.TypeCounts)
	}
}

func TestQuestion_MasksAnswerUntilViewed(t *testing.T) {
	es := loaded(t)
	sid := allQuestions(t, es, false)

	view, err := es.Question(sid, 2)
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	if view.Type != question.TypeTrueFalse {
		t.Fatalf("expected true/false at position 2, got %q", view.Type)
	}
	if len(view.CorrectAnswer) != 0 || view.Analysis != "" || view.IsAnswerViewed {
		t.Errorf("answer leaked before viewing: %+v", view)
	}

	ans, err := es.ViewAnswer(sid, 0)
	if err != nil {
		t.Fatalf("ViewAnswer: %v", err)
	}
	view, _ = es.Question(sid, 0)
	if !view.IsAnswerViewed || view.Analysis != ans.Analysis || len(view.CorrectAnswer) != 1 {
		t.Errorf("expected revealed answer, got %+v", view)
	}

	if _, err := es.Question(sid, 4); !errors.Is(err, practicesession.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := es.Question("nope", 0); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSubmit(t *testing.T) {
	es := loaded(t)
	sid := allQuestions(t, es, false)

	// Answer the single choice questions correctly by revealing them first.
	for i := 0; i < 2; i++ {
		ans, err := es.ViewAnswer(sid, i)
		if err != nil {
			t.Fatal(err)
		}
		if err := es.SubmitAnswer(sid, i, ans.CorrectAnswer); err != nil {
			t.Fatal(err)
		}
	}
	es.SubmitAnswer(sid, 2, []string{"错误"})
	es.SubmitAnswer(sid, 3, []string{"b", "a"})

	st, err := es.Status(sid)
	if err != nil || !st.CanSubmit || st.Progress.Answered != 4 || st.Progress.Viewed != 2 {
		t.Errorf("unexpected status %+v, %v", st, err)
	}

	res, err := es.Submit(sid)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.CorrectCount != 2 || res.Score != 50 || len(res.Wrong) != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Wrong[0].ID != 3 || res.Wrong[0].UserAnswer[0] != "错误" {
		t.Errorf("unexpected wrong entry %+v", res.Wrong[0])
	}
}

func TestStudyMode(t *testing.T) {
	es := loaded(t)
	sid := allQuestions(t, es, true)

	view, err := es.Question(sid, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.CorrectAnswer) == 0 || view.Analysis == "" {
		t.Errorf("study mode shows answers immediately, got %+v", view)
	}

	if _, err := es.Submit(sid); !errors.Is(err, service.ErrSubmissionDisabled) {
		t.Errorf("expected ErrSubmissionDisabled, got %v", err)
	}
	if _, err := es.SaveWrongBook(sid, "", "", ""); !errors.Is(err, service.ErrSubmissionDisabled) {
		t.Errorf("expected ErrSubmissionDisabled, got %v", err)
	}
}

func TestSaveWrongBook(t *testing.T) {
	es := loaded(t)
	sid := allQuestions(t, es, false)

	saved, err := es.SaveWrongBook(sid, "第一次", "first", service.FormatEnvelope)
	if err != nil {
		t.Fatalf("SaveWrongBook: %v", err)
	}
	if saved.FileName != "first.json" {
		t.Errorf("unexpected file name %q", saved.FileName)
	}

	arr, err := es.SaveWrongBook(sid, "", "flat", service.FormatArray)
	if err != nil {
		t.Fatalf("SaveWrongBook array: %v", err)
	}
	qs, err := store.ReadQuestions(arr.Path)
	if err != nil || len(qs) != 4 {
		t.Errorf("expected 4 records in bare array, got %d, %v", len(qs), err)
	}

	if _, err := es.SaveWrongBook(sid, "", "", "xml"); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}

	books, err := es.WrongBooks()
	if err != nil || len(books) != 2 {
		t.Fatalf("WrongBooks() = %v, %v", books, err)
	}
	counts := map[string]int{}
	for _, b := range books {
		counts[b.FileName] = b.TotalQuestions
	}
	if counts["first.json"] != 4 || counts["flat.json"] != 4 {
		t.Errorf("expected both formats listed with 4 questions, got %v", counts)
	}
}

func TestSaveWrongBook_AllCorrect(t *testing.T) {
	es := loaded(t)
	sum, err := es.CreateSession(practicesession.SessionConfig{
		Quotas: practicesession.Quotas{question.TypeTrueFalse: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	es.SubmitAnswer(sum.SessionID, 0, []string{"正确"})

	if _, err := es.SaveWrongBook(sum.SessionID, "", "", ""); !errors.Is(err, store.ErrNothingToExport) {
		t.Errorf("expected ErrNothingToExport, got %v", err)
	}
}

func TestGenerateWrongBook(t *testing.T) {
	es := loaded(t)
	sid := allQuestions(t, es, false)

	if _, err := es.GenerateWrongBook(sid, nil, nil); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := es.GenerateWrongBook(sid, []int{0, 99}, nil); !errors.Is(err, store.ErrNothingToExport) {
		t.Errorf("expected ErrNothingToExport for positions outside the session, got %v", err)
	}

	saved, err := es.GenerateWrongBook(sid, []int{3, 4}, map[string][]string{"3": {"错误"}})
	if err != nil {
		t.Fatalf("GenerateWrongBook: %v", err)
	}
	books, _ := es.WrongBooks()
	if len(books) != 1 || books[0].FileName != saved.FileName || books[0].TotalQuestions != 2 {
		t.Errorf("unexpected books %+v", books)
	}
}

func TestSaveWrongQuestions(t *testing.T) {
	es, _ := newService(t)

	if _, err := es.SaveWrongQuestions("", "", nil); !errors.Is(err, store.ErrNothingToExport) {
		t.Errorf("expected ErrNothingToExport, got %v", err)
	}

	qs := []grader.WrongQuestion{grader.NewWrongQuestion(0, question.Question{Type: question.TypeFillBlank}, []string{"x"})}
	if _, err := es.SaveWrongQuestions("mine", "mine.json", qs); err != nil {
		t.Errorf("SaveWrongQuestions: %v", err)
	}
}

func TestCloseSession(t *testing.T) {
	es := loaded(t)
	sid := allQuestions(t, es, false)

	if err := es.CloseSession(sid); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}
	if err := es.CloseSession(sid); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	es := loaded(t)
	a := allQuestions(t, es, false)
	b := allQuestions(t, es, false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); es.SubmitAnswer(a, 3, []string{"a", "b"}) }()
		go func() { defer wg.Done(); es.SubmitAnswer(b, 3, []string{"x"}) }()
	}
	wg.Wait()

	va, _ := es.Question(a, 3)
	vb, _ := es.Question(b, 3)
	if len(va.UserAnswer) != 2 || len(vb.UserAnswer) != 1 {
		t.Errorf("answers leaked across sessions: %v / %v", va.UserAnswer, vb.UserAnswer)
	}
}
