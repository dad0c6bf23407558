package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/domain/questionbank"
)

const jsonExt = ".json"

// BankFiles serves bank documents from one directory. Names passed to
// Resolve and Load must stay inside it.
type BankFiles struct {
	Dir string
	// Default is the bank loaded when a request names none.
	Default string
}

// List returns the JSON documents in the directory, sorted by name.
// A missing directory has no documents.
func (b BankFiles) List() ([]string, error) {
	entries, err := os.ReadDir(b.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), jsonExt) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Resolve maps a requested name to an absolute path inside Dir.
func (b BankFiles) Resolve(name string) (string, error) {
	base, err := filepath.Abs(b.Dir)
	if err != nil {
		return "", fmt.Errorf("resolve bank directory: %w", err)
	}
	path := filepath.Join(base, name)

	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathSecurityError{Path: name, Reason: "outside the bank directory"}
	}
	if !strings.HasSuffix(path, jsonExt) {
		return "", &PathSecurityError{Path: name, Reason: "not a .json document"}
	}
	return path, nil
}

// Load resolves name and loads it as a bank.
func (b BankFiles) Load(name string) (*questionbank.Bank, error) {
	path, err := b.Resolve(name)
	if err != nil {
		return nil, err
	}
	return LoadPath(path)
}

// LoadPath loads a bank document without any containment check.
func LoadPath(path string) (*questionbank.Bank, error) {
	qs, err := ReadQuestions(path)
	if err != nil {
		return nil, err
	}
	return questionbank.New(qs), nil
}

// ReadQuestions reads the raw records of a bank document. Legacy Choice
// types are left as stored.
func ReadQuestions(path string) ([]question.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Reason: readReason(err), Path: path, Err: err}
	}
	qs, err := decodeBank(raw)
	if err != nil {
		return nil, &LoadError{Reason: InvalidFormat, Path: path, Err: err}
	}
	return qs, nil
}

func readReason(err error) LoadReason {
	if errors.Is(err, fs.ErrNotExist) {
		return NotFound
	}
	// Anything else that stops the read (permissions, a directory in place
	// of a file) is reported as unreadable.
	return PermissionDenied
}

func decodeBank(raw []byte) ([]question.Question, error) {
	if err := validateBank(raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var book struct {
			Questions []question.Question `json:"questions"`
		}
		if err := json.Unmarshal(raw, &book); err != nil {
			return nil, err
		}
		return book.Questions, nil
	}

	var qs []question.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// WriteBank replaces the document at path with qs. The new content is
// written to a temporary file first so readers never see a partial document.
func WriteBank(path string, qs []question.Question) error {
	if qs == nil {
		qs = []question.Question{}
	}
	return writeJSON(path, qs)
}

func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
