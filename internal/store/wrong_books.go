package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/grader"
)

const (
	DefaultBookTitle = "错题本"

	generatedAtLayout = "2006-01-02 15:04:05"
	fileStampLayout   = "20060102_150405"
)

// WrongBook is the enveloped wrong-question document.
type WrongBook struct {
	Title          string                 `json:"title"`
	GeneratedAt    string                 `json:"generated_at"`
	TotalQuestions int                    `json:"total_questions"`
	Questions      []grader.WrongQuestion `json:"questions"`
}

// SavedBook tells where a wrong-question document was written.
type SavedBook struct {
	FileName string `json:"file_name"`
	Path     string `json:"file_path"`
}

// BookInfo summarises one saved wrong-question document.
type BookInfo struct {
	FileName       string `json:"file_name"`
	Title          string `json:"title"`
	TotalQuestions int    `json:"total_questions"`
	GeneratedAt    string `json:"generated_at"`
	FileSize       int64  `json:"file_size"`
}

// WrongBooks stores wrong-question documents in one directory.
type WrongBooks struct {
	Dir    string
	Logger *slog.Logger
}

// Save writes qs as an enveloped document. An empty title becomes the
// default one; an empty fileName is generated from now.
func (w WrongBooks) Save(title, fileName string, qs []grader.WrongQuestion, now time.Time) (SavedBook, error) {
	if len(qs) == 0 {
		return SavedBook{}, ErrNothingToExport
	}
	if title == "" {
		title = DefaultBookTitle
	}

	name := sanitizeFileName(fileName, now)
	path := filepath.Join(w.Dir, name)

	book := WrongBook{
		Title:          title,
		GeneratedAt:    now.Format(generatedAtLayout),
		TotalQuestions: len(qs),
		Questions:      qs,
	}
	if err := writeJSON(path, book); err != nil {
		return SavedBook{}, fmt.Errorf("save wrong book: %w", err)
	}
	return SavedBook{FileName: name, Path: path}, nil
}

// sanitizeFileName keeps only the base name of a caller-chosen file name and
// forces the .json extension.
func sanitizeFileName(name string, now time.Time) string {
	if name != "" {
		name = filepath.Base(name)
		name = strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	}
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return DefaultBookTitle + "_" + now.Format(fileStampLayout) + jsonExt
	}
	if !strings.HasSuffix(name, jsonExt) {
		name += jsonExt
	}
	return name
}

// List returns the saved documents, enveloped or bare arrays, newest first.
// Files that cannot be read or decoded are logged and skipped.
func (w WrongBooks) List() ([]BookInfo, error) {
	entries, err := os.ReadDir(w.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []BookInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list wrong books: %w", err)
	}

	books := []BookInfo{}
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), jsonExt) {
			continue
		}
		info, err := w.readInfo(e)
		if err != nil {
			w.logger().Warn("skipping wrong book", "file", e.Name(), "error", err)
			continue
		}
		books = append(books, info)
	}

	sort.SliceStable(books, func(i, j int) bool {
		if books[i].GeneratedAt != books[j].GeneratedAt {
			return books[i].GeneratedAt > books[j].GeneratedAt
		}
		return books[i].FileName < books[j].FileName
	})
	return books, nil
}

func (w WrongBooks) readInfo(e fs.DirEntry) (BookInfo, error) {
	fi, err := e.Info()
	if err != nil {
		return BookInfo{}, err
	}
	raw, err := os.ReadFile(filepath.Join(w.Dir, e.Name()))
	if err != nil {
		return BookInfo{}, err
	}

	// A bare array has no header: it takes the default title and the file
	// time.
	if trimmed := bytes.TrimLeft(raw, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return BookInfo{}, err
		}
		return BookInfo{
			FileName:       e.Name(),
			Title:          DefaultBookTitle,
			TotalQuestions: len(records),
			GeneratedAt:    fi.ModTime().Format(generatedAtLayout),
			FileSize:       fi.Size(),
		}, nil
	}

	var head struct {
		Title          *string `json:"title"`
		TotalQuestions int     `json:"total_questions"`
		GeneratedAt    string  `json:"generated_at"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return BookInfo{}, err
	}

	info := BookInfo{
		FileName:       e.Name(),
		Title:          DefaultBookTitle,
		TotalQuestions: head.TotalQuestions,
		GeneratedAt:    head.GeneratedAt,
		FileSize:       fi.Size(),
	}
	if head.Title != nil {
		info.Title = *head.Title
	}
	return info, nil
}

func (w WrongBooks) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// ExportQuestions writes qs as a bare array of question records.
func ExportQuestions(path string, qs []question.Question) error {
	if len(qs) == 0 {
		return ErrNothingToExport
	}
	return WriteBank(path, qs)
}

// SaveQuestions writes qs as a bare array of question records into the
// wrong-book directory, under the same file naming rules as Save.
func (w WrongBooks) SaveQuestions(fileName string, qs []question.Question, now time.Time) (SavedBook, error) {
	name := sanitizeFileName(fileName, now)
	path := filepath.Join(w.Dir, name)
	if err := ExportQuestions(path, qs); err != nil {
		return SavedBook{}, err
	}
	return SavedBook{FileName: name, Path: path}, nil
}
