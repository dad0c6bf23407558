package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/worker"
)

type pageResult struct {
	path      string
	questions []question.Question
	err       error
}

// HTMLFiles lists the *.html files of dir sorted by name.
func HTMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read page directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".html") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// ExtractDir parses every page of dir on up to workers goroutines and
// concatenates the questions in file-name order. Ids restart at 1 for every
// page. A page that cannot be read is logged and skipped.
func (e *Extractor) ExtractDir(ctx context.Context, dir string, workers int) ([]question.Question, error) {
	files, err := HTMLFiles(dir)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool[pageResult](workers, len(files))
	for i, path := range files {
		pool.Submit(strconv.Itoa(i), func() pageResult {
			if err := ctx.Err(); err != nil {
				return pageResult{path: path, err: err}
			}
			qs, err := e.ExtractFile(path)
			return pageResult{path: path, questions: qs, err: err}
		})
	}
	pool.Close()

	pages := make([]pageResult, len(files))
	for r := range pool.Results() {
		i, _ := strconv.Atoi(r.JobID)
		pages[i] = r.Output
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := []question.Question{}
	for _, p := range pages {
		if p.err != nil {
			e.logger.Error("skipping page", "file", p.path, "error", p.err)
			continue
		}
		e.logger.Info("page extracted", "file", p.path, "questions", len(p.questions))
		all = append(all, p.questions...)
	}
	return all, nil
}
