package results

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"trivia-cli/internal/game"
)

const DefaultPath = "results.csv"

// FileStore keeps the results history as CSV rows of name, score and unix
// seconds, one session per line.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Append(_ context.Context, record game.ScoreRecord) error {
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(record.Row()); err != nil {
		_ = file.Close()
		return fmt.Errorf("write results row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("flush results row: %w", err)
	}

	return file.Close()
}

// ReadAll returns every stored row. A missing file is an empty history.
func (s *FileStore) ReadAll(_ context.Context) ([][]string, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Short rows are returned as-is and rejected later, row by row.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	return rows, nil
}
