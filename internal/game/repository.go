package game

import (
	"context"

	"trivia-cli/internal/jservice"
)

// QuestionsFetcher returns up to amount raw questions from the remote source.
type QuestionsFetcher func(ctx context.Context, amount int) ([]jservice.RawQuestion, error)

// Translator translates ordered text segments, returning them in the same order.
type Translator interface {
	Translate(ctx context.Context, segments []string) ([]string, error)
}

// ResultsStore is an append-only history of finished sessions. ReadAll returns
// raw rows, oldest first; a store that has never been written returns no rows.
type ResultsStore interface {
	Append(ctx context.Context, record ScoreRecord) error
	ReadAll(ctx context.Context) ([][]string, error)
}
