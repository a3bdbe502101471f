package redis

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"trivia-cli/internal/game"
)

const DefaultKey = "trivia:results"

// Store keeps the results history in a Redis list; each element is one
// CSV-encoded row, appended with RPUSH so LRANGE returns oldest first.
type Store struct {
	client *redis.Client
	key    string
}

func NewStore(client *redis.Client, key string) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

func (s *Store) Append(ctx context.Context, record game.ScoreRecord) error {
	line, err := encodeRow(record.Row())
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, s.key, line).Err(); err != nil {
		return fmt.Errorf("append result: %w", err)
	}
	return nil
}

// ReadAll returns every stored row. Elements that are not valid CSV come back
// as a single field so reconciliation can reject them individually.
func (s *Store) ReadAll(ctx context.Context) ([][]string, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row, err := csv.NewReader(strings.NewReader(item)).Read()
		if err != nil {
			row = []string{item}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func encodeRow(fields []string) (string, error) {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)
	if err := writer.Write(fields); err != nil {
		return "", err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return strings.TrimRight(builder.String(), "\r\n"), nil
}
