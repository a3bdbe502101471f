package sqlite

import (
	"context"
	"fmt"
	"strconv"

	"trivia-cli/internal/game"
)

func (s *SQLiteStore) Append(ctx context.Context, record game.ScoreRecord) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO results (player_name, score, recorded_at_unix) VALUES (?, ?, ?)`,
		record.Name,
		record.Score,
		record.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ReadAll returns the history in insertion order, encoded the same way as
// the CSV store so both feed the same reconciliation.
func (s *SQLiteStore) ReadAll(ctx context.Context) ([][]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT player_name, score, recorded_at_unix
		 FROM results
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	history := make([][]string, 0)
	for rows.Next() {
		var (
			name       string
			score      int
			recordedAt int64
		)
		if err := rows.Scan(&name, &score, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		history = append(history, []string{
			name,
			strconv.Itoa(score),
			strconv.FormatInt(recordedAt, 10),
		})
	}

	return history, rows.Err()
}
