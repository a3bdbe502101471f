package game

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrMalformedRow = errors.New("malformed result row")
)

// ScoreRecord is one finished session as stored in the results history.
type ScoreRecord struct {
	Name      string
	Score     int
	Timestamp time.Time
}

func NewScoreRecord(name string, score int, at time.Time) ScoreRecord {
	return ScoreRecord{
		Name:      name,
		Score:     score,
		Timestamp: at.Truncate(time.Second),
	}
}

// ZeroRecord is returned when no valid history exists.
func ZeroRecord() ScoreRecord {
	return ScoreRecord{Timestamp: time.Unix(0, 0)}
}

func (r ScoreRecord) IsZero() bool {
	return r.Name == "" && r.Score == 0 && r.Timestamp.Unix() == 0
}

// Row encodes the record as stored fields: name, score, unix seconds.
func (r ScoreRecord) Row() []string {
	return []string{
		r.Name,
		strconv.Itoa(r.Score),
		strconv.FormatInt(r.Timestamp.Unix(), 10),
	}
}

// ParseScoreRecord converts a raw stored row into a typed record. Timestamps
// may carry a fractional part; it is dropped.
func ParseScoreRecord(row []string) (ScoreRecord, error) {
	if len(row) < 3 {
		return ScoreRecord{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedRow, len(row))
	}

	score, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return ScoreRecord{}, fmt.Errorf("%w: score %q: %v", ErrMalformedRow, row[1], err)
	}
	if score < 0 {
		return ScoreRecord{}, fmt.Errorf("%w: negative score %d", ErrMalformedRow, score)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return ScoreRecord{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRow, row[2])
	}

	return ScoreRecord{
		Name:      row[0],
		Score:     score,
		Timestamp: time.Unix(int64(seconds), 0),
	}, nil
}

// ReconcileBest picks the best record from raw history rows: highest score
// first, later timestamp on ties. Malformed rows are skipped.
func ReconcileBest(rows [][]string, logger *zap.Logger) ScoreRecord {
	best := ZeroRecord()
	found := false

	for idx, row := range rows {
		if len(row) == 0 {
			continue
		}

		record, err := ParseScoreRecord(row)
		if err != nil {
			logger.Warn("skipping result row", zap.Int("row", idx), zap.Error(err))
			continue
		}

		if !found || recordBefore(record, best) {
			best = record
			found = true
		}
	}

	return best
}

func recordBefore(a, b ScoreRecord) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Timestamp.After(b.Timestamp)
}

// Unit is the display unit picked for an elapsed duration.
type Unit string

const (
	UnitDays    Unit = "days"
	UnitHours   Unit = "hours"
	UnitMinutes Unit = "minutes"
	UnitSeconds Unit = "seconds"
)

// Elapsed is a duration split into whole days, hours, minutes and seconds.
type Elapsed struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

func ElapsedSince(record ScoreRecord, now time.Time) Elapsed {
	total := int64(now.Sub(record.Timestamp) / time.Second)
	if total < 0 {
		total = 0
	}

	return Elapsed{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}
}

// Largest returns the biggest non-zero unit, falling back to seconds.
func (e Elapsed) Largest() (int, Unit) {
	switch {
	case e.Days > 0:
		return e.Days, UnitDays
	case e.Hours > 0:
		return e.Hours, UnitHours
	case e.Minutes > 0:
		return e.Minutes, UnitMinutes
	default:
		return e.Seconds, UnitSeconds
	}
}

func (e Elapsed) String() string {
	value, unit := e.Largest()
	return fmt.Sprintf("%d %s", value, unit)
}
