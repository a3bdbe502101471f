package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultQuestionCount = 5
	DefaultHintBudget    = 3

	maxLoadAttempts = 2
)

var (
	ErrNoResultsStore = errors.New("results store is not configured")
)

// Session drives a single game: loading, translation, play, scoring and
// persistence. It is not safe for concurrent use.
type Session struct {
	planned       int
	hints         int
	questions     []*Question
	player        string
	translationOn bool

	fetcher    QuestionsFetcher
	translator Translator
	results    ResultsStore
	logger     *zap.Logger
	out        io.Writer
	now        func() time.Time
	rnd        *rand.Rand
}

// Options carries a session's collaborators. Nil fields fall back to no-op or
// process defaults.
type Options struct {
	Fetcher    QuestionsFetcher
	Translator Translator
	Results    ResultsStore
	Logger     *zap.Logger
	Out        io.Writer
	Now        func() time.Time
	Rand       *rand.Rand
}

// LoadReport summarizes how many questions were collected.
type LoadReport struct {
	Planned int
	Loaded  int
}

func (r LoadReport) Partial() bool {
	return r.Loaded < r.Planned
}

func NewSession(questionCount, hintBudget int, opts Options) *Session {
	if questionCount < 0 {
		questionCount = 0
	}
	if hintBudget < 0 {
		hintBudget = 0
	}

	s := &Session{
		planned:    questionCount,
		hints:      hintBudget,
		questions:  make([]*Question, 0, questionCount),
		fetcher:    opts.Fetcher,
		translator: opts.Translator,
		results:    opts.Results,
		logger:     opts.Logger,
		out:        opts.Out,
		now:        opts.Now,
		rnd:        opts.Rand,
	}

	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.out == nil {
		s.out = io.Discard
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

func (s *Session) Planned() int {
	return s.planned
}

func (s *Session) HintsLeft() int {
	return s.hints
}

func (s *Session) Questions() []*Question {
	return s.questions
}

func (s *Session) Player() string {
	return s.player
}

func (s *Session) TranslationOn() bool {
	return s.translationOn
}

// SetPlayerName records the player's name; only the first call has effect.
func (s *Session) SetPlayerName(name string) {
	if s.player != "" {
		return
	}
	s.player = capitalize(name)
}

// AddQuestion appends an already built question, respecting the planned size.
func (s *Session) AddQuestion(q *Question) bool {
	if q == nil || len(s.questions) >= s.planned {
		return false
	}
	s.questions = append(s.questions, q)
	return true
}

// ComputeScore sums the value of every question that was asked and answered
// correctly.
func (s *Session) ComputeScore() int {
	score := 0
	for _, q := range s.questions {
		if q.IsAsked() && q.IsCorrect() {
			score += q.Value
		}
	}
	return score
}

func (s *Session) BuildRecord() ScoreRecord {
	return NewScoreRecord(s.player, s.ComputeScore(), s.now())
}

// SaveResult appends this session's record to the results store. Write
// failures are returned: a finished session must not be lost silently.
func (s *Session) SaveResult(ctx context.Context) (ScoreRecord, error) {
	record := s.BuildRecord()
	if s.results == nil {
		return record, ErrNoResultsStore
	}
	if err := s.results.Append(ctx, record); err != nil {
		return record, fmt.Errorf("save result: %w", err)
	}
	return record, nil
}

// BestResult reads the full history back and returns the best record. A read
// failure degrades to an empty history.
func (s *Session) BestResult(ctx context.Context) ScoreRecord {
	if s.results == nil {
		return ZeroRecord()
	}

	rows, err := s.results.ReadAll(ctx)
	if err != nil {
		s.logger.Warn("failed to read results history", zap.Error(err))
		fmt.Fprintln(s.out, "Could not load previous results.")
		return ZeroRecord()
	}
	return ReconcileBest(rows, s.logger)
}

// PrintResults renders the final comparison between this session and the best
// record on file.
func (s *Session) PrintResults(best ScoreRecord) {
	fmt.Fprintf(s.out, "%s\nWell, %s, the game is over.\nYour score: %d points.\n",
		separator, s.player, s.ComputeScore())

	if best.IsZero() {
		fmt.Fprintln(s.out, "No best score on record yet.")
		return
	}

	elapsed := ElapsedSince(best, s.now())
	fmt.Fprintf(s.out, "Best score: %d points, set by %s %s ago.\nSomething to aim for!\n",
		best.Score, best.Name, elapsed)
}
