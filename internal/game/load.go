package game

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"trivia-cli/internal/jservice"
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	ErrMissingQuestion = errors.New("question text is missing")
	ErrMissingAnswer   = errors.New("answer text is missing")
	ErrNegativeValue   = errors.New("question value is negative")

	markupTags = regexp.MustCompile(`(?i)</?(i|b|u|em|strong)>`)
)

// Load fills the session with questions from the fetcher. Each attempt asks
// for the remaining shortfall; after two attempts a partial result is kept.
func (s *Session) Load(ctx context.Context) LoadReport {
	for attempt := 1; attempt <= maxLoadAttempts && len(s.questions) < s.planned; attempt++ {
		if err := ctx.Err(); err != nil {
			break
		}

		shortfall := s.planned - len(s.questions)
		raw := s.fetchBatch(ctx, attempt, shortfall)

		for idx, item := range raw {
			if len(s.questions) >= s.planned {
				break
			}

			question, err := BuildQuestion(item)
			if err != nil {
				s.logger.Warn("skipping question record",
					zap.Int("attempt", attempt),
					zap.Int("record", idx),
					zap.Error(err),
				)
				fmt.Fprintln(s.out, "Could not load a question, trying the next one.")
				continue
			}
			s.questions = append(s.questions, question)
		}
	}

	report := LoadReport{Planned: s.planned, Loaded: len(s.questions)}
	if report.Partial() {
		fmt.Fprintf(s.out, "Loaded %d of %d questions.\n", report.Loaded, report.Planned)
	} else {
		fmt.Fprintf(s.out, "Questions loaded successfully!\n%s\n", separator)
	}
	return report
}

func (s *Session) fetchBatch(ctx context.Context, attempt, amount int) []jservice.RawQuestion {
	if s.fetcher == nil {
		s.logger.Warn("question fetcher is not configured")
		return nil
	}

	raw, err := s.fetcher(ctx, amount)
	if err != nil {
		s.logger.Warn("question fetch failed",
			zap.Int("attempt", attempt),
			zap.Int("amount", amount),
			zap.Error(err),
		)
		fmt.Fprintln(s.out, "The question server could not be reached.")
		return nil
	}
	return raw
}

// BuildQuestion validates a raw record and converts it into a Question.
func BuildQuestion(raw jservice.RawQuestion) (*Question, error) {
	text := strings.TrimSpace(html.UnescapeString(raw.Question))
	if text == "" {
		return nil, ErrMissingQuestion
	}

	answer := cleanAnswer(raw.Answer)
	if answer == "" {
		return nil, ErrMissingAnswer
	}

	points, err := raw.Points()
	if err != nil {
		return nil, err
	}
	if points < 0 {
		return nil, ErrNegativeValue
	}

	return NewQuestion(text, answer, points/10), nil
}

func cleanAnswer(answer string) string {
	answer = markupTags.ReplaceAllString(answer, "")
	answer = html.UnescapeString(answer)
	answer = strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, answer)
	return strings.Join(strings.Fields(answer), " ")
}
