package game

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	inputTranslate = "1"
	inputHint      = "2"
)

var separator = strings.Repeat("-", 50)

// PromptPlayerName asks for the player's name before the game starts.
func (s *Session) PromptPlayerName(ctx context.Context, reader *bufio.Reader) error {
	fmt.Fprint(s.out, "Enter your name to start the game: ")
	line, err := readLine(ctx, reader)
	if err != nil {
		return err
	}
	s.SetPlayerName(line)
	return nil
}

// Play asks every loaded question in order. Input "1" turns translation on,
// "2" spends a hint, anything else is graded as the answer.
func (s *Session) Play(ctx context.Context, reader *bufio.Reader) error {
	for idx, q := range s.questions {
		if err := ctx.Err(); err != nil {
			return err
		}

		q.MarkAsked()
		fmt.Fprintf(s.out, "Question #%d - worth %d points\n%s\n\n", idx+1, q.Value, q.TextPrimary)

		if err := s.askQuestion(ctx, reader, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) askQuestion(ctx context.Context, reader *bufio.Reader, q *Question) error {
	for {
		s.printMenu(q)

		line, err := readLine(ctx, reader)
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case inputTranslate:
			s.translationOn = true
		case inputHint:
			s.useHint(q)
		default:
			s.printOutcome(q.Grade(line))
			return nil
		}
	}
}

func (s *Session) printMenu(q *Question) {
	if !s.translationOn {
		fmt.Fprintln(s.out, "Enter 1 to enable translation")
	} else if q.IsTranslated() {
		fmt.Fprintf(s.out, "%s\n\n", q.TextSecondary)
	}

	if s.hints > 0 && !q.TipUsed() {
		fmt.Fprintln(s.out, "Enter 2 for a hint")
	}
}

func (s *Session) useHint(q *Question) {
	if s.hints <= 0 {
		fmt.Fprintln(s.out, "Sorry, no hints left")
		return
	}

	s.hints--
	primary, secondary := q.Hint(s.rnd)
	fmt.Fprintln(s.out, primary, secondary)
}

func (s *Session) printOutcome(outcome GradeOutcome) {
	if outcome.Correct {
		fmt.Fprintln(s.out, "Yes, that's the right answer!")
		fmt.Fprintln(s.out)
		return
	}
	fmt.Fprintf(s.out, "Sorry, that's wrong. The correct answer is: %s\n\n", displayAnswer(outcome))
}

type lineResult struct {
	line string
	err  error
}

// readLine returns the next trimmed input line. End of input yields an empty
// line so the game runs to completion on a closed stdin. A cancelled context
// returns immediately; the pending read is abandoned and the reader must not
// be used again.
func readLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan lineResult, 1)
	go func() {
		line, err := reader.ReadString('\n')
		done <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}

func capitalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(first)) + strings.ToLower(name[size:])
}
