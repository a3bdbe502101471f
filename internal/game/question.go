package game

import (
	"math/rand"
	"strings"
	"unicode"
)

const maskRune = '*'

// PlayState tracks where a question is in the ask/answer cycle.
type PlayState int

const (
	StateUnasked PlayState = iota
	StateAsked
	StateGraded
)

// TranslationState tracks whether the secondary-language fields are filled.
type TranslationState int

const (
	Untranslated TranslationState = iota
	Translated
)

// Question is a single bilingual trivia item. Correctness is only recorded in
// the graded state, so a question can never be correct without being asked.
type Question struct {
	TextPrimary     string
	TextSecondary   string
	AnswerPrimary   string
	AnswerSecondary string
	Value           int

	play        PlayState
	translation TranslationState
	correct     bool
	tipUsed     bool
}

// GradeOutcome is the result of a single answer attempt.
type GradeOutcome struct {
	Correct         bool
	AnswerPrimary   string
	AnswerSecondary string
}

func NewQuestion(text, answer string, value int) *Question {
	return &Question{
		TextPrimary:   text,
		AnswerPrimary: answer,
		Value:         value,
	}
}

func (q *Question) MarkAsked() {
	if q.play == StateUnasked {
		q.play = StateAsked
	}
}

func (q *Question) IsAsked() bool {
	return q.play != StateUnasked
}

func (q *Question) IsCorrect() bool {
	return q.play == StateGraded && q.correct
}

func (q *Question) State() PlayState {
	return q.play
}

func (q *Question) TipUsed() bool {
	return q.tipUsed
}

func (q *Question) IsTranslated() bool {
	return q.translation == Translated
}

// SetTranslation fills the secondary-language fields once.
func (q *Question) SetTranslation(text, answer string) {
	if q.translation == Translated {
		return
	}
	q.TextSecondary = text
	q.AnswerSecondary = answer
	q.translation = Translated
}

// Hint returns both answers with roughly half of their characters masked.
// The two masks are drawn independently.
func (q *Question) Hint(rnd *rand.Rand) (string, string) {
	q.tipUsed = true
	return maskAnswer(q.AnswerPrimary, rnd), maskAnswer(q.AnswerSecondary, rnd)
}

// Grade checks a free-text answer against both language variants and records
// the verdict. An answer is accepted when more than 80% of the characters of
// either correct answer appear in it.
func (q *Question) Grade(userAnswer string) GradeOutcome {
	q.MarkAsked()

	user := normalizeAnswer(userAnswer)
	accepted := matchesAnswer(user, normalizeAnswer(q.AnswerPrimary))
	if !accepted && q.IsTranslated() {
		accepted = matchesAnswer(user, normalizeAnswer(q.AnswerSecondary))
	}

	q.play = StateGraded
	if accepted {
		q.correct = true
	}

	return GradeOutcome{
		Correct:         accepted,
		AnswerPrimary:   q.AnswerPrimary,
		AnswerSecondary: q.AnswerSecondary,
	}
}

func maskAnswer(answer string, rnd *rand.Rand) string {
	runes := []rune(answer)
	count := len(runes) / 2
	if count == 0 {
		return answer
	}

	for _, idx := range rnd.Perm(len(runes))[:count] {
		runes[idx] = maskRune
	}
	return string(runes)
}

func normalizeAnswer(answer string) []rune {
	normalized := make([]rune, 0, len(answer))
	for _, r := range answer {
		if unicode.IsSpace(r) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(r))
	}
	return normalized
}

// matchesAnswer reports whether the share of correct characters found in
// user (as a multiset) strictly exceeds 80%.
func matchesAnswer(user, correct []rune) bool {
	if len(correct) == 0 {
		return false
	}

	remaining := make(map[rune]int, len(correct))
	for _, r := range correct {
		remaining[r]++
	}

	matched := 0
	for _, r := range user {
		if remaining[r] > 0 {
			remaining[r]--
			matched++
		}
	}

	return matched*5 > len(correct)*4
}

func displayAnswer(outcome GradeOutcome) string {
	if strings.TrimSpace(outcome.AnswerSecondary) == "" {
		return outcome.AnswerPrimary
	}
	return outcome.AnswerPrimary + " (" + outcome.AnswerSecondary + ")"
}
