package game

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"trivia-cli/internal/jservice"
)

var fixedNow = time.Unix(1_700_000_000, 0)

type fakeFetcher struct {
	batches [][]jservice.RawQuestion
	errs    []error
	amounts []int
}

func (f *fakeFetcher) fetch(_ context.Context, amount int) ([]jservice.RawQuestion, error) {
	call := len(f.amounts)
	f.amounts = append(f.amounts, amount)

	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if call < len(f.batches) {
		return f.batches[call], nil
	}
	return nil, nil
}

type fakeTranslator struct {
	calls    int
	segments []string
	reply    func(segments []string) ([]string, error)
}

func (f *fakeTranslator) Translate(_ context.Context, segments []string) ([]string, error) {
	f.calls++
	f.segments = segments
	return f.reply(segments)
}

type memoryStore struct {
	rows      [][]string
	appendErr error
	readErr   error
}

func (m *memoryStore) Append(_ context.Context, record ScoreRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.rows = append(m.rows, record.Row())
	return nil
}

func (m *memoryStore) ReadAll(_ context.Context) ([][]string, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.rows, nil
}

func rawQuestion(n, value int) jservice.RawQuestion {
	return jservice.RawQuestion{
		Question: "Question " + strconv.Itoa(n),
		Answer:   "Answer" + strconv.Itoa(n),
		Value:    json.RawMessage(strconv.Itoa(value)),
	}
}

func rawQuestions(count int) []jservice.RawQuestion {
	out := make([]jservice.RawQuestion, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, rawQuestion(i, i*100))
	}
	return out
}

func newTestSession(planned, hints int, opts Options) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	opts.Out = &out
	opts.Now = func() time.Time { return fixedNow }
	opts.Rand = rand.New(rand.NewSource(1))
	return NewSession(planned, hints, opts), &out
}

func inputReader(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestLoadNeverExceedsTargetAndKeepsOrder(t *testing.T) {
	fetcher := &fakeFetcher{batches: [][]jservice.RawQuestion{rawQuestions(20)}}
	session, _ := newTestSession(5, 3, Options{Fetcher: fetcher.fetch})

	report := session.Load(context.Background())
	if report.Loaded != 5 || report.Partial() {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(fetcher.amounts) != 1 || fetcher.amounts[0] != 5 {
		t.Fatalf("expected a single fetch for 5, got %v", fetcher.amounts)
	}
	for idx, q := range session.Questions() {
		want := "Question " + strconv.Itoa(idx+1)
		if q.TextPrimary != want {
			t.Fatalf("question %d = %q, want %q", idx, q.TextPrimary, want)
		}
	}
}

func TestLoadRequestsShortfallAndStopsAfterTwoAttempts(t *testing.T) {
	fetcher := &fakeFetcher{batches: [][]jservice.RawQuestion{
		{rawQuestion(1, 100), rawQuestion(2, 200)},
		{rawQuestion(3, 300)},
		{rawQuestion(4, 400), rawQuestion(5, 500)},
	}}
	session, out := newTestSession(5, 3, Options{Fetcher: fetcher.fetch})

	report := session.Load(context.Background())
	if report.Loaded != 3 || report.Planned != 5 || !report.Partial() {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(fetcher.amounts) != 2 || fetcher.amounts[0] != 5 || fetcher.amounts[1] != 3 {
		t.Fatalf("unexpected fetch amounts: %v", fetcher.amounts)
	}
	if !strings.Contains(out.String(), "Loaded 3 of 5 questions.") {
		t.Fatalf("expected partial load notice, got %q", out.String())
	}
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	fetcher := &fakeFetcher{batches: [][]jservice.RawQuestion{{
		{Question: "No value", Answer: "x", Value: json.RawMessage(`null`)},
		{Question: "", Answer: "x", Value: json.RawMessage(`100`)},
		{Question: "Bad value", Answer: "x", Value: json.RawMessage(`"high"`)},
		{Question: "Only punctuation", Answer: "<i>?!</i>", Value: json.RawMessage(`100`)},
		{Question: "Negative", Answer: "x", Value: json.RawMessage(`-100`)},
		{Question: "Fab &amp; Four", Answer: "<i>The</i> Beatles!", Value: json.RawMessage(`400`)},
	}}}
	session, _ := newTestSession(1, 3, Options{Fetcher: fetcher.fetch})

	report := session.Load(context.Background())
	if report.Loaded != 1 {
		t.Fatalf("expected 1 valid question, got %+v", report)
	}

	q := session.Questions()[0]
	if q.TextPrimary != "Fab & Four" {
		t.Fatalf("question text not unescaped: %q", q.TextPrimary)
	}
	if q.AnswerPrimary != "The Beatles" {
		t.Fatalf("answer not cleaned: %q", q.AnswerPrimary)
	}
	if q.Value != 40 {
		t.Fatalf("expected value 40, got %d", q.Value)
	}
}

func TestLoadTreatsFetchFailureAsEmptyBatch(t *testing.T) {
	fetcher := &fakeFetcher{
		errs:    []error{errors.New("boom")},
		batches: [][]jservice.RawQuestion{nil, rawQuestions(5)},
	}
	session, out := newTestSession(5, 3, Options{Fetcher: fetcher.fetch})

	report := session.Load(context.Background())
	if report.Loaded != 5 {
		t.Fatalf("expected recovery on second attempt, got %+v", report)
	}
	if !strings.Contains(out.String(), "could not be reached") {
		t.Fatalf("expected fetch failure notice, got %q", out.String())
	}
}

func TestBuildQuestionStripsMarkupAndPunctuation(t *testing.T) {
	q, err := BuildQuestion(jservice.RawQuestion{
		Question: "  Who wrote it?  ",
		Answer:   "<I>Mrs.</I> <b>Dalloway</b>'s  author",
		Value:    json.RawMessage(`1000`),
	})
	if err != nil {
		t.Fatalf("BuildQuestion failed: %v", err)
	}
	if q.TextPrimary != "Who wrote it?" {
		t.Fatalf("unexpected text %q", q.TextPrimary)
	}
	if q.AnswerPrimary != "Mrs Dalloways author" {
		t.Fatalf("unexpected answer %q", q.AnswerPrimary)
	}
	if q.Value != 100 {
		t.Fatalf("unexpected value %d", q.Value)
	}
}

func TestTranslateAllAppliesPairsInOrder(t *testing.T) {
	translator := &fakeTranslator{reply: func(segments []string) ([]string, error) {
		out := make([]string, len(segments))
		for i, s := range segments {
			out[i] = "ru:" + s
		}
		return out, nil
	}}
	session, _ := newTestSession(2, 3, Options{Translator: translator})
	session.AddQuestion(NewQuestion("Q1", "A1", 10))
	session.AddQuestion(NewQuestion("Q2", "A2", 20))

	if err := session.TranslateAll(context.Background()); err != nil {
		t.Fatalf("TranslateAll failed: %v", err)
	}
	if translator.calls != 1 {
		t.Fatalf("expected one batched call, got %d", translator.calls)
	}
	if strings.Join(translator.segments, "|") != "Q1|A1|Q2|A2" {
		t.Fatalf("unexpected segments: %v", translator.segments)
	}
	for idx, q := range session.Questions() {
		if !q.IsTranslated() {
			t.Fatalf("question %d not translated", idx)
		}
		if q.TextSecondary != "ru:"+q.TextPrimary || q.AnswerSecondary != "ru:"+q.AnswerPrimary {
			t.Fatalf("question %d has mismatched translation: %+v", idx, q)
		}
	}
}

func TestTranslateAllAbandonsOnMismatchOrError(t *testing.T) {
	replies := map[string]func([]string) ([]string, error){
		"mismatch": func(segments []string) ([]string, error) { return segments[:1], nil },
		"error":    func([]string) ([]string, error) { return nil, errors.New("quota exceeded") },
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			session, out := newTestSession(2, 3, Options{Translator: &fakeTranslator{reply: reply}})
			session.AddQuestion(NewQuestion("Q1", "A1", 10))
			session.AddQuestion(NewQuestion("Q2", "A2", 20))

			if err := session.TranslateAll(context.Background()); err == nil {
				t.Fatalf("expected TranslateAll error")
			}
			for idx, q := range session.Questions() {
				if q.IsTranslated() || q.TextSecondary != "" {
					t.Fatalf("question %d partially translated: %+v", idx, q)
				}
			}
			if !strings.Contains(out.String(), "Translation is unavailable") {
				t.Fatalf("expected translation notice, got %q", out.String())
			}
		})
	}
}

func TestTranslateAllSkipsEmptySession(t *testing.T) {
	translator := &fakeTranslator{reply: func(s []string) ([]string, error) { return s, nil }}
	session, _ := newTestSession(5, 3, Options{Translator: translator})

	if err := session.TranslateAll(context.Background()); err != nil {
		t.Fatalf("TranslateAll failed: %v", err)
	}
	if translator.calls != 0 {
		t.Fatalf("expected no translator call, got %d", translator.calls)
	}
}

func TestPlayHintBudget(t *testing.T) {
	session, out := newTestSession(2, 1, Options{})
	session.AddQuestion(NewQuestion("Q1", "Alpha", 10))
	session.AddQuestion(NewQuestion("Q2", "Bravo", 20))

	reader := inputReader("2", "alpha", "2", "wrong")
	if err := session.Play(context.Background(), reader); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if session.HintsLeft() != 0 {
		t.Fatalf("expected hint budget to be spent, got %d", session.HintsLeft())
	}
	questions := session.Questions()
	if !questions[0].TipUsed() || questions[1].TipUsed() {
		t.Fatalf("unexpected tip flags: %t %t", questions[0].TipUsed(), questions[1].TipUsed())
	}
	if !strings.Contains(out.String(), "Sorry, no hints left") {
		t.Fatalf("expected no-hints notice, got %q", out.String())
	}
	if got := strings.Count(out.String(), "Enter 2 for a hint"); got != 1 {
		t.Fatalf("expected hint option to be offered once, got %d", got)
	}
	if !questions[0].IsCorrect() || questions[1].IsCorrect() {
		t.Fatalf("unexpected grading: %t %t", questions[0].IsCorrect(), questions[1].IsCorrect())
	}
}

func TestPlayTranslationToggleIsSticky(t *testing.T) {
	session, out := newTestSession(2, 0, Options{})
	first := NewQuestion("Q1", "Alpha", 10)
	first.SetTranslation("В1", "Альфа")
	second := NewQuestion("Q2", "Bravo", 20)
	session.AddQuestion(first)
	session.AddQuestion(second)

	reader := inputReader("1", "альфа", "bravo")
	if err := session.Play(context.Background(), reader); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if !session.TranslationOn() {
		t.Fatalf("expected translation to stay on")
	}
	if got := strings.Count(out.String(), "Enter 1 to enable translation"); got != 1 {
		t.Fatalf("expected translation option to be offered once, got %d", got)
	}
	if !strings.Contains(out.String(), "В1") {
		t.Fatalf("expected translated text to be shown, got %q", out.String())
	}
	if !first.IsCorrect() || !second.IsCorrect() {
		t.Fatalf("expected both answers accepted")
	}
}

func TestPlayMarksAskedBeforeInputAndSurvivesEOF(t *testing.T) {
	session, _ := newTestSession(2, 3, Options{})
	session.AddQuestion(NewQuestion("Q1", "Alpha", 10))
	session.AddQuestion(NewQuestion("Q2", "Bravo", 20))

	if err := session.Play(context.Background(), bufio.NewReader(strings.NewReader(""))); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	for idx, q := range session.Questions() {
		if q.State() != StateGraded || q.IsCorrect() {
			t.Fatalf("question %d: state=%v correct=%t", idx, q.State(), q.IsCorrect())
		}
	}
}

func TestPlayStopsOnCanceledContext(t *testing.T) {
	session, _ := newTestSession(1, 3, Options{})
	session.AddQuestion(NewQuestion("Q1", "Alpha", 10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := session.Play(ctx, inputReader("alpha")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if session.Questions()[0].IsAsked() {
		t.Fatalf("question must not be asked after cancellation")
	}
}

func TestPromptsReturnWhenContextCancelledWhileWaiting(t *testing.T) {
	session, _ := newTestSession(1, 3, Options{})
	session.AddQuestion(NewQuestion("Q1", "Alpha", 10))

	prompts := map[string]func(ctx context.Context, reader *bufio.Reader) error{
		"name":     session.PromptPlayerName,
		"question": session.Play,
	}

	for name, prompt := range prompts {
		t.Run(name, func(t *testing.T) {
			pr, pw := io.Pipe()
			t.Cleanup(func() { _ = pw.Close() })

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- prompt(ctx, bufio.NewReader(pr)) }()

			time.AfterFunc(20*time.Millisecond, cancel)

			select {
			case err := <-errCh:
				if !errors.Is(err, context.Canceled) {
					t.Fatalf("expected context.Canceled, got %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("prompt kept waiting for input after cancellation")
			}
		})
	}
}

func TestComputeScoreIgnoresUnaskedQuestions(t *testing.T) {
	session, _ := newTestSession(3, 3, Options{})
	for i := 1; i <= 3; i++ {
		session.AddQuestion(NewQuestion("Q", "A", i*100))
	}

	if got := session.ComputeScore(); got != 0 {
		t.Fatalf("expected 0 for an unplayed session, got %d", got)
	}
}

func TestAddQuestionRespectsPlannedCount(t *testing.T) {
	session, _ := newTestSession(1, 3, Options{})
	if !session.AddQuestion(NewQuestion("Q1", "A", 1)) {
		t.Fatalf("expected first question to be added")
	}
	if session.AddQuestion(NewQuestion("Q2", "A", 1)) {
		t.Fatalf("expected second question to be rejected")
	}
}

func TestSetPlayerNameOnce(t *testing.T) {
	session, _ := newTestSession(1, 3, Options{})
	if err := session.PromptPlayerName(context.Background(), inputReader("  aNNA ")); err != nil {
		t.Fatalf("PromptPlayerName failed: %v", err)
	}
	session.SetPlayerName("Boris")

	if session.Player() != "Anna" {
		t.Fatalf("expected capitalized first name, got %q", session.Player())
	}
}

func TestSessionEndToEnd(t *testing.T) {
	raw := make([]jservice.RawQuestion, 0, 5)
	for i := 1; i <= 5; i++ {
		raw = append(raw, rawQuestion(i, i*1000))
	}
	fetcher := &fakeFetcher{batches: [][]jservice.RawQuestion{raw}}
	store := &memoryStore{}
	session, out := newTestSession(5, 3, Options{Fetcher: fetcher.fetch, Results: store})
	ctx := context.Background()

	session.Load(ctx)
	reader := inputReader("alice", "answer1", "nope", "answer3", "nope", "answer5")
	if err := session.PromptPlayerName(ctx, reader); err != nil {
		t.Fatalf("PromptPlayerName failed: %v", err)
	}
	if err := session.Play(ctx, reader); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if got := session.ComputeScore(); got != 900 {
		t.Fatalf("expected score 900, got %d", got)
	}

	record, err := session.SaveResult(ctx)
	if err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	if record.Name != "Alice" || record.Score != 900 || !record.Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected record: %+v", record)
	}

	best := session.BestResult(ctx)
	if best.Name != record.Name || best.Score != record.Score || !best.Timestamp.Equal(record.Timestamp) {
		t.Fatalf("expected own record to be best, got %+v", best)
	}

	session.PrintResults(best)
	if !strings.Contains(out.String(), "Best score: 900 points, set by Alice 0 seconds ago.") {
		t.Fatalf("unexpected final report: %q", out.String())
	}
}

func TestSaveResultPropagatesWriteError(t *testing.T) {
	store := &memoryStore{appendErr: errors.New("disk full")}
	session, _ := newTestSession(1, 3, Options{Results: store})

	if _, err := session.SaveResult(context.Background()); err == nil {
		t.Fatalf("expected write error")
	}
}

func TestBestResultDegradesOnReadError(t *testing.T) {
	store := &memoryStore{readErr: errors.New("corrupt file")}
	session, out := newTestSession(1, 3, Options{Results: store})

	best := session.BestResult(context.Background())
	if !best.IsZero() {
		t.Fatalf("expected zero record, got %+v", best)
	}

	session.PrintResults(best)
	if !strings.Contains(out.String(), "No best score on record yet.") {
		t.Fatalf("unexpected report: %q", out.String())
	}
}

func TestPrintResultsUsesLargestUnit(t *testing.T) {
	session, out := newTestSession(1, 3, Options{})
	session.SetPlayerName("anna")

	best := NewScoreRecord("Boris", 700, fixedNow.Add(-90000*time.Second))
	session.PrintResults(best)

	if !strings.Contains(out.String(), "set by Boris 1 days ago") {
		t.Fatalf("unexpected report: %q", out.String())
	}
}
