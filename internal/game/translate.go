package game

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrSegmentMismatch = errors.New("translated segment count mismatch")

// TranslateAll translates every question and answer in one batch. On any
// failure nothing is applied and the session carries on untranslated.
func (s *Session) TranslateAll(ctx context.Context) error {
	if len(s.questions) == 0 {
		return nil
	}
	if s.translator == nil {
		return nil
	}

	segments := make([]string, 0, len(s.questions)*2)
	for _, q := range s.questions {
		segments = append(segments, q.TextPrimary, q.AnswerPrimary)
	}

	translated, err := s.translator.Translate(ctx, segments)
	if err == nil && len(translated) != len(segments) {
		err = fmt.Errorf("%w: sent %d, got %d", ErrSegmentMismatch, len(segments), len(translated))
	}
	if err != nil {
		s.logger.Warn("translation failed", zap.Int("segments", len(segments)), zap.Error(err))
		fmt.Fprintln(s.out, "Translation is unavailable for this game.")
		return err
	}

	for idx, q := range s.questions {
		q.SetTranslation(translated[idx*2], translated[idx*2+1])
	}
	return nil
}
