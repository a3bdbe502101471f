package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trivia-cli/internal/config"
	"trivia-cli/internal/game"
	"trivia-cli/internal/jservice"
	"trivia-cli/internal/results"
	"trivia-cli/internal/results/redis"
	"trivia-cli/internal/results/sqlite"
	"trivia-cli/internal/translate"
)

// Deps are the external collaborators of a game run.
type Deps struct {
	Fetcher    game.QuestionsFetcher
	Translator game.Translator
	Results    game.ResultsStore
	Logger     *zap.Logger
}

// Run plays one full session: load, translate, ask the player's name, play,
// save the result and report it against the best score on file.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config, deps Deps) error {
	session := game.NewSession(cfg.Game.QuestionCount, cfg.Game.HintBudget, game.Options{
		Fetcher:    deps.Fetcher,
		Translator: deps.Translator,
		Results:    deps.Results,
		Logger:     deps.Logger,
		Out:        out,
	})
	reader := bufio.NewReader(in)

	session.Load(ctx)
	// Translation failures are reported by the session and never stop the game.
	_ = session.TranslateAll(ctx)

	if err := session.PromptPlayerName(ctx, reader); err != nil {
		return err
	}
	if err := session.Play(ctx, reader); err != nil {
		return err
	}

	if _, err := session.SaveResult(ctx); err != nil {
		return err
	}

	session.PrintResults(session.BestResult(ctx))
	return nil
}

// NewDeps builds the production collaborators described by cfg. The returned
// cleanup releases the results store.
func NewDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Deps, func(), error) {
	source := jservice.NewClient(cfg.Source.URL, &http.Client{Timeout: cfg.Source.Timeout})

	deps := Deps{
		Fetcher: source.FetchQuestions,
		Logger:  logger,
	}

	if cfg.Translation.Enabled {
		deps.Translator = translate.NewClient(translate.Config{
			BaseURL: cfg.Translation.URL,
			Source:  cfg.Translation.Source,
			Target:  cfg.Translation.Target,
			APIKey:  cfg.Translation.APIKey,
		}, &http.Client{Timeout: cfg.Translation.Timeout})
	}

	store, cleanup, err := openResultsStore(ctx, cfg.Results)
	if err != nil {
		return Deps{}, nil, err
	}
	deps.Results = store

	logger.Debug("collaborators ready",
		zap.String("source_url", cfg.Source.URL),
		zap.Bool("translation", cfg.Translation.Enabled),
		zap.String("results_backend", cfg.Results.Backend),
	)
	return deps, cleanup, nil
}

func openResultsStore(ctx context.Context, cfg config.Results) (game.ResultsStore, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return redis.NewStore(client, cfg.RedisKey), func() { _ = client.Close() }, nil
	case config.BackendFile:
		return results.NewFileStore(cfg.Path), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}
}
