package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

var ErrUnknownBackend = errors.New("unknown results backend")

// Config holds application configuration loaded from an optional config file
// and TRIVIA_* environment variables. Defaults reproduce the classic game.
type Config struct {
	Env         string      `mapstructure:"env"`
	Game        Game        `mapstructure:"game"`
	Source      Source      `mapstructure:"source"`
	Translation Translation `mapstructure:"translation"`
	Results     Results     `mapstructure:"results"`
}

type Game struct {
	QuestionCount int `mapstructure:"question_count"`
	HintBudget    int `mapstructure:"hint_budget"`
}

type Source struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Translation struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Source  string        `mapstructure:"source"`
	Target  string        `mapstructure:"target"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Results struct {
	Backend       string `mapstructure:"backend"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`
}

// Load reads configuration. An empty path looks for config/config.yaml and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	v.SetDefault("env", "local")
	v.SetDefault("game.question_count", 5)
	v.SetDefault("game.hint_budget", 3)
	v.SetDefault("source.url", "http://jservice.io/api/random")
	v.SetDefault("source.timeout", "10s")
	v.SetDefault("translation.enabled", true)
	v.SetDefault("translation.url", "https://libretranslate.com")
	v.SetDefault("translation.source", "en")
	v.SetDefault("translation.target", "ru")
	v.SetDefault("translation.api_key", "")
	v.SetDefault("translation.timeout", "15s")
	v.SetDefault("results.backend", BackendFile)
	v.SetDefault("results.path", "results.csv")
	v.SetDefault("results.redis_addr", "127.0.0.1:6379")
	v.SetDefault("results.redis_password", "")
	v.SetDefault("results.redis_db", 0)
	v.SetDefault("results.redis_key", "trivia:results")

	v.SetEnvPrefix("trivia")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Results.Backend = strings.ToLower(strings.TrimSpace(c.Results.Backend))
	switch c.Results.Backend {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Results.Backend)
	}

	if c.Game.QuestionCount <= 0 {
		return fmt.Errorf("game.question_count must be positive, got %d", c.Game.QuestionCount)
	}
	if c.Game.HintBudget < 0 {
		return fmt.Errorf("game.hint_budget must not be negative, got %d", c.Game.HintBudget)
	}
	return nil
}
