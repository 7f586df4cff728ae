package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STUDYGEN"

// keys lists every configuration key so each can be bound to its
// environment variable, including keys without defaults.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.environment",
	"server.shutdown_timeout",

	"llm.ollama.url",
	"llm.ollama.model",
	"llm.ollama.quiz_model",
	"llm.ollama.flashcards_model",
	"llm.ollama.mindmap_model",
	"llm.ollama.summary_model",
	"llm.ollama.grader_model",
	"llm.ollama.keep_alive",
	"llm.ollama.num_ctx",
	"llm.ollama.num_thread",
	"llm.ollama.num_batch",
	"llm.ollama.num_gpu",

	"llm.openai.api_key",
	"llm.openai.model",
	"llm.openai.base_url",
	"llm.openai.max_retries",

	"llm.gemini.api_key",
	"llm.gemini.model",
	"llm.gemini.max_retries",
	"llm.gemini.retry_base_delay",

	"limits.quiz_chars",
	"limits.flashcards_chars",
	"limits.mindmap_chars",
	"limits.summary_chars",
	"limits.section_chars",

	"timeouts.quiz",
	"timeouts.flashcards",
	"timeouts.mindmap",
	"timeouts.grade",
	"timeouts.summary",
	"timeouts.chat",
	"timeouts.section",

	"sources.dir",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.environment", EnvProduction)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("llm.ollama.keep_alive", "30m")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.max_retries", 0)
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.max_retries", 4)
	v.SetDefault("llm.gemini.retry_base_delay", "600ms")

	v.SetDefault("limits.quiz_chars", 8000)
	v.SetDefault("limits.flashcards_chars", 8000)
	v.SetDefault("limits.mindmap_chars", 8000)
	v.SetDefault("limits.summary_chars", 15000)
	v.SetDefault("limits.section_chars", 8000)

	v.SetDefault("timeouts.quiz", "600s")
	v.SetDefault("timeouts.flashcards", "300s")
	v.SetDefault("timeouts.mindmap", "300s")
	v.SetDefault("timeouts.grade", "180s")
	v.SetDefault("timeouts.summary", "180s")
	v.SetDefault("timeouts.chat", "120s")
	v.SetDefault("timeouts.section", "180s")
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first; variables already
// set in the environment are not overridden by it.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
