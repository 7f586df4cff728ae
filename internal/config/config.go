package config

import "time"

// Environment names accepted by ServerConfig.Environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Limits   LimitsConfig   `mapstructure:"limits" validate:"required"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts" validate:"required"`
	Sources  SourcesConfig  `mapstructure:"sources"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Environment controls diagnostics: in development, failed generations
	// carry a redacted excerpt of the raw model output.
	Environment     string        `mapstructure:"environment" validate:"required,oneof=development production"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// IsDevelopment reports whether diagnostics should be enabled.
func (c ServerConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// LLMConfig groups the settings of every text-generation provider. A
// provider is enabled when its required settings are present; see the
// Enabled methods.
type LLMConfig struct {
	Ollama OllamaConfig `mapstructure:"ollama"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// OllamaConfig configures the local model service.
type OllamaConfig struct {
	URL   string `mapstructure:"url" validate:"omitempty,url"`
	Model string `mapstructure:"model"`

	// Optional per-kind models; empty falls back to Model.
	QuizModel       string `mapstructure:"quiz_model"`
	FlashcardsModel string `mapstructure:"flashcards_model"`
	MindmapModel    string `mapstructure:"mindmap_model"`
	SummaryModel    string `mapstructure:"summary_model"`
	GraderModel     string `mapstructure:"grader_model"`

	// KeepAlive is passed through to Ollama, e.g. "30m".
	KeepAlive string `mapstructure:"keep_alive"`

	// Performance knobs passed through to Ollama options when set.
	NumCtx    *int `mapstructure:"num_ctx" validate:"omitempty,gt=0"`
	NumThread *int `mapstructure:"num_thread" validate:"omitempty,gt=0"`
	NumBatch  *int `mapstructure:"num_batch" validate:"omitempty,gt=0"`
	NumGPU    *int `mapstructure:"num_gpu" validate:"omitempty,gte=0"`
}

// Enabled reports whether the local model service is configured.
func (c OllamaConfig) Enabled() bool {
	return c.URL != ""
}

// OpenAIConfig configures the primary cloud chat API.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model" validate:"required"`
	// BaseURL overrides the API endpoint, e.g. for compatible gateways.
	BaseURL    string `mapstructure:"base_url" validate:"omitempty,url"`
	MaxRetries int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

// Enabled reports whether the OpenAI provider is configured.
func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

// GeminiConfig configures the secondary cloud API.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model" validate:"required"`
	// MaxRetries bounds the in-call retries on transient failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	// RetryBaseDelay is the base of the full-jitter exponential backoff.
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay" validate:"gt=0"`
}

// Enabled reports whether the Gemini provider is configured.
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// LimitsConfig holds the source-text character budget per artifact kind.
type LimitsConfig struct {
	QuizChars       int `mapstructure:"quiz_chars" validate:"gt=0"`
	FlashcardsChars int `mapstructure:"flashcards_chars" validate:"gt=0"`
	MindmapChars    int `mapstructure:"mindmap_chars" validate:"gt=0"`
	SummaryChars    int `mapstructure:"summary_chars" validate:"gt=0"`
	SectionChars    int `mapstructure:"section_chars" validate:"gt=0"`
}

// TimeoutsConfig holds the wall-clock bound of one provider call per
// artifact kind.
type TimeoutsConfig struct {
	Quiz       time.Duration `mapstructure:"quiz" validate:"gt=0"`
	Flashcards time.Duration `mapstructure:"flashcards" validate:"gt=0"`
	Mindmap    time.Duration `mapstructure:"mindmap" validate:"gt=0"`
	Grade      time.Duration `mapstructure:"grade" validate:"gt=0"`
	Summary    time.Duration `mapstructure:"summary" validate:"gt=0"`
	Chat       time.Duration `mapstructure:"chat" validate:"gt=0"`
	Section    time.Duration `mapstructure:"section" validate:"gt=0"`
}

// SourcesConfig locates the notes library served by reference.
type SourcesConfig struct {
	// Dir is a directory of .txt and .md notes; empty disables lookup by
	// reference.
	Dir string `mapstructure:"dir" validate:"omitempty,dir"`
}
