package application

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/candor-ai/go-tribunal/internal/domain"
)

// Config is the full service configuration, loaded from YAML with
// environment expansion. Secrets are referenced as ${VAR} placeholders and
// resolved at load time; the file itself never holds key material.
type Config struct {
	// Server configures the HTTP API listener.
	Server ServerConfig `yaml:"server"`

	// Storage configures session persistence.
	Storage StorageConfig `yaml:"storage"`

	// LLM configures the model providers and the default model per role.
	LLM LLMConfig `yaml:"llm" validate:"required"`

	// Evaluators configures the critique pool membership.
	Evaluators []EvaluatorConfig `yaml:"evaluators" validate:"required,min=1,dive"`

	// Collector tunes critique collection.
	Collector CollectorConfig `yaml:"collector"`

	// Engine tunes the adjudication loop and consensus thresholds.
	Engine EngineConfig `yaml:"engine"`

	// Explore tunes problem-space exploration.
	Explore ExploreConfig `yaml:"explore"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// AllowedOrigins configures CORS. Empty means same-origin only.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig configures session persistence. An empty DSN disables
// persistence; sessions then live only for the duration of a request.
type StorageConfig struct {
	// Driver selects the storage backend. Only "postgres" is supported.
	Driver string `yaml:"driver" validate:"omitempty,oneof=postgres"`

	// DSN is the connection string, typically "${DATABASE_URL}".
	DSN string `yaml:"dsn"`

	// MaxOpenConns bounds the connection pool.
	MaxOpenConns int `yaml:"max_open_conns"`
}

// LLMConfig configures model providers.
type LLMConfig struct {
	// DefaultModel is the "provider/model" used when an evaluator does not
	// name its own.
	DefaultModel string `yaml:"default_model" validate:"required"`

	// Providers maps provider name to its settings. Providers without an
	// evaluator or generator referencing them are not instantiated.
	Providers map[string]ProviderConfig `yaml:"providers" validate:"required,min=1,dive"`
}

// ProviderConfig holds one provider's connection settings.
type ProviderConfig struct {
	// APIKey is the credential, typically "${OPENAI_API_KEY}" style.
	APIKey string `yaml:"api_key" validate:"required"`

	// BaseURL overrides the provider endpoint, for proxies and
	// OpenAI-compatible backends. Empty means the provider default.
	BaseURL string `yaml:"base_url"`

	// MaxRetries bounds transient-failure retries per call.
	MaxRetries int `yaml:"max_retries" validate:"min=0,max=10"`

	// RequestsPerMinute throttles outbound calls. Zero disables the
	// limiter.
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"min=0"`

	// Timeout bounds each provider call.
	Timeout time.Duration `yaml:"timeout"`
}

// EvaluatorConfig declares one seat in the critique pool.
type EvaluatorConfig struct {
	// ID is the evaluator's identifier, unique within the pool.
	ID string `yaml:"id" validate:"required"`

	// Role selects the prompt template and evaluative capacity.
	Role domain.Role `yaml:"role" validate:"required"`

	// Model is the "provider/model" this seat calls. Empty means the
	// configured default model.
	Model string `yaml:"model"`

	// Temperature controls response randomness for this seat.
	Temperature float64 `yaml:"temperature" validate:"min=0,max=2"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads, env-expands, parses, and validates the YAML file at
// path. Unknown ${VAR} references expand to the empty string and surface as
// validation errors on the fields that required them.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(raw)
}

// ParseConfig parses and validates raw YAML configuration bytes.
func ParseConfig(raw []byte) (*Config, error) {
	expanded := os.Expand(string(raw), func(key string) string {
		return os.Getenv(key)
	})

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing config: %v", domain.ErrInvalidConfig, err)
	}

	cfg.applyDefaults()

	if err := configValidator.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if err := cfg.Engine.Consensus.Validate(); err != nil {
		return nil, err
	}
	for _, ev := range cfg.Evaluators {
		if !ev.Role.Valid() {
			return nil, fmt.Errorf("%w: evaluator %s has unknown role %q",
				domain.ErrInvalidConfig, ev.ID, ev.Role)
		}
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 5 * time.Minute
	}
	if c.Storage.Driver == "" && c.Storage.DSN != "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Collector.EvaluatorTimeout == 0 {
		c.Collector.EvaluatorTimeout = DefaultEvaluatorTimeout
	}
	if c.Collector.MaxConcurrency == 0 {
		c.Collector.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.Engine.MaxIterations == 0 {
		c.Engine.MaxIterations = DefaultMaxIterations
	}
	zero := domain.ConsensusConfig{}
	if c.Engine.Consensus == zero {
		c.Engine.Consensus = domain.DefaultConsensusConfig()
	}
	if c.Explore.Variations == 0 {
		c.Explore.Variations = DefaultVariationCount
	}
	if c.Explore.SimilarityCutoff == 0 {
		c.Explore.SimilarityCutoff = DefaultSimilarityCutoff
	}
	for name, p := range c.LLM.Providers {
		if p.Timeout == 0 {
			p.Timeout = 60 * time.Second
		}
		if p.MaxRetries == 0 {
			p.MaxRetries = 3
		}
		c.LLM.Providers[name] = p
	}
}
