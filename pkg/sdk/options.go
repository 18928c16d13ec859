package pravnik

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pravnik-ai/pravnik/internal/domain"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dsn      string
	maxConns int32

	openaiKey     string
	openaiBaseURL string

	embeddingModel string
	dimensions     int

	generationModel string
	maxTokens       int

	embedder  domain.Embedder
	generator domain.Generator

	embeddingTimeout  time.Duration
	generationTimeout time.Duration

	chunkMaxTokens     int
	chunkOverlapTokens int

	defaultTopK     int
	maxTopK         int
	maxContextChars int
	language        string
	orgName         string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres sets the PostgreSQL connection string. Required.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
	})
}

// WithMaxConns sets the connection pool size. Default: 8.
func WithMaxConns(n int32) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxConns = n
	})
}

// WithOpenAI configures the OpenAI-compatible embedding and generation
// providers. baseURL may be empty for api.openai.com.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openaiKey = apiKey
		c.openaiBaseURL = baseURL
	})
}

// WithEmbeddingModel sets the embedding model and vector dimensions.
// Defaults: text-embedding-3-small, 1536.
func WithEmbeddingModel(model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingModel = model
		c.dimensions = dimensions
	})
}

// WithGenerationModel sets the chat completion model and its answer
// token budget. Defaults: gpt-4o-mini, 1024.
func WithGenerationModel(model string, maxTokens int) Option {
	return optionFunc(func(c *clientConfig) {
		c.generationModel = model
		c.maxTokens = maxTokens
	})
}

// WithEmbedder replaces the OpenAI embedding provider with a custom one.
func WithEmbedder(e domain.Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator replaces the OpenAI generation provider with a custom one.
func WithGenerator(g domain.Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithTimeouts bounds the embedding and generation provider calls.
// Defaults: 30s embedding, 60s generation. Zero keeps the default.
func WithTimeouts(embedding, generation time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		if embedding > 0 {
			c.embeddingTimeout = embedding
		}
		if generation > 0 {
			c.generationTimeout = generation
		}
	})
}

// WithChunking sets the chunk token budget and overlap.
// Defaults: 500 tokens, 50 overlap.
func WithChunking(maxTokens, overlapTokens int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkMaxTokens = maxTokens
		c.chunkOverlapTokens = overlapTokens
	})
}

// WithRetrieval sets the retrieval defaults: top-k, its upper bound and
// the context character budget.
func WithRetrieval(defaultTopK, maxTopK, maxContextChars int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultTopK = defaultTopK
		c.maxTopK = maxTopK
		c.maxContextChars = maxContextChars
	})
}

// WithLanguage sets the default answer language ("sk", "cs", "en").
// Default: "sk".
func WithLanguage(lang string) Option {
	return optionFunc(func(c *clientConfig) {
		c.language = lang
	})
}

// WithOrgName sets the organization name mentioned in the system prompt.
func WithOrgName(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.orgName = name
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
