package pravnik

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pravnik-ai/pravnik/internal/chunker"
	"github.com/pravnik-ai/pravnik/internal/db/postgres"
	"github.com/pravnik-ai/pravnik/internal/domain"
	"github.com/pravnik-ai/pravnik/internal/extract"
	documentrepo "github.com/pravnik-ai/pravnik/internal/repository/document"
	searchrepo "github.com/pravnik-ai/pravnik/internal/repository/search"
	openaiClient "github.com/pravnik-ai/pravnik/internal/transport/openai"
	chatuc "github.com/pravnik-ai/pravnik/internal/usecase/chat"
	documentuc "github.com/pravnik-ai/pravnik/internal/usecase/document"
	healthuc "github.com/pravnik-ai/pravnik/internal/usecase/health"
	ingestuc "github.com/pravnik-ai/pravnik/internal/usecase/ingest"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal use case interfaces, swappable in tests.
type documentUseCase interface {
	Get(ctx context.Context, id string) (domain.Document, error)
	GetChunks(ctx context.Context, id string) ([]domain.Chunk, error)
	List(ctx context.Context, filter domain.Filter, page domain.Page) ([]domain.Document, int, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ingestUseCase interface {
	Ingest(ctx context.Context, path string, meta domain.DocumentMeta) (domain.IngestResult, error)
	IngestDir(ctx context.Context, dir string, meta domain.DocumentMeta) (domain.IngestSummary, error)
}

type chatUseCase interface {
	Answer(ctx context.Context, req chatuc.Request) (chatuc.Answer, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the pravnik SDK entry point.
type Client struct {
	pool      *postgres.Pool
	docSvc    documentUseCase
	ingestSvc ingestUseCase
	chatSvc   chatUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a pravnik Client, connects to PostgreSQL and ensures the
// schema. The provided context is used for the readiness check and the
// migration.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		maxConns:           8,
		embeddingModel:     "text-embedding-3-small",
		dimensions:         1536,
		generationModel:    "gpt-4o-mini",
		maxTokens:          1024,
		chunkMaxTokens:     500,
		chunkOverlapTokens: 50,
		defaultTopK:        5,
		maxTopK:            20,
		maxContextChars:    12000,
		language:           "sk",
		embeddingTimeout:   30 * time.Second,
		generationTimeout:  60 * time.Second,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.dsn == "" {
		return nil, errors.New("pravnik: postgres connection string required (use WithPostgres)")
	}

	pool, err := postgres.New(ctx, postgres.Config{
		DSN:        cfg.dsn,
		MaxConns:   cfg.maxConns,
		Dimensions: cfg.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("pravnik: create pool: %w", err)
	}

	if err := pool.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pravnik: database not ready: %w", err)
	}
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pravnik: migrate: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return wireClient(pool, cfg, obs)
}

func wireClient(pool *postgres.Pool, cfg *clientConfig, obs *observer) (*Client, error) {
	// Internal layers log through zap; the SDK surfaces its own slog
	// observer instead.
	nop := zap.NewNop()

	embedder := cfg.embedder
	generator := cfg.generator
	if embedder == nil {
		if cfg.openaiKey == "" {
			embedder = &noopEmbedder{}
		} else {
			embedder = openaiClient.NewEmbedder(&openaiClient.EmbedderConfig{
				APIKey:     cfg.openaiKey,
				BaseURL:    cfg.openaiBaseURL,
				Model:      cfg.embeddingModel,
				Dimensions: cfg.dimensions,
				Timeout:    cfg.embeddingTimeout,
				Provider:   "openai",
				Logger:     nop,
			})
		}
	}
	if generator == nil {
		if cfg.openaiKey == "" {
			generator = &noopGenerator{}
		} else {
			generator = openaiClient.NewGenerator(&openaiClient.GeneratorConfig{
				APIKey:    cfg.openaiKey,
				BaseURL:   cfg.openaiBaseURL,
				Model:     cfg.generationModel,
				MaxTokens: cfg.maxTokens,
				Provider:  "openai",
				Logger:    nop,
			})
		}
	}

	splitter, err := chunker.New(cfg.chunkMaxTokens, cfg.chunkOverlapTokens)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pravnik: %w", err)
	}

	docRepo := documentrepo.New(pool.Pool())
	searchRepo := searchrepo.New(pool.Pool())

	return &Client{
		pool:      pool,
		docSvc:    documentuc.New(docRepo, nop),
		ingestSvc: ingestuc.New(extract.New(), splitter, embedder, docRepo, nop),
		chatSvc: chatuc.New(embedder, searchRepo, generator, chatuc.Config{
			DefaultTopK:       cfg.defaultTopK,
			MaxTopK:           cfg.maxTopK,
			MaxContextChars:   cfg.maxContextChars,
			DefaultLanguage:   cfg.language,
			OrgName:           cfg.orgName,
			GenerationTimeout: cfg.generationTimeout,
		}, nop),
		healthSvc: healthuc.New(pool, nil, nil),
		obs:       obs,
	}, nil
}

// Close releases the connection pool.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Documents returns the document management service.
func (c *Client) Documents() *DocumentService {
	return &DocumentService{svc: c.docSvc, obs: c.obs}
}

// Ingest returns the ingestion service.
func (c *Client) Ingest() *IngestService {
	return &IngestService{svc: c.ingestSvc, obs: c.obs}
}

// Chat returns the assistant service.
func (c *Client) Chat() *ChatService {
	return &ChatService{svc: c.chatSvc, obs: c.obs}
}

// noopEmbedder returns an error on every call (used when no provider configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("pravnik: embedder not configured (use WithOpenAI or WithEmbedder)")
}

func (noopEmbedder) EmbedMany(_ context.Context, _ []string) ([][]float32, error) {
	return nil, errors.New("pravnik: embedder not configured (use WithOpenAI or WithEmbedder)")
}

// noopGenerator returns an error on every call (used when no provider configured).
type noopGenerator struct{}

func (noopGenerator) Complete(_ context.Context, _ []domain.ChatMessage) (string, error) {
	return "", errors.New("pravnik: generator not configured (use WithOpenAI or WithGenerator)")
}
