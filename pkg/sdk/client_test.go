package pravnik

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew_NoDSN(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no connection string provided")
	}
}

func TestNoopEmbedder(t *testing.T) {
	noop := &noopEmbedder{}
	if _, err := noop.Embed(context.Background(), "test"); err == nil {
		t.Fatal("expected error from noopEmbedder.Embed")
	}
	if _, err := noop.EmbedMany(context.Background(), []string{"test"}); err == nil {
		t.Fatal("expected error from noopEmbedder.EmbedMany")
	}
}

func TestNoopGenerator(t *testing.T) {
	noop := &noopGenerator{}
	if _, err := noop.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error from noopGenerator")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithPostgres("postgres://localhost:5432/pravnik").apply(cfg)
	if cfg.dsn != "postgres://localhost:5432/pravnik" {
		t.Errorf("dsn = %q", cfg.dsn)
	}

	WithMaxConns(16).apply(cfg)
	if cfg.maxConns != 16 {
		t.Errorf("maxConns = %d, want 16", cfg.maxConns)
	}

	WithOpenAI("sk-key", "http://localhost:8085/v1").apply(cfg)
	if cfg.openaiKey != "sk-key" || cfg.openaiBaseURL != "http://localhost:8085/v1" {
		t.Errorf("openai = (%q, %q)", cfg.openaiKey, cfg.openaiBaseURL)
	}

	WithEmbeddingModel("text-embedding-3-large", 3072).apply(cfg)
	if cfg.embeddingModel != "text-embedding-3-large" || cfg.dimensions != 3072 {
		t.Errorf("embedding = (%q, %d)", cfg.embeddingModel, cfg.dimensions)
	}

	WithGenerationModel("gpt-4o", 2048).apply(cfg)
	if cfg.generationModel != "gpt-4o" || cfg.maxTokens != 2048 {
		t.Errorf("generation = (%q, %d)", cfg.generationModel, cfg.maxTokens)
	}

	WithChunking(400, 40).apply(cfg)
	if cfg.chunkMaxTokens != 400 || cfg.chunkOverlapTokens != 40 {
		t.Errorf("chunking = (%d, %d)", cfg.chunkMaxTokens, cfg.chunkOverlapTokens)
	}

	WithTimeouts(15*time.Second, 45*time.Second).apply(cfg)
	if cfg.embeddingTimeout != 15*time.Second || cfg.generationTimeout != 45*time.Second {
		t.Errorf("timeouts = (%v, %v)", cfg.embeddingTimeout, cfg.generationTimeout)
	}

	WithTimeouts(0, 0).apply(cfg)
	if cfg.embeddingTimeout != 15*time.Second || cfg.generationTimeout != 45*time.Second {
		t.Errorf("zero timeouts must not override: (%v, %v)", cfg.embeddingTimeout, cfg.generationTimeout)
	}

	WithRetrieval(8, 50, 16000).apply(cfg)
	if cfg.defaultTopK != 8 || cfg.maxTopK != 50 || cfg.maxContextChars != 16000 {
		t.Errorf("retrieval = (%d, %d, %d)", cfg.defaultTopK, cfg.maxTopK, cfg.maxContextChars)
	}

	WithLanguage("cs").apply(cfg)
	if cfg.language != "cs" {
		t.Errorf("language = %q", cfg.language)
	}

	WithOrgName("Pravnik AI").apply(cfg)
	if cfg.orgName != "Pravnik AI" {
		t.Errorf("orgName = %q", cfg.orgName)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilPool(t *testing.T) {
	c := &Client{pool: nil}
	c.Close()
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("document_get", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("document_get", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected metrics to be registered")
	}

	// Operations counter must carry both ok and error samples.
	found := false
	for _, f := range families {
		if f.GetName() == "pravnik_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d",
					len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("pravnik_sdk_operations_total not found")
	}
}

func TestObserver_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("first newObserver: %v", err)
	}
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("second newObserver: %v", err)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	logger := slog.Default()
	obs, err := newObserver(logger, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test_op", time.Now(), nil)
	obs.observe("test_op", time.Now(), errors.New("test error"))
}

func TestObserver_NoMetricsNoLogger(t *testing.T) {
	obs, err := newObserver(nil, nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("noop", time.Now(), nil)
}
