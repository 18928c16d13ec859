// Package chat implements the retrieval chain: embed the question, fetch
// the nearest chunks, assemble a grounded prompt, and generate an answer.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pravnik-ai/pravnik/internal/domain"
	"github.com/pravnik-ai/pravnik/internal/metrics"
)

// Config holds the retrieval chain settings.
type Config struct {
	DefaultTopK       int
	MaxTopK           int
	MaxContextChars   int
	DefaultLanguage   string
	OrgName           string
	GenerationTimeout time.Duration
}

// Service answers questions over the ingested corpus.
type Service struct {
	embedder   domain.Embedder
	searcher   Searcher
	generator  domain.Generator
	disclaimer DisclaimerPolicy
	cfg        Config
	logger     *zap.Logger
}

// New creates a chat service.
func New(
	embedder domain.Embedder,
	searcher Searcher,
	generator domain.Generator,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		embedder:  embedder,
		searcher:  searcher,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer runs the retrieval chain for one question. A generation failure
// never surfaces as an error; the caller gets the per-language fallback text
// with the retrieved sources intact.
func (s *Service) Answer(ctx context.Context, req Request) (Answer, error) {
	if strings.TrimSpace(req.Message) == "" {
		return Answer{}, fmt.Errorf("message is empty: %w", domain.ErrInvalidArgument)
	}

	k, err := s.resolveK(req.K)
	if err != nil {
		return Answer{}, err
	}

	language := strings.ToLower(req.Language)
	if language == "" {
		language = s.cfg.DefaultLanguage
	}
	pack := packFor(language, s.cfg.DefaultLanguage)

	results, err := s.retrieve(ctx, req, k)
	if err != nil {
		return Answer{}, err
	}

	contextBlock, sources := buildContext(results, pack.contextHeader, s.cfg.MaxContextChars)
	messages := s.buildMessages(req, pack, contextBlock)

	answer, fallback := s.generate(ctx, messages, language, pack)

	return Answer{
		Answer:   s.disclaimer.Apply(answer, pack),
		Sources:  sources,
		Fallback: fallback,
	}, nil
}

// resolveK applies the configured default and bounds. Zero is a legal
// request for an answer without retrieval.
func (s *Service) resolveK(k *int) (int, error) {
	if k == nil {
		return s.cfg.DefaultTopK, nil
	}
	if *k < 0 {
		return 0, fmt.Errorf("k must not be negative, got %d: %w", *k, domain.ErrInvalidArgument)
	}
	if *k > s.cfg.MaxTopK {
		return s.cfg.MaxTopK, nil
	}
	return *k, nil
}

func (s *Service) retrieve(ctx context.Context, req Request, k int) ([]domain.RetrievalResult, error) {
	if k == 0 {
		return nil, nil
	}

	vec, err := s.embedder.Embed(ctx, req.Message)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := s.searcher.SearchKNN(ctx, vec, k, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}

func (s *Service) buildMessages(req Request, pack languagePack, contextBlock string) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(req.History)+3)

	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: renderSystemPrompt(pack, s.cfg.OrgName, contextBlock != ""),
	})
	if contextBlock != "" {
		messages = append(messages, domain.ChatMessage{
			Role:    domain.RoleSystem,
			Content: contextBlock,
		})
	}
	messages = append(messages, req.History...)
	messages = append(messages, domain.ChatMessage{
		Role:    domain.RoleUser,
		Content: req.Message,
	})
	return messages
}

// generate calls the provider under the configured timeout. On any failure
// it reports the language's static fallback text instead of an error.
func (s *Service) generate(ctx context.Context, messages []domain.ChatMessage, language string, pack languagePack) (string, bool) {
	if s.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GenerationTimeout)
		defer cancel()
	}

	answer, err := s.generator.Complete(ctx, messages)
	if err != nil {
		s.logger.Warn("Generation failed, serving fallback answer",
			zap.String("language", language),
			zap.Error(err),
		)
		metrics.GenerationFallbacksTotal.WithLabelValues(language).Inc()
		return pack.fallback, true
	}
	return answer, false
}

// buildContext renders retrieval results as a labelled excerpt block and the
// matching source list. Excerpts are added in rank order until the character
// budget runs out; sources list exactly the excerpts that made it in.
func buildContext(results []domain.RetrievalResult, header string, maxChars int) (string, []Source) {
	if len(results) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(header)

	var sources []Source
	for i, res := range results {
		entry := fmt.Sprintf("\n\n[%d] (%s) %s", i+1, res.Filename, res.Content)
		if maxChars > 0 && b.Len()+len(entry) > maxChars && len(sources) > 0 {
			break
		}
		b.WriteString(entry)
		sources = append(sources, Source{
			Filename:   res.Filename,
			Ordinal:    i + 1,
			Distance:   res.Distance,
			DocumentID: res.DocumentID,
			ChunkIndex: res.ChunkIndex,
		})
	}
	return b.String(), sources
}
