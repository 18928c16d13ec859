package chat

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pravnik-ai/pravnik/internal/domain"
	"github.com/pravnik-ai/pravnik/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterGenerationMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	return m.vec, m.err
}

func (m *mockEmbedder) EmbedMany(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = m.vec
	}
	return vecs, nil
}

type mockSearcher struct {
	results []domain.RetrievalResult
	err     error
	calls   int
	lastK   int
	lastFlt domain.Filter
}

func (m *mockSearcher) SearchKNN(_ context.Context, _ []float32, k int, filter domain.Filter) ([]domain.RetrievalResult, error) {
	m.calls++
	m.lastK = k
	m.lastFlt = filter
	return m.results, m.err
}

type mockGenerator struct {
	answer   string
	err      error
	messages []domain.ChatMessage
}

func (m *mockGenerator) Complete(_ context.Context, messages []domain.ChatMessage) (string, error) {
	m.messages = messages
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func testConfig() Config {
	return Config{
		DefaultTopK:       5,
		MaxTopK:           20,
		MaxContextChars:   4000,
		DefaultLanguage:   "sk",
		OrgName:           "Pravník AI",
		GenerationTimeout: 30 * time.Second,
	}
}

func newTestService(emb *mockEmbedder, search *mockSearcher, gen *mockGenerator) *Service {
	return New(emb, search, gen, testConfig(), zap.NewNop())
}

func intPtr(v int) *int { return &v }

// --- Tests ---

func TestAnswer_HappyPath(t *testing.T) {
	search := &mockSearcher{results: []domain.RetrievalResult{
		{DocumentID: "doc-1", ChunkIndex: 0, Content: "Výpovedná lehota je dva mesiace.", Filename: "zakonnik_prace.txt", Distance: 0.1},
		{DocumentID: "doc-2", ChunkIndex: 3, Content: "Lehota začína plynúť prvým dňom mesiaca.", Filename: "komentar.pdf", Distance: 0.2},
	}}
	gen := &mockGenerator{answer: "Výpovedná lehota sú dva mesiace [1]."}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, search, gen)

	answer, err := svc.Answer(context.Background(), Request{Message: "Aká je výpovedná lehota?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(answer.Answer, "dva mesiace [1]") {
		t.Errorf("unexpected answer: %q", answer.Answer)
	}
	if !strings.HasPrefix(answer.Answer, languagePacks["sk"].disclaimer) {
		t.Errorf("answer must open with the disclaimer: %q", answer.Answer)
	}
	if answer.Fallback {
		t.Error("expected Fallback=false")
	}

	if len(answer.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(answer.Sources))
	}
	if answer.Sources[0].Ordinal != 1 || answer.Sources[0].Filename != "zakonnik_prace.txt" {
		t.Errorf("unexpected first source: %+v", answer.Sources[0])
	}
	if answer.Sources[1].Distance != 0.2 {
		t.Errorf("unexpected second source: %+v", answer.Sources[1])
	}

	if search.lastK != 5 {
		t.Errorf("expected default k=5, got %d", search.lastK)
	}
}

func TestAnswer_ContextMessageFormat(t *testing.T) {
	search := &mockSearcher{results: []domain.RetrievalResult{
		{Content: "Úryvok.", Filename: "zmluva.docx", Distance: 0.3},
	}}
	gen := &mockGenerator{answer: "Odpoveď."}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, search, gen)

	if _, err := svc.Answer(context.Background(), Request{Message: "otázka"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gen.messages) != 3 {
		t.Fatalf("expected system+context+user, got %d messages", len(gen.messages))
	}
	if gen.messages[0].Role != domain.RoleSystem {
		t.Errorf("first message role = %q", gen.messages[0].Role)
	}
	if !strings.Contains(gen.messages[1].Content, "[1] (zmluva.docx) Úryvok.") {
		t.Errorf("context message = %q", gen.messages[1].Content)
	}
	if gen.messages[2].Role != domain.RoleUser || gen.messages[2].Content != "otázka" {
		t.Errorf("last message = %+v", gen.messages[2])
	}
}

func TestAnswer_NoResultsOmitsContextMessage(t *testing.T) {
	search := &mockSearcher{}
	gen := &mockGenerator{answer: "Všeobecná odpoveď."}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, search, gen)

	answer, err := svc.Answer(context.Background(), Request{Message: "otázka"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gen.messages) != 2 {
		t.Fatalf("expected system+user only, got %d messages", len(gen.messages))
	}
	if len(answer.Sources) != 0 {
		t.Errorf("expected no sources, got %v", answer.Sources)
	}
}

func TestAnswer_KZeroSkipsRetrieval(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1}}
	search := &mockSearcher{}
	gen := &mockGenerator{answer: "Odpoveď bez kontextu."}
	svc := newTestService(emb, search, gen)

	answer, err := svc.Answer(context.Background(), Request{Message: "otázka", K: intPtr(0)})
	if err != nil {
		t.Fatalf("k=0 must be legal: %v", err)
	}
	if emb.calls != 0 {
		t.Error("k=0 must not embed the question")
	}
	if search.calls != 0 {
		t.Error("k=0 must not search")
	}
	if len(answer.Sources) != 0 {
		t.Errorf("expected no sources, got %v", answer.Sources)
	}
}

func TestAnswer_NegativeKRejected(t *testing.T) {
	svc := newTestService(&mockEmbedder{}, &mockSearcher{}, &mockGenerator{})

	_, err := svc.Answer(context.Background(), Request{Message: "otázka", K: intPtr(-1)})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAnswer_KClampedToMax(t *testing.T) {
	search := &mockSearcher{}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, search, &mockGenerator{answer: "x"})

	if _, err := svc.Answer(context.Background(), Request{Message: "otázka", K: intPtr(500)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if search.lastK != 20 {
		t.Errorf("expected k clamped to 20, got %d", search.lastK)
	}
}

func TestAnswer_EmptyMessage(t *testing.T) {
	svc := newTestService(&mockEmbedder{}, &mockSearcher{}, &mockGenerator{})

	_, err := svc.Answer(context.Background(), Request{Message: "   "})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAnswer_FilterPropagated(t *testing.T) {
	search := &mockSearcher{}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, search, &mockGenerator{answer: "x"})

	filter := domain.Filter{PracticeArea: "pracovné právo", Jurisdiction: "SK"}
	if _, err := svc.Answer(context.Background(), Request{Message: "otázka", Filter: filter}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if search.lastFlt != filter {
		t.Errorf("filter = %+v, want %+v", search.lastFlt, filter)
	}
}

func TestAnswer_GenerationFailureServesFallback(t *testing.T) {
	search := &mockSearcher{results: []domain.RetrievalResult{
		{Content: "Úryvok.", Filename: "zmluva.pdf", Distance: 0.1},
	}}
	gen := &mockGenerator{err: domain.ErrGenerationProvider}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, search, gen)

	answer, err := svc.Answer(context.Background(), Request{Message: "otázka"})
	if err != nil {
		t.Fatalf("generation failure must not surface as an error: %v", err)
	}

	if !answer.Fallback {
		t.Error("expected Fallback=true")
	}
	if !strings.Contains(answer.Answer, languagePacks["sk"].fallback) {
		t.Errorf("expected fallback text, got %q", answer.Answer)
	}
	if len(answer.Sources) != 1 {
		t.Errorf("sources must be preserved on fallback, got %v", answer.Sources)
	}
}

func TestAnswer_LanguageSelection(t *testing.T) {
	tests := []struct {
		name     string
		language string
		wantLang string
	}{
		{"czech", "cs", "cs"},
		{"english", "en", "en"},
		{"uppercase", "EN", "en"},
		{"unknown falls back to default", "de", "sk"},
		{"empty uses default", "", "sk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{err: errors.New("down")}
			svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, &mockSearcher{}, gen)

			answer, err := svc.Answer(context.Background(), Request{Message: "otázka", Language: tt.language})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(answer.Answer, languagePacks[tt.wantLang].fallback) {
				t.Errorf("expected %s fallback, got %q", tt.wantLang, answer.Answer)
			}
		})
	}
}

func TestAnswer_EmbeddingFailureIsAnError(t *testing.T) {
	svc := newTestService(
		&mockEmbedder{err: domain.ErrEmbeddingProvider},
		&mockSearcher{},
		&mockGenerator{answer: "x"},
	)

	_, err := svc.Answer(context.Background(), Request{Message: "otázka"})
	if !errors.Is(err, domain.ErrEmbeddingProvider) {
		t.Errorf("expected ErrEmbeddingProvider, got %v", err)
	}
}

func TestAnswer_HistoryOrdering(t *testing.T) {
	gen := &mockGenerator{answer: "Odpoveď."}
	svc := newTestService(&mockEmbedder{vec: []float32{0.1}}, &mockSearcher{}, gen)

	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "prvá otázka"},
		{Role: domain.RoleAssistant, Content: "prvá odpoveď"},
	}
	if _, err := svc.Answer(context.Background(), Request{Message: "druhá otázka", History: history}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// system, history user, history assistant, question
	if len(gen.messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(gen.messages))
	}
	if gen.messages[1].Content != "prvá otázka" || gen.messages[2].Content != "prvá odpoveď" {
		t.Errorf("history out of order: %+v", gen.messages)
	}
	if gen.messages[3].Content != "druhá otázka" {
		t.Errorf("question must come last: %+v", gen.messages[3])
	}
}

func TestBuildContext_RespectsCharBudget(t *testing.T) {
	long := strings.Repeat("a", 200)
	results := []domain.RetrievalResult{
		{Content: long, Filename: "one.txt", Distance: 0.1},
		{Content: long, Filename: "two.txt", Distance: 0.2},
		{Content: long, Filename: "three.txt", Distance: 0.3},
	}

	block, sources := buildContext(results, "Úryvky:", 500)

	if len(sources) != 2 {
		t.Fatalf("expected 2 sources within budget, got %d", len(sources))
	}
	if strings.Contains(block, "three.txt") {
		t.Error("third excerpt should not fit the budget")
	}
}

func TestBuildContext_FirstExcerptAlwaysIncluded(t *testing.T) {
	results := []domain.RetrievalResult{
		{Content: strings.Repeat("b", 300), Filename: "big.txt", Distance: 0.1},
	}

	block, sources := buildContext(results, "Úryvky:", 100)

	if len(sources) != 1 {
		t.Fatalf("the top excerpt must always be included, got %d sources", len(sources))
	}
	if !strings.Contains(block, "big.txt") {
		t.Error("excerpt missing from block")
	}
}

func TestDisclaimerPolicy(t *testing.T) {
	policy := DisclaimerPolicy{}
	pack := languagePacks["sk"]

	t.Run("prepends when absent", func(t *testing.T) {
		out := policy.Apply("Odpoveď.", pack)
		if !strings.HasPrefix(out, pack.disclaimer) {
			t.Errorf("disclaimer not leading: %q", out)
		}
		if !strings.HasSuffix(out, "Odpoveď.") {
			t.Errorf("original answer lost: %q", out)
		}
	})

	t.Run("no duplicate when present", func(t *testing.T) {
		in := "Odpoveď. " + pack.disclaimer
		out := policy.Apply(in, pack)
		if out != in {
			t.Errorf("answer changed: %q", out)
		}
		if strings.Count(out, pack.disclaimer) != 1 {
			t.Errorf("disclaimer duplicated: %q", out)
		}
	})

	t.Run("empty answer becomes disclaimer", func(t *testing.T) {
		if out := policy.Apply("", pack); out != pack.disclaimer {
			t.Errorf("got %q", out)
		}
	})
}
