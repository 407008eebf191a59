package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/config"
	"github.com/hyperjump/surveyrag/internal/contextbuilder"
	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/outcome"
	"github.com/hyperjump/surveyrag/internal/retrieval"
	"github.com/hyperjump/surveyrag/internal/selector"
	"github.com/hyperjump/surveyrag/pkg/utils"
)

type fakeService struct {
	docs  map[string][]models.RetrievedDocument
	err   error
	calls int
}

func (f *fakeService) Search(ctx context.Context, index, query string, top int) ([]models.RetrievedDocument, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[index], nil
}

func (f *fakeService) Upload(ctx context.Context, index string, doc *models.RetrievedDocument) error {
	return nil
}

func (f *fakeService) Count(ctx context.Context, index string) (int64, error) {
	return int64(len(f.docs[index])), nil
}

type fakeGenerator struct {
	answer  string
	err     error
	calls   int
	context string
}

func (f *fakeGenerator) Generate(ctx context.Context, surveyContext string, question models.Question) (string, error) {
	f.calls++
	f.context = surveyContext
	return f.answer, f.err
}

func newTestOrchestrator(svc *fakeService, gen *fakeGenerator, opts ...Option) *Orchestrator {
	cols := config.DefaultCollections()
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	return New(selector.FromConfig(cols), retrieval.New(svc, cols), gen, opts...)
}

func christmasDocs() map[string][]models.RetrievedDocument {
	return map[string][]models.RetrievedDocument{
		"christmas-index": {
			{ID: "1", Content: mo.Some("Respondents plan family dinners."), QuestionsAndResponses: []models.QAPair{{Question: "Budget", Response: "200"}}},
			{ID: "2", Content: mo.Some("Gift cards are popular.")},
		},
	}
}

func TestHandle_answersChristmasQuestion(t *testing.T) {
	svc := &fakeService{docs: christmasDocs()}
	gen := &fakeGenerator{answer: "Most respondents plan family dinners."}

	res := newTestOrchestrator(svc, gen).Handle(context.Background(), "What do people plan for Christmas?")
	if res.IsError() {
		t.Fatalf("unexpected error: %v", res.Error())
	}
	answer := res.MustGet()
	if answer.Text != "Most respondents plan family dinners." || answer.Collection != "christmas" || answer.Documents != 2 {
		t.Errorf("answer = %+v", answer)
	}
	if gen.context != "Respondents plan family dinners. Budget: 200\nGift cards are popular." {
		t.Errorf("context = %q", gen.context)
	}
}

func TestHandle_routesSustainability(t *testing.T) {
	svc := &fakeService{docs: map[string][]models.RetrievedDocument{
		"sustainability-index": {{ID: "s", Content: mo.Some("70% recycle.")}},
	}}
	gen := &fakeGenerator{answer: "Seventy percent recycle."}
	res := newTestOrchestrator(svc, gen).Handle(context.Background(), "How eco-friendly are shoppers?")
	if res.IsError() {
		t.Fatal(res.Error())
	}
	if res.MustGet().Collection != "sustainability" {
		t.Errorf("collection = %q", res.MustGet().Collection)
	}
}

func TestHandle_noMatchingIndex(t *testing.T) {
	svc := &fakeService{docs: christmasDocs()}
	gen := &fakeGenerator{answer: "x"}
	res := newTestOrchestrator(svc, gen).Handle(context.Background(), "What is the weather today?")
	if !errors.Is(res.Error(), outcome.ErrNoMatchingIndex) {
		t.Fatalf("err = %v", res.Error())
	}
	if svc.calls != 0 || gen.calls != 0 {
		t.Errorf("downstream calls: search=%d generate=%d", svc.calls, gen.calls)
	}
}

func TestHandle_emptyQuestion(t *testing.T) {
	for _, q := range []models.Question{"", "   \t"} {
		svc := &fakeService{docs: christmasDocs()}
		gen := &fakeGenerator{answer: "x"}
		res := newTestOrchestrator(svc, gen).Handle(context.Background(), q)
		if outcome.KindOf(res.Error()) != outcome.KindInvalidInput {
			t.Fatalf("question %q: err = %v", q, res.Error())
		}
		if outcome.PublicMessage(res.Error()) != MsgEmptyQuestion {
			t.Errorf("message = %q", outcome.PublicMessage(res.Error()))
		}
		if svc.calls != 0 || gen.calls != 0 {
			t.Errorf("downstream calls: search=%d generate=%d", svc.calls, gen.calls)
		}
	}
}

func TestHandle_noResultsSkipsGeneration(t *testing.T) {
	svc := &fakeService{docs: map[string][]models.RetrievedDocument{}}
	gen := &fakeGenerator{answer: "x"}
	res := newTestOrchestrator(svc, gen).Handle(context.Background(), "holiday shopping")
	if outcome.KindOf(res.Error()) != outcome.KindNoResults {
		t.Fatalf("err = %v", res.Error())
	}
	if gen.calls != 0 {
		t.Error("generation must not run without documents")
	}
}

func TestHandle_serviceFailures(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeService
		gen  *fakeGenerator
		want outcome.Kind
	}{
		{"retrieval", &fakeService{err: errors.New("dial tcp: refused")}, &fakeGenerator{answer: "x"}, outcome.KindRetrievalService},
		{"generation", &fakeService{docs: christmasDocs()}, &fakeGenerator{err: outcome.Wrap(outcome.KindGenerationService, "gen failed", errors.New("503"))}, outcome.KindGenerationService},
		{"unclassified", &fakeService{docs: christmasDocs()}, &fakeGenerator{err: errors.New("panic-free surprise")}, outcome.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestOrchestrator(tt.svc, tt.gen).Handle(context.Background(), "christmas")
			if outcome.KindOf(res.Error()) != tt.want {
				t.Errorf("kind = %v, want %v", outcome.KindOf(res.Error()), tt.want)
			}
		})
	}
}

func TestHandle_truncatesLongContext(t *testing.T) {
	long := strings.Repeat("a", 100)
	svc := &fakeService{docs: map[string][]models.RetrievedDocument{
		"christmas-index": {{ID: "1", Content: mo.Some(long)}},
	}}
	gen := &fakeGenerator{answer: "ok"}
	res := newTestOrchestrator(svc, gen, WithMaxContextChars(10)).Handle(context.Background(), "christmas")
	if res.IsError() {
		t.Fatal(res.Error())
	}
	if gen.context != strings.Repeat("a", 7)+"..." {
		t.Errorf("context = %q", gen.context)
	}
	if n := utils.RuneLen(gen.context); n > 10 {
		t.Errorf("context has %d runes, limit 10", n)
	}
}

func TestHandle_repeatedQuestionIsStable(t *testing.T) {
	svc := &fakeService{docs: christmasDocs()}
	gen := &fakeGenerator{answer: "Family dinners."}
	o := newTestOrchestrator(svc, gen)
	ctx := context.Background()

	first := o.Handle(ctx, "What do people plan for Christmas?")
	firstContext := gen.context
	second := o.Handle(ctx, "What do people plan for Christmas?")
	if first.IsError() || second.IsError() {
		t.Fatalf("errors: %v, %v", first.Error(), second.Error())
	}
	a, b := first.MustGet(), second.MustGet()
	if a.Collection != b.Collection || a.Documents != b.Documents {
		t.Errorf("first = %+v, second = %+v", a, b)
	}
	if gen.context != firstContext {
		t.Errorf("context changed between calls:\n%q\n%q", firstContext, gen.context)
	}
	if svc.calls != 2 || gen.calls != 2 {
		t.Errorf("calls: search=%d generate=%d, want 2 each", svc.calls, gen.calls)
	}
}

func TestHandle_blankDocumentsUseSentinel(t *testing.T) {
	svc := &fakeService{docs: map[string][]models.RetrievedDocument{
		"christmas-index": {{ID: "1"}},
	}}
	gen := &fakeGenerator{answer: "ok"}
	if res := newTestOrchestrator(svc, gen).Handle(context.Background(), "christmas"); res.IsError() {
		t.Fatal(res.Error())
	}
	if gen.context != contextbuilder.Sentinel {
		t.Errorf("context = %q", gen.context)
	}
}
