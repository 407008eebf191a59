package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/config"
	"github.com/hyperjump/surveyrag/internal/llm"
	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/pipeline"
	"github.com/hyperjump/surveyrag/internal/retrieval"
	"github.com/hyperjump/surveyrag/internal/selector"
)

type fakeSearch struct {
	docs     map[string][]models.RetrievedDocument
	err      error
	countErr error
}

func (f *fakeSearch) Search(ctx context.Context, index, query string, top int) ([]models.RetrievedDocument, error) {
	return f.docs[index], f.err
}

func (f *fakeSearch) Upload(ctx context.Context, index string, doc *models.RetrievedDocument) error {
	return nil
}

func (f *fakeSearch) Count(ctx context.Context, index string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.docs[index])), nil
}

func newTestServer(svc *fakeSearch, completer llm.Completer) *Server {
	cols := config.DefaultCollections()
	gen := llm.NewGenerator(completer, llm.DefaultParams(), zap.NewNop())
	p := pipeline.New(selector.FromConfig(cols), retrieval.New(svc, cols), gen, pipeline.WithLogger(zap.NewNop()))
	cfg := &config.ServerConfig{Host: "localhost", Port: 8080}
	return NewServer(p, svc, cols, cfg, zap.NewNop())
}

func okCompleter(text string) llm.Completer {
	return llm.CompleterFunc(func(context.Context, llm.Request) (string, error) { return text, nil })
}

func surveyDocs() *fakeSearch {
	return &fakeSearch{docs: map[string][]models.RetrievedDocument{
		"christmas-index":      {{ID: "1", Content: mo.Some("Families gather for dinner.")}},
		"sustainability-index": {{ID: "2", Content: mo.Some("Most recycle weekly.")}},
	}}
}

func decodeDetail(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var e models.ErrorResponse
	if err := json.NewDecoder(body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e.Detail
}

func TestLegacyQuery(t *testing.T) {
	s := newTestServer(surveyDocs(), okCompleter("Families mostly gather for dinner."))
	req := httptest.NewRequest(http.MethodGet, "/query/?question=What+do+people+do+at+Christmas%3F", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp models.LegacyQueryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Response != "Families mostly gather for dinner." {
		t.Errorf("response = %q", resp.Response)
	}
}

func TestLegacyQuery_statusMapping(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		svc        *fakeSearch
		completer  llm.Completer
		wantStatus int
		wantDetail string
	}{
		{"empty question", "", surveyDocs(), okCompleter("x"), http.StatusBadRequest, "question parameter cannot be empty"},
		{"no matching index", "What+is+the+weather+today%3F", surveyDocs(), okCompleter("x"), http.StatusNotFound, "determine the relevant index"},
		{"no results", "green", &fakeSearch{docs: map[string][]models.RetrievedDocument{}}, okCompleter("x"), http.StatusNotFound, "no relevant information found"},
		{"retrieval failure", "christmas", &fakeSearch{err: errors.New("dial tcp")}, okCompleter("x"), http.StatusInternalServerError, "search service"},
		{"generation failure", "christmas", surveyDocs(), llm.CompleterFunc(func(context.Context, llm.Request) (string, error) {
			return "", errors.New("api-key=secret rejected")
		}), http.StatusInternalServerError, "generating the answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.svc, tt.completer)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/query/?question="+tt.question, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			detail := decodeDetail(t, rec.Body)
			if !strings.Contains(strings.ToLower(detail), tt.wantDetail) {
				t.Errorf("detail = %q, want it to contain %q", detail, tt.wantDetail)
			}
			if strings.Contains(detail, "secret") {
				t.Errorf("detail leaks cause: %q", detail)
			}
		})
	}
}

func TestQuery(t *testing.T) {
	s := newTestServer(surveyDocs(), okCompleter("Most recycle weekly."))
	body := bytes.NewBufferString(`{"question": "Is sustainability important?"}`)
	rec := httptest.NewRecorder()
	s.handleQuery(rec, httptest.NewRequest(http.MethodPost, "/api/v1/query", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var answer models.Answer
	if err := json.NewDecoder(rec.Body).Decode(&answer); err != nil {
		t.Fatal(err)
	}
	if answer.Collection != "sustainability" || answer.Documents != 1 || answer.Text != "Most recycle weekly." {
		t.Errorf("answer = %+v", answer)
	}
}

func TestQuery_invalidBody(t *testing.T) {
	s := newTestServer(surveyDocs(), okCompleter("x"))
	rec := httptest.NewRecorder()
	s.handleQuery(rec, httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewBufferString("{")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCollections(t *testing.T) {
	s := newTestServer(surveyDocs(), okCompleter("x"))
	rec := httptest.NewRecorder()
	s.handleCollections(rec, httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil))

	var resp struct {
		Collections []models.CollectionInfo `json:"collections"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Collections) != 2 || resp.Collections[0].Tag != "christmas" {
		t.Fatalf("collections = %+v", resp.Collections)
	}
	if resp.Collections[0].Documents == nil || *resp.Collections[0].Documents != 1 {
		t.Errorf("documents = %v", resp.Collections[0].Documents)
	}
}

func TestCollections_countFailureOmitsDocuments(t *testing.T) {
	svc := surveyDocs()
	svc.countErr = errors.New("unreachable")
	s := newTestServer(svc, okCompleter("x"))
	rec := httptest.NewRecorder()
	s.handleCollections(rec, httptest.NewRequest(http.MethodGet, "/api/v1/collections", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"documents"`) {
		t.Errorf("documents should be omitted: %s", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(surveyDocs(), okCompleter("x"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(surveyDocs(), okCompleter("x"))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
