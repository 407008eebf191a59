package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/outcome"
)

// StatusFor maps a failure kind to its HTTP status. The CLI derives its exit codes from it too.
func StatusFor(kind outcome.Kind) int {
	switch {
	case kind == outcome.KindInvalidInput:
		return http.StatusBadRequest
	case kind.NotFound():
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, question string) (*models.Answer, bool) {
	s.logger.Debug("query request", zap.Int("chars", len(question)))
	answer, err := s.pipeline.Handle(r.Context(), models.Question(question)).Get()
	if err != nil {
		s.respondError(w, StatusFor(outcome.KindOf(err)), outcome.PublicMessage(err))
		return nil, false
	}
	return answer, true
}

// handleLegacyQuery serves GET /query/?question=... with a {"response": ...} body.
func (s *Server) handleLegacyQuery(w http.ResponseWriter, r *http.Request) {
	answer, ok := s.answer(w, r, r.URL.Query().Get("question"))
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, models.LegacyQueryResponse{Response: answer.Text})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	answer, ok := s.answer(w, r, req.Question)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	out := make([]models.CollectionInfo, 0, len(s.collections))
	for _, c := range s.collections {
		info := models.CollectionInfo{Tag: c.Tag, Index: c.Index, Keywords: c.Keywords}
		if s.search != nil {
			n, err := s.search.Count(r.Context(), c.Index)
			if err != nil {
				s.logger.Warn("collection count failed", zap.String("index", c.Index), zap.Error(err))
			} else {
				info.Documents = &n
			}
		}
		out = append(out, info)
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"collections": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.ErrorResponse{Detail: message})
}
