package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/leapdq/internal/state"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/rule"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"source":   s.source,
		"rulesets": len(s.ruleSets()),
	})
}

func (s *Server) listRuleSets(w http.ResponseWriter, _ *http.Request) {
	sets := s.ruleSets()
	if sets == nil {
		sets = []*rule.RuleSet{}
	}
	s.writeJSON(w, http.StatusOK, sets)
}

func (s *Server) getRuleSet(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.lookup(chi.URLParam(r, "name"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "rule set not found")
		return
	}
	s.writeJSON(w, http.StatusOK, rs)
}

func (s *Server) getExpression(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.lookup(chi.URLParam(r, "name"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "rule set not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(rs.Expression() + "\n"))
}

type checkRequest struct {
	Value *string `json:"value"`
}

func toValue(p *string) core.Value {
	if p == nil {
		return core.Null()
	}
	return core.Text(*p)
}

func (s *Server) checkValue(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.lookup(chi.URLParam(r, "name"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "rule set not found")
		return
	}

	var req checkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, s.validator.Evaluate(rs, toValue(req.Value)))
}

type recordRequest struct {
	Values map[string]*string `json:"values"`
}

type columnFailure struct {
	Column   string        `json:"column"`
	Rule     string        `json:"rule"`
	Reason   string        `json:"reason,omitempty"`
	Severity core.Severity `json:"severity"`
}

type recordResponse struct {
	Valid    bool            `json:"valid"`
	Failures []columnFailure `json:"failures,omitempty"`
	Unknown  []string        `json:"unknown,omitempty"`
}

// checkRecord validates several columns of one record at once. Columns
// without a rule set are reported as unknown and not checked.
func (s *Server) checkRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp := recordResponse{Valid: true}
	for _, rs := range s.ruleSets() {
		v, present := req.Values[rs.Name()]
		if !present {
			continue
		}
		verdict := s.validator.Evaluate(rs, toValue(v))
		if !verdict.Valid {
			resp.Valid = false
			resp.Failures = append(resp.Failures, columnFailure{
				Column:   rs.Name(),
				Rule:     verdict.Rule,
				Reason:   verdict.Reason,
				Severity: verdict.Severity,
			})
		}
	}
	for name := range req.Values {
		if _, ok := s.lookup(name); !ok {
			resp.Unknown = append(resp.Unknown, name)
		}
	}
	slices.Sort(resp.Unknown)

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.Sources(r.Context())
	if err != nil {
		s.logger.Error("failed to list sources", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list sources")
		return
	}
	s.writeJSON(w, http.StatusOK, sources)
}

func limitParam(r *http.Request, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		return n
	}
	return def
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), limitParam(r, 20))
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) listFailures(w http.ResponseWriter, r *http.Request) {
	failures, err := s.store.RunFailures(r.Context(), chi.URLParam(r, "id"), limitParam(r, 100))
	switch {
	case errors.Is(err, state.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "run not found")
	case err != nil:
		s.logger.Error("failed to list failures", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list failures")
	default:
		if failures == nil {
			failures = []state.FailureRecord{}
		}
		s.writeJSON(w, http.StatusOK, failures)
	}
}
