package preview

import (
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

var errNoBuild = errors.RuntimeError("no successful build yet").Retryable().Build()

func notFound(msg string) *errors.ErrorBuilder {
	return errors.NewError(errors.CategoryNotFound, msg)
}

// built returns the current result or writes a 503.
func (s *Server) built(w http.ResponseWriter, r *http.Request) (*build.Result, bool) {
	res := s.Result()
	if res == nil {
		s.errs.WriteErrorResponse(w, r, errNoBuild)
		return nil, false
	}
	return res, true
}

func (s *Server) handleRouteTable(w http.ResponseWriter, r *http.Request) {
	res, ok := s.built(w, r)
	if !ok {
		return
	}
	data, err := res.Table.Bytes()
	if err != nil {
		s.errs.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to serialize route table").Build())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Build-Id", res.BuildID)
	_, _ = w.Write(data)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		s.errs.WriteErrorResponse(w, r, errors.ValidationError("query parameter path is required").Build())
		return
	}
	res, ok := s.built(w, r)
	if !ok {
		return
	}
	m, found := res.Table.Lookup(p)
	if !found {
		s.errs.WriteErrorResponse(w, r, notFound("no route matches path").WithContext("path", p).Build())
		return
	}
	_ = writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docID := q.Get("doc")
	if docID == "" {
		s.errs.WriteErrorResponse(w, r, errors.ValidationError("query parameter doc is required").Build())
		return
	}
	res, ok := s.built(w, r)
	if !ok {
		return
	}
	nav, err := res.Navigation(docID, q.Get("locale"))
	if err != nil {
		s.errs.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, nav)
}

func (s *Server) handleSearchIndex(w http.ResponseWriter, r *http.Request) {
	locale, file := r.PathValue("locale"), r.PathValue("file")
	res, ok := s.built(w, r)
	if !ok {
		return
	}
	for _, ix := range res.Indexes {
		if ix.Locale != locale {
			continue
		}
		name, err := ix.FileName()
		if err != nil || name != file {
			continue
		}
		data, err := ix.Bytes()
		if err != nil {
			s.errs.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to serialize search index").Build())
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(data)
		return
	}
	s.errs.WriteErrorResponse(w, r, notFound("search index not found").
		WithContext("locale", locale).WithContext("file", file).Build())
}

// handleSearch queries the in-memory index of a locale; locale defaults to
// the default locale and limit to searchResultLimits.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		s.errs.WriteErrorResponse(w, r, errors.ValidationError("query parameter q is required").Build())
		return
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.errs.WriteErrorResponse(w, r, errors.ValidationError("limit must be a positive integer").WithContext("limit", raw).Build())
			return
		}
		limit = n
	}
	res, ok := s.built(w, r)
	if !ok {
		return
	}
	results, err := res.Search(query, q.Get("locale"), limit)
	if err != nil {
		s.errs.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, results)
}

// Health states reported by /healthz.
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status    string         `json:"status"`
	Version   string         `json:"version,omitempty"`
	Uptime    string         `json:"uptime"`
	Builds    int            `json:"builds"`
	BuildID   string         `json:"buildId,omitempty"`
	Outcome   string         `json:"outcome,omitempty"`
	Pages     map[string]int `json:"pages,omitempty"`
	LastBuild *time.Time     `json:"lastBuild,omitempty"`
	Trigger   string         `json:"trigger,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.current.Load()
	resp := HealthResponse{
		Status:  HealthHealthy,
		Version: s.version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Builds:  snap.builds,
		Trigger: snap.trigger,
	}
	if !snap.lastBuild.IsZero() {
		t := snap.lastBuild
		resp.LastBuild = &t
	}
	if snap.result != nil {
		resp.BuildID = snap.result.BuildID
		resp.Outcome = string(snap.result.Outcome)
		resp.Pages = snap.result.Report.Pages
	}
	if snap.lastErr != nil {
		resp.Error = snap.lastErr.Error()
		resp.Status = HealthDegraded
	}

	status := http.StatusOK
	if snap.result == nil {
		resp.Status = HealthUnhealthy
		status = http.StatusServiceUnavailable
	}
	_ = writeJSON(w, status, resp)
}
