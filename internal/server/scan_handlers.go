package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/market-hunter/internal/modules/rank"
	"github.com/aristath/market-hunter/internal/modules/report"
	"github.com/aristath/market-hunter/internal/modules/snapshots"
)

// scanRequest is the POST /api/scan body. All fields are optional and fall
// back to the configured defaults.
type scanRequest struct {
	IndexSet  string `json:"index_set,omitempty"`
	PoolLimit *int   `json:"pool_limit,omitempty"`
	TopN      *int   `json:"top_n,omitempty"`
	Refresh   bool   `json:"refresh,omitempty"`
}

// handleScan runs the ranking pipeline and archives the result
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}

	opts := rank.Options{
		IndexSet:  s.cfg.IndexSet,
		PoolLimit: s.cfg.PoolLimit,
		TopN:      s.cfg.TopN,
		Refresh:   req.Refresh,
	}
	if req.IndexSet != "" {
		opts.IndexSet = req.IndexSet
	}
	if req.PoolLimit != nil {
		opts.PoolLimit = *req.PoolLimit
	}
	if req.TopN != nil {
		opts.TopN = *req.TopN
	}

	result := s.pipeline.Run(opts)

	if err := s.snapshots.Save(result); err != nil {
		// Archival is best effort; the scan result is still served
		s.log.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to archive scan run")
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleLatestResult serves the most recent archived scan
func (s *Server) handleLatestResult(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Latest()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load scan results")
		return
	}

	if snap == nil {
		// "No data" is a normal state for the UI, not an error
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"warning": "no scan results yet",
			"records": []interface{}{},
		})
		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

// handleListResults serves summaries of recent runs
func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	summaries, err := s.snapshots.List(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list scan runs")
		return
	}

	if summaries == nil {
		summaries = []snapshots.Summary{}
	}

	s.writeJSON(w, http.StatusOK, summaries)
}

// handleGetResult serves one archived run by ID
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.snapshots.Get(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load scan run")
		return
	}
	if snap == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("scan run %s not found", id))
		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

// handleResultNews serves one headline per symbol of an archived run
func (s *Server) handleResultNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.snapshots.Get(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load scan run")
		return
	}
	if snap == nil {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("scan run %s not found", id))
		return
	}

	s.writeJSON(w, http.StatusOK, s.enricher.Enrich(symbolsOf(snap)))
}

// handleLatestNews serves the news feed for the most recent run
func (s *Server) handleLatestNews(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Latest()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load scan results")
		return
	}
	if snap == nil {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}

	s.writeJSON(w, http.StatusOK, s.enricher.Enrich(symbolsOf(snap)))
}

// handleExportCSV streams the latest ranked table as the dashboard CSV
// download, percent columns formatted for display
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Latest()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load scan results")
		return
	}
	if snap == nil {
		s.writeError(w, http.StatusNotFound, "no scan results yet")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteDashboard(&buf, snap.Records); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to render CSV")
		return
	}

	filename := fmt.Sprintf("market_hunter_%s.csv", snap.CreatedAt.Format("2006-01-02_1504"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Error().Err(err).Msg("Failed to write CSV response")
	}
}

// symbolsOf lists the ranked symbols of a snapshot in display order
func symbolsOf(snap *snapshots.Snapshot) []string {
	symbols := make([]string, 0, len(snap.Records))
	for _, rec := range snap.Records {
		symbols = append(symbols, rec.Symbol)
	}
	return symbols
}
