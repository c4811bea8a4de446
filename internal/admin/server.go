// Admin exposes a JSON HTTP surface over a running or completed fleet
// validation: per-server reports, aggregate health, and the final snapshot.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"fleetbringup/internal/logging"
	"fleetbringup/internal/report"
)

// Server collects validation reports as they complete and serves them over
// HTTP. It implements report.Writer so the fleet runner can feed it directly.
type Server struct {
	mu       sync.RWMutex
	reports  map[string]report.ValidationReport
	snapshot *report.FleetSnapshot
}

// NewServer returns an empty admin server.
func NewServer() *Server {
	return &Server{reports: make(map[string]report.ValidationReport)}
}

// Write records the latest report for a server. Reruns overwrite.
func (s *Server) Write(r report.ValidationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ServerID] = r
	return nil
}

// WriteSnapshot stores the completed fleet snapshot.
func (s *Server) WriteSnapshot(snap report.FleetSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &snap
	return nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/fleet-health", s.handleFleetHealth)
	mux.HandleFunc("/reports", s.handleReports)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	return mux
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	srv := &http.Server{Addr: addr, Handler: s.routes()}

	errc := make(chan error, 1)
	go func() {
		log.Info("admin server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// fleetHealth is the aggregate view served at /fleet-health.
type fleetHealth struct {
	Servers      int               `json:"servers"`
	Pass         int               `json:"pass"`
	Warn         int               `json:"warn"`
	Fail         int               `json:"fail"`
	TopOffenders []report.Offender `json:"top_offenders"`
}

func (s *Server) handleFleetHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	reports := s.collectLocked()
	s.mu.RUnlock()

	health := fleetHealth{Servers: len(reports)}
	for _, rep := range reports {
		switch rep.OverallStatus {
		case report.StatusPass:
			health.Pass++
		case report.StatusWarn:
			health.Warn++
		case report.StatusFail:
			health.Fail++
		}
	}
	health.TopOffenders = report.RankOffenders(reports)
	writeJSON(w, health)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if serverID := r.URL.Query().Get("server"); serverID != "" {
		rep, ok := s.reports[serverID]
		if !ok {
			http.Error(w, "unknown server", http.StatusNotFound)
			return
		}
		writeJSON(w, rep)
		return
	}
	writeJSON(w, s.collectLocked())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		http.Error(w, "no snapshot yet", http.StatusNotFound)
		return
	}
	writeJSON(w, s.snapshot)
}

// collectLocked returns reports sorted by server id. Caller holds the lock.
func (s *Server) collectLocked() []report.ValidationReport {
	out := make([]report.ValidationReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServerID < out[j].ServerID })
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
