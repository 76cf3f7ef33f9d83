// Package web provides an HTTP status server for the potty-timer daemon.
package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/sweeney/potty-timer/internal/logstore"
	"github.com/sweeney/potty-timer/internal/status"
)

// pageLogLines is how many log entries the HTML page shows.
const pageLogLines = 9

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	store      logstore.Store
}

// New creates a Server that reads state from the given tracker and log
// entries from store. The store must be safe for concurrent reads.
func New(addr string, tracker *status.Tracker, store logstore.Store) *Server {
	s := &Server{tracker: tracker, store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/logs.json", s.handleLogs)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	entries, err := s.recent(pageLogLines)
	if err != nil {
		log.Printf("web: read log: %v", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, entries)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid n", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	entries, err := s.recent(n)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write(formatLogsError(err))
		return
	}
	w.Write(formatLogs(entries))
}

// recent returns up to n entries, most recent first. n == 0 means all.
func (s *Server) recent(n int) ([]logstore.Entry, error) {
	if s.store == nil {
		return nil, nil
	}
	entries, err := s.store.ReadAll()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		n = len(entries)
	}
	return logstore.Recent(entries, n), nil
}
