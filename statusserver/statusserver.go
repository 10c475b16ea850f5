// Package statusserver exposes a resizer.Resizer's live Counters over HTTP
// while a long run is in progress (SPEC_FULL.md §4 A7), the same
// gorilla/mux route-per-endpoint shape monitoring/monitor.go uses to expose
// a running simulation.
package statusserver

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"sart/resizer"
)

// Server serves /status reading a *resizer.Resizer's Counters under lock;
// the CLI calls Snapshot after every entry point so concurrent GETs never
// race a CORE call in progress (CORE itself stays single-threaded, Design
// Notes §9 — the lock here only guards the last-snapshot copy, never the
// live Resizer).
type Server struct {
	mu       sync.RWMutex
	counters resizer.Counters
	running  string

	listener net.Listener
}

// Listen binds addr (empty disables statusserver, SPEC_FULL.md §6) and
// starts serving in the background. Callers still call Snapshot to publish
// counters; Listen alone does not read the Resizer.
func Listen(addr string) (*Server, error) {
	if addr == "" {
		return nil, nil
	}

	s := &Server{}

	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.listener = listener

	go func() {
		if err := http.Serve(listener, r); err != nil && err != http.ErrServerClosed {
			log.Printf("statusserver: %v", err)
		}
	}()

	return s, nil
}

// Snapshot publishes the Counters a caller observed after entryPoint
// returned (or while it is still running, for a long repair pass).
func (s *Server) Snapshot(entryPoint string, c resizer.Counters) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = entryPoint
	s.counters = c
}

type statusResponse struct {
	EntryPoint          string  `json:"entry_point"`
	InsertedBufferCount int     `json:"inserted_buffer_count"`
	ResizeCount         int     `json:"resize_count"`
	DesignArea          float64 `json:"design_area"`
	MaxArea             float64 `json:"max_area"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	resp := statusResponse{
		EntryPoint:          s.running,
		InsertedBufferCount: s.counters.InsertedBufferCount,
		ResizeCount:         s.counters.ResizeCount,
		DesignArea:          s.counters.DesignArea,
		MaxArea:             s.counters.MaxArea,
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("statusserver: encoding response: %v", err)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s == nil || s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
