package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// NewAdminServer builds the ambient operational HTTP endpoint that runs
// alongside (not instead of) the TCP protocol server. Grounded on the
// teacher's NewHTTPServer (gorilla/mux router, one handler per route),
// generalized from the produce/consume data-plane endpoints to
// read-only health and status endpoints, since the data plane itself
// is served by the TCP protocol in server.go.
func NewAdminServer(addr string, s *Server) *http.Server {
	started := time.Now()
	h := &adminHandlers{server: s, started: started}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.handleStats).Methods(http.MethodGet)

	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}

type adminHandlers struct {
	server  *Server
	started time.Time
}

func (h *adminHandlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statsResponse struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (h *adminHandlers) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{UptimeSeconds: time.Since(h.started).Seconds()}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
