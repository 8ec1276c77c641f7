package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Abraxas-365/wacloud/logx"
	"github.com/gorilla/mux"
)

// Server hosts one or more endpoints on a gorilla/mux router
type Server struct {
	router *mux.Router
	addr   string
	server *http.Server
}

// NewServer creates a server listening on addr (":8080")
func NewServer(addr string) *Server {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return &Server{
		router: r,
		addr:   addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handle mounts an endpoint at path for GET and POST
func (s *Server) Handle(path string, e *Endpoint) {
	s.router.Handle(path, e).Methods(http.MethodGet, http.MethodPost)
}

// Router exposes the underlying router, mainly for tests and extra routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start blocks serving until Stop is called
func (s *Server) Start() error {
	logx.Info("webhook server listening on %s", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
