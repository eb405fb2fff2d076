package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/exportin-lab/exportin/pkg/usecase"
	"github.com/exportin-lab/exportin/pkg/utils/errutil"
)

type Server struct {
	router       *chi.Mux
	maxQuerySize int64
}

type Options func(*Server)

// WithMaxQuerySize bounds the accepted request body size in bytes
func WithMaxQuerySize(size int64) Options {
	return func(s *Server) {
		s.maxQuerySize = size
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	if uc == nil {
		return nil, goerr.New("use cases are required")
	}

	r := chi.NewRouter()

	s := &Server{
		router:       r,
		maxQuerySize: 64 * 1024,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", queryHandler(uc, s.maxQuerySize))
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// queryRequest is the body of POST /api/v1/query
type queryRequest struct {
	Query string `json:"query"`
}

func queryHandler(uc *usecase.UseCases, maxQuerySize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req queryRequest
		body := http.MaxBytesReader(w, r.Body, maxQuerySize)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		resp := uc.Query.Handle(ctx, req.Query)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			_ = errutil.Handle(ctx, err, "failed to encode query response")
		}
	}
}
