package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	jwtverify "github.com/brdnvt/django-blog-recommendation-system/pkg/jwt"
)

// Server is the HTTP server for the recommendation query API.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

func NewServer(port int, recs *RecommendationHandler, verifier *jwtverify.Verifier, log zerolog.Logger) *Server {
	auth := AuthMiddleware(verifier, log)

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", auth(http.HandlerFunc(recs.GetRecommendations)))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// Start blocks until the server is shut down or fails.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
