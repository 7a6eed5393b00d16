// Package controller exposes the scheduling engine to the UI collaborator
// as a thin JSON API. It maps engine rejections to status codes and never
// touches rendering.
package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/slotboard/slotboard/internal/controller/handlers"
	"github.com/slotboard/slotboard/internal/seed"
	"github.com/slotboard/slotboard/internal/service"
)

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func New(addr string, slots *service.SlotService, seeder *seed.Seeder, logger *zap.Logger) *Server {
	slotH := handlers.NewSlotHandler(slots, logger)
	seedH := handlers.NewSeedHandler(seeder, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/slots", slotH.Calendar)
	mux.HandleFunc("POST /api/slots", slotH.Create)
	mux.HandleFunc("DELETE /api/slots", slotH.Clear)
	mux.HandleFunc("GET /api/slots/{id}", slotH.Get)
	mux.HandleFunc("PATCH /api/slots/{id}", slotH.Update)
	mux.HandleFunc("DELETE /api/slots/{id}", slotH.Delete)
	mux.HandleFunc("POST /api/seed", seedH.Reseed)

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: handlers.RequestLogger(logger)(mux),
		},
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
