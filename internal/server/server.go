package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wicaksana/logbook/internal/handler"
	"github.com/wicaksana/logbook/internal/metrics"
	"github.com/wicaksana/logbook/internal/middleware"
	"github.com/wicaksana/logbook/internal/realtime"
	"github.com/wicaksana/logbook/internal/store"
)

type Server struct {
	db      *sql.DB
	hub     *realtime.Hub
	recordH *handler.RecordHandler
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := realtime.NewHub(logger.With("component", "realtime"))
	recordStore := store.NewRecordStore(db)

	return &Server{
		db:      db,
		hub:     hub,
		recordH: handler.NewRecordHandler(recordStore, hub, logger.With("component", "record")),
		metrics: metrics.New(),
		logger:  logger,
	}
}

// Hub returns the realtime hub, mainly for tests.
func (s *Server) Hub() *realtime.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Backup record API
	mux.HandleFunc("GET /api/backups", s.recordH.List)
	mux.HandleFunc("POST /api/backups", s.recordH.Create)
	mux.HandleFunc("PUT /api/backups/{id}", s.recordH.Update)
	mux.HandleFunc("DELETE /api/backups/{id}", s.recordH.Delete)

	// Realtime record-change stream
	mux.HandleFunc("GET /ws", realtime.Handler(s.hub))

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", s.metrics.Handler())

	h := s.metrics.Instrument(mux)
	h = middleware.CORS(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
