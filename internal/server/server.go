package server

import (
	"net/http"
	"time"

	"github.com/scythe504/rosco-backend/internal"
	"github.com/scythe504/rosco-backend/internal/config"
)

// Rooms is the read side of the room registry exposed over HTTP.
type Rooms interface {
	JoinableRoom() string
	Snapshot(code string) (internal.Snapshot, error)
	Results(code string) (internal.FinalResults, error)
}

type Server struct {
	rooms          Rooms
	ws             http.Handler
	allowedOrigins []string
	staticDir      string
}

func New(cfg config.Config, rooms Rooms, ws http.Handler) *Server {
	return &Server{
		rooms:          rooms,
		ws:             ws,
		allowedOrigins: cfg.AllowedOrigins,
		staticDir:      cfg.StaticDir,
	}
}

// NewServer wires the routes into an http.Server listening on cfg's port.
func NewServer(cfg config.Config, rooms Rooms, ws http.Handler) *http.Server {
	s := New(cfg, rooms, ws)
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}
}
