package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/rosco-backend/internal"
	"github.com/scythe504/rosco-backend/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms-available", s.GetRoomToJoin).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/rooms/{code}", s.GetRoom).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/rooms/{code}/results", s.GetRoomResults).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/ws", s.ws)

	if s.staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	} else {
		r.HandleFunc("/", s.HelloWorldHandler).Methods(http.MethodGet)
	}

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	wildcard := len(s.allowedOrigins) == 0 || slices.Contains(s.allowedOrigins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case wildcard:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.allowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, http.StatusOK, time.Now(), map[string]string{"message": "rosco-backend"})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("healthy"))
}

func (s *Server) GetRoomToJoin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if code := s.rooms.JoinableRoom(); code != "" {
		writeResponse(w, http.StatusOK, start, code)
		return
	}
	writeResponse(w, http.StatusNotFound, start, "No joinable rooms available")
}

func (s *Server) GetRoom(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snap, err := s.rooms.Snapshot(mux.Vars(r)["code"])
	if err != nil {
		writeError(w, start, err)
		return
	}
	writeResponse(w, http.StatusOK, start, snap)
}

func (s *Server) GetRoomResults(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	results, err := s.rooms.Results(mux.Vars(r)["code"])
	if err != nil {
		writeError(w, start, err)
		return
	}
	writeResponse(w, http.StatusOK, start, results)
}

func writeError(w http.ResponseWriter, start time.Time, err error) {
	if errors.Is(err, game.ErrRoomNotFound) {
		writeResponse(w, http.StatusNotFound, start, "Room not found")
		return
	}
	log.Error().Err(err).Msg("[writeError] unexpected error")
	writeResponse(w, http.StatusInternalServerError, start, "Internal server error")
}

// writeResponse wraps data in the Response envelope with timing fields.
func writeResponse(w http.ResponseWriter, status int, start time.Time, data any) {
	startMs := start.UnixMilli()
	endMs := time.Now().UnixMilli()
	resp := internal.Response{
		StatusCode:    status,
		RespStartTime: startMs,
		RespEndTime:   endMs,
		NetRespTime:   endMs - startMs,
		Data:          data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("[writeResponse] error encoding response")
	}
}
