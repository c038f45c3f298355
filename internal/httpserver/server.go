// internal/httpserver/server.go
//
// HTTP server wiring for the word-guessing backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     request logging).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints under /api, keyed to the signed session cookie.
//
// Notes:
//   - /api routes require a JSON Content-Type and answer 403 otherwise.
//   - A request without a valid session cookie gets a new session.
//   - POST /api/reset-game answers 409 when today's word was already played.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/session-server/internal/config"
	"github.com/robalobadob/wordle/apps/session-server/internal/game"
	"github.com/robalobadob/wordle/apps/session-server/internal/session"
	"github.com/robalobadob/wordle/apps/session-server/internal/words"
)

// Server bundles router, session service and cookie codec.
type Server struct {
	r        *chi.Mux
	sessions *session.Service
	cookies  *sessionCookies
	lists    *words.Lists
}

// New constructs a Server, installs middleware, and registers routes.
func New(sessions *session.Service, lists *words.Lists, cfg *config.Config) (*Server, error) {
	cookies, err := newSessionCookies(cfg.Session, cfg.Production)
	if err != nil {
		return nil, err
	}
	s := &Server{r: chi.NewRouter(), sessions: sessions, cookies: cookies, lists: lists}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // one log line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", s.handleIndex)
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"answers": s.lists.Answers.Len(), "allowed": s.lists.Allowed.Len()})
	})

	// --- game ---
	s.r.Route("/api", func(r chi.Router) {
		r.Use(requireJSON)
		r.Post("/player-guess", s.handleGuess)
		r.Get("/sync-game", s.handleSyncGame)
		r.Get("/sync-stats", s.handleSyncStats)
		r.Post("/reset-game", s.handleResetGame)
		r.Post("/reset-stats", s.handleResetStats)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s, nil
}

// Handler exposes the router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireJSON rejects API calls that do not declare a JSON body.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			writeError(w, http.StatusForbidden, "json_required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs method, path, status and latency via zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("requestId", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------ handlers -----------------------------------

// handleIndex initializes the session and describes the service.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Ensure(r.Context(), id); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "wordle-session",
		"endpoints": []string{
			"/health",
			"POST /api/player-guess",
			"GET /api/sync-game",
			"GET /api/sync-stats",
			"POST /api/reset-game",
			"POST /api/reset-stats",
		},
	})
}

// guessRes is the game view plus the outcome of the guess.
type guessRes struct {
	game.GameView
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// handleGuess applies a guess to the session's game.
// The body is either a JSON string ("crane") or {"guess":"crane"}.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	word, err := decodeGuess(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	id, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := s.sessions.Guess(r.Context(), id, word)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	out := guessRes{GameView: res.Game, Accepted: res.Accepted}
	if res.Reason != nil {
		out.Reason = reasonCode(res.Reason)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSyncGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.session(w, r)
	if !ok {
		return
	}
	v, err := s.sessions.Game(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleSyncStats(w http.ResponseWriter, r *http.Request) {
	id, ok := s.session(w, r)
	if !ok {
		return
	}
	v, err := s.sessions.Stats(r.Context(), id)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleResetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := s.session(w, r)
	if !ok {
		return
	}
	if _, err := s.sessions.NewGame(r.Context(), id); err != nil {
		if errors.Is(err, game.ErrAlreadyPlayed) {
			writeError(w, http.StatusConflict, "already_played")
			return
		}
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	id, ok := s.session(w, r)
	if !ok {
		return
	}
	if _, err := s.sessions.ResetStats(r.Context(), id); err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// ------------------------------- helpers -----------------------------------

// session resolves the caller's session id, writing a 500 on failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := s.cookies.ensure(w, r)
	if err != nil {
		s.serverError(w, r, err)
		return "", false
	}
	return id, true
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		log.Warn().Err(err).Str("requestId", chimw.GetReqID(r.Context())).Str("path", r.URL.Path).Msg("request timed out")
		writeError(w, http.StatusGatewayTimeout, "timeout")
		return
	}
	log.Error().Err(err).Str("requestId", chimw.GetReqID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "server_error")
}

func decodeGuess(r *http.Request) (string, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return "", err
	}
	var word string
	if err := json.Unmarshal(raw, &word); err == nil {
		return word, nil
	}
	var body struct {
		Guess string `json:"guess"`
		Word  string `json:"word"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", err
	}
	if body.Guess != "" {
		return body.Guess, nil
	}
	if body.Word != "" {
		return body.Word, nil
	}
	return "", errors.New("missing guess")
}

// reasonCode maps a rejection to a stable client-facing code.
func reasonCode(err error) string {
	switch {
	case errors.Is(err, game.ErrGameOver):
		return "game_over"
	case errors.Is(err, game.ErrNotInDictionary):
		return "not_in_word_list"
	case errors.Is(err, game.ErrInvalidGuess):
		return "invalid_guess"
	default:
		return strings.ReplaceAll(err.Error(), " ", "_")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
