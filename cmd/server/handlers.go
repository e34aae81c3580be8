package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/fleetprice/internal/pricing"
	"github.com/Simplici0/fleetprice/internal/state"
)

const maxBodyBytes = 1 << 20

type server struct {
	auth     *authService
	state    *state.Service
	defaults pricing.Config
	logger   *zap.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/state", s.handleGetState)
		r.Put("/state", s.handlePutState)
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handlePutConfig)
		r.Get("/ui", s.handleGetUI)
		r.Put("/ui", s.handlePutUI)
		r.Post("/quote", s.handleQuote)
		r.Post("/quote/terms", s.handleQuoteTerms)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.authenticated(r) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w)
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.auth.enabled() {
		writeOK(w)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.auth.validPassword(req.Password) {
		s.logger.Warn("login rejected", zap.String("remote", r.RemoteAddr))
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	s.auth.setSessionCookie(w)
	writeOK(w)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	writeOK(w)
}

func (s *server) handleGetState(w http.ResponseWriter, r *http.Request) {
	st, err := s.state.Get(r.Context())
	if err != nil {
		s.internalError(w, "load state", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handlePutState(w http.ResponseWriter, r *http.Request) {
	var st state.State
	if err := decodeJSON(w, r, &st); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !state.IsNull(st.Config) {
		if _, err := pricing.ParseConfig(st.Config); err != nil {
			writePricingError(w, err)
			return
		}
	}
	if err := s.state.Put(r.Context(), st); err != nil {
		s.internalError(w, "save state", err)
		return
	}
	writeOK(w)
}

func (s *server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.state.GetConfig(r.Context())
	if err != nil {
		s.internalError(w, "load config", err)
		return
	}
	writeRaw(w, cfg)
}

func (s *server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	raw, err := readRawJSON(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !state.IsNull(raw) {
		if _, err := pricing.ParseConfig(raw); err != nil {
			writePricingError(w, err)
			return
		}
	}
	if err := s.state.PutConfig(r.Context(), raw); err != nil {
		s.internalError(w, "save config", err)
		return
	}
	s.logger.Info("pricing config updated", zap.Int("bytes", len(raw)))
	writeOK(w)
}

func (s *server) handleGetUI(w http.ResponseWriter, r *http.Request) {
	ui, err := s.state.GetUI(r.Context())
	if err != nil {
		s.internalError(w, "load ui", err)
		return
	}
	writeRaw(w, ui)
}

func (s *server) handlePutUI(w http.ResponseWriter, r *http.Request) {
	raw, err := readRawJSON(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.state.PutUI(r.Context(), raw); err != nil {
		s.internalError(w, "save ui", err)
		return
	}
	writeOK(w)
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	engine, scenario, ok := s.quoteInputs(w, r)
	if !ok {
		return
	}
	quote, err := engine.Quote(scenario)
	if err != nil {
		writePricingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *server) handleQuoteTerms(w http.ResponseWriter, r *http.Request) {
	engine, scenario, ok := s.quoteInputs(w, r)
	if !ok {
		return
	}
	quotes, err := engine.QuoteTerms(scenario)
	if err != nil {
		writePricingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *server) quoteInputs(w http.ResponseWriter, r *http.Request) (*pricing.Engine, pricing.Scenario, bool) {
	var scenario pricing.Scenario
	if err := decodeJSON(w, r, &scenario); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, pricing.Scenario{}, false
	}
	engine, err := s.engine(r)
	if err != nil {
		s.internalError(w, "build pricing engine", err)
		return nil, pricing.Scenario{}, false
	}
	return engine, scenario, true
}

// engine prices against the stored config, falling back to the defaults when
// none has been saved.
func (s *server) engine(r *http.Request) (*pricing.Engine, error) {
	raw, err := s.state.GetConfig(r.Context())
	if err != nil {
		return nil, err
	}
	cfg := s.defaults
	if !state.IsNull(raw) {
		if cfg, err = pricing.ParseConfig(raw); err != nil {
			return nil, fmt.Errorf("stored config: %w", err)
		}
	}
	return pricing.New(cfg)
}

func (s *server) internalError(w http.ResponseWriter, action string, err error) {
	s.logger.Error(action+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, action+" failed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func readRawJSON(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(body) {
		return nil, errors.New("invalid JSON body")
	}
	return json.RawMessage(body), nil
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

func writePricingError(w http.ResponseWriter, err error) {
	var perr *pricing.Error
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: perr.Error(),
			Kind:  string(perr.Kind),
			Field: perr.Field,
		})
		return
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeRaw(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
