package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/iwvelando/credit-wizard/internal/i18n"
	"github.com/iwvelando/credit-wizard/internal/session"
	"github.com/iwvelando/credit-wizard/pkg/constants"
)

// sessionToken reads the token from the Authorization header, the session
// header or the session cookie, in that order.
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if token := strings.TrimSpace(r.Header.Get(constants.SessionTokenHeader)); token != "" {
		return token
	}
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// sessionMiddleware rejects requests without a valid session token and stores
// the session id and message language in the request context.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing session token"})
			return
		}

		claims, err := h.tokens.Parse(token)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidToken) {
				h.logger.Error("failed to parse session token",
					zap.String("op", "server.sessionMiddleware"),
					zap.Error(err),
				)
			}
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": session.ErrInvalidToken.Error()})
			return
		}

		l := i18n.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), claims.Language)
		ctx := context.WithValue(r.Context(), sessionIDKey, claims.Subject)
		ctx = context.WithValue(ctx, localizerKey, l)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// instrumentMiddleware records request counts and latency by route template.
func (h *Handler) instrumentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		elapsed := time.Since(start)
		if h.metrics != nil {
			h.metrics.ObserveRequest(route, r.Method, rec.status, elapsed)
		}
		h.logger.Debug("request served",
			zap.String("op", "server.instrumentMiddleware"),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	})
}
