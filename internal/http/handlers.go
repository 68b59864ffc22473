package http

import (
	"context"
	"net/http"
	"time"

	"spendfy/internal/core"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready only when the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	api, authLimits := s.apiLimiter.GetMetrics(), s.authLimiter.GetMetrics()
	traffic, detection := s.traceMiddleware.GetMetrics(), s.securityDetector.GetMetrics()
	checks := map[string]any{
		"rate_limiter": map[string]any{
			"active_clients": api.ClientCount,
			"rejected":       api.Rejected + authLimits.Rejected,
		},
		"requests": map[string]any{
			"total":         traffic.TotalRequests,
			"server_errors": traffic.ServerErrors,
		},
		"security": map[string]any{
			"suspicious_requests": detection.SuspiciousRequests,
			"invalid_ip_attempts": detection.InvalidIPAttempts,
		},
	}
	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		checks["store"] = "failed"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in core.RegisterInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Auth.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthResponse(res))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in core.LoginInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Auth.Login(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAuthResponse(res))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, p core.Principal) {
	user, err := s.svc.Auth.Me(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request, p core.Principal) {
	if err := s.svc.Auth.DeleteMe(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
