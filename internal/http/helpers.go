package http

import (
	"net/http"
	"strconv"
	"strings"

	"spendfy/internal/core"
)

type authedHandler func(w http.ResponseWriter, r *http.Request, p core.Principal)

// authenticated resolves the bearer token to a principal. Requests without a
// valid token are rejected with 403 before reaching h.
func (s *Server) authenticated(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := s.svc.Auth.Authenticate(bearerToken(r))
		if p.Anonymous() {
			s.writeError(w, r, core.Unauthenticated())
			return
		}
		h(w, r, p)
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Any other scheme yields "".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Validation("Invalid id", map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}
