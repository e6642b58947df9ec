package api

import (
	"net/http"
	"strings"

	"github.com/velora/storefront-api/internal/domain/auth"
)

// authedHandler is a route handler that runs with a verified identity.
type authedHandler func(w http.ResponseWriter, r *http.Request, id auth.Identity)

// user gates a route behind bearer-token authentication. Missing, malformed,
// and invalid tokens all produce the same 401.
func (h *Handler) user(fn authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.identify(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		fn(w, r.WithContext(auth.WithIdentity(r.Context(), id)), id)
	}
}

// admin gates a route behind the admin role.
func (h *Handler) admin(fn authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.identify(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if !id.Admin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		fn(w, r.WithContext(auth.WithIdentity(r.Context(), id)), id)
	}
}

func (h *Handler) identify(r *http.Request) (auth.Identity, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return auth.Identity{}, false
	}

	id, err := h.verifier.Verify(token)
	if err != nil {
		return auth.Identity{}, false
	}
	return id, true
}
