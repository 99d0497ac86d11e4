package routegate

import (
	"errors"
	"net/http"
)

// Require returns middleware rejecting requests whose account type may not
// enter segment. Requests without an account type in context get 401;
// known accounts outside the segment get 403.
func (g *Gate) Require(segment Segment) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountType, err := AccountTypeFromContext(r.Context())
			if err != nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			if err := g.Allowed(accountType, segment); err != nil {
				status := http.StatusForbidden
				if errors.Is(err, ErrUnknownAccountType) {
					status = http.StatusUnauthorized
				}
				http.Error(w, http.StatusText(status), status)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
