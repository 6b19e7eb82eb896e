package web

import (
	"net/http"

	"github.com/JonMunkholm/liftlog/internal/core"
)

// requestCaller tags every request context with the client that sent it.
// RemoteAddr has already been rewritten by TrustedRealIP.
func requestCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.WithCaller(r.Context(), core.Caller{
			Channel: core.ChannelWeb,
			Address: r.RemoteAddr,
			Agent:   r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
