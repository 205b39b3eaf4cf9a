package appMiddleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const CustomerIPKey contextKey = "customerIP"

// CustomerIP stores the caller's address in the request context so outbound provider
// calls can forward it. Mount it after middleware.RealIP so proxy headers are already applied.
func CustomerIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), CustomerIPKey, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CustomerIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(CustomerIPKey).(string)
	return ip, ok && ip != ""
}
