package httpx

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/pkg/logkey"
)

const tokenCookie = "token"

type claimsKey struct{}

// extractToken reads the session cookie, falling back to a bearer header for API clients.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			fail(w, http.StatusUnauthorized, "You must Login to access!")
			return
		}
		claims, err := s.JWT.Validate(token)
		if err != nil {
			fail(w, http.StatusUnauthorized, "Invalid or expired token!")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// nonAuth rejects callers that already hold a valid session.
func (s *Server) nonAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := extractToken(r); token != "" {
			if _, err := s.JWT.Validate(token); err == nil {
				fail(w, http.StatusBadRequest, "You're already logged in!")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := claimsFrom(r.Context())
			if c == nil {
				fail(w, http.StatusUnauthorized, "You must Login to access!")
				return
			}
			if c.Role != role {
				fail(w, http.StatusForbidden, "Only "+role+" can access this route!")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// limitLogin counts login attempts per client address. A limiter outage lets the request through.
func (s *Server) limitLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		allowed, retry, err := s.Limiter.Allow(r.Context(), clientIP(r))
		if err != nil {
			s.log().Warn("login limiter unavailable", slog.String(logkey.ERROR, err.Error()))
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			if retry > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds()+0.999)))
			}
			fail(w, http.StatusTooManyRequests, "too many request, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the host part of RemoteAddr, which middleware.RealIP has already resolved.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
