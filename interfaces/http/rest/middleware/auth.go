package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"template-backend/infrastructure/webservice"
	"template-backend/pkg/auth"
	"template-backend/pkg/common"
	apperrors "template-backend/pkg/errors"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Authenticate validates the bearer token of every request and attaches the
// caller to the request context. limiter may be nil.
func Authenticate(
	validator *auth.JWTValidator,
	limiter *auth.RateLimiter,
	converter *webservice.ConverterFactory,
	logger *zap.Logger,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			if limiter != nil && !limiter.Allow("ip:"+clientIP) {
				respond(w, r, converter, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			token := extractToken(r)
			if token == "" {
				respondError(w, r, converter, apperrors.NewUnauthorizedError("Missing authentication token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
				)

				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					respondError(w, r, converter, apperrors.NewUnauthorizedError("Token has expired"))
				case errors.Is(err, auth.ErrInvalidSignature):
					respondError(w, r, converter, apperrors.NewUnauthorizedError("Invalid token signature"))
				default:
					respondError(w, r, converter, apperrors.NewUnauthorizedError("Invalid token"))
				}
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			})

			logger.Debug("Request authenticated",
				zap.String("user_id", claims.UserID),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers holding none of roles
func RequireRole(converter *webservice.ConverterFactory, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			if err != nil {
				respondError(w, r, converter, apperrors.NewUnauthorizedError(""))
				return
			}

			for _, role := range roles {
				if user.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			respond(w, r, converter, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the auth_token cookie
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// getClientIP returns the host part of RemoteAddr. chi's RealIP middleware
// has already applied forwarding headers.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// respondError writes err as an error body. Unauthorized errors carry the
// bearer challenge.
func respondError(w http.ResponseWriter, r *http.Request, converter *webservice.ConverterFactory, err error) {
	if apperrors.IsUnauthorized(err) {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	status, body := common.NewErrorResponse(err, chimiddleware.GetReqID(r.Context()))
	_ = converter.WriteResponse(w, status, body)
}

func respond(w http.ResponseWriter, r *http.Request, converter *webservice.ConverterFactory, status int, message string) {
	body := common.NewMessageResponse(status, message, chimiddleware.GetReqID(r.Context()))
	_ = converter.WriteResponse(w, status, body)
}
