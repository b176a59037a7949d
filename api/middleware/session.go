package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/monplancbd/storefront/pkg/config"
	"github.com/monplancbd/storefront/pkg/logger"
)

// Session binds every request to an anonymous session. The id rides an
// HTTP-only cookie; with a JWT secret configured the cookie value is a signed
// token so a tampered id cannot hijack another visitor's cart. Missing or
// invalid cookies get a fresh session rather than an error.
func Session(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sessionIDFromCookie(r, cfg)
			if sessionID == "" {
				sessionID = uuid.NewString()
				issueCookie(w, cfg, sessionID)
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionIDFromCookie(r *http.Request, cfg config.SessionConfig) string {
	cookie, err := r.Cookie(cfg.CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	if cfg.JWTSecret == "" {
		if _, err := uuid.Parse(cookie.Value); err != nil {
			return ""
		}
		return cookie.Value
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (any, error) { return []byte(cfg.JWTSecret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return ""
	}
	return claims.Subject
}

func issueCookie(w http.ResponseWriter, cfg config.SessionConfig, sessionID string) {
	value := sessionID
	if cfg.JWTSecret != "" {
		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		})
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err == nil {
			value = signed
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
