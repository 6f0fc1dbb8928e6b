package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Sessions signs and verifies the admin session cookie. The cookie carries a
// short-lived HS256 token; holding a valid one is the whole authorization
// model, there is no per-resource ownership.
type Sessions struct {
	Secret     []byte
	CookieName string
	TTL        time.Duration
}

type sessionClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

func (s Sessions) Sign(userID int) (string, time.Time, error) {
	expires := time.Now().Add(s.TTL)

	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	return signed, expires, nil
}

func (s Sessions) Parse(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid session claims")
	}

	return claims.UserID, nil
}

func (s Sessions) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     s.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// requireAdmin gates mutating verbs: no valid session cookie means
// 401 {ok:false} and the request is not processed further.
func (h *Handler) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(h.sessions.CookieName)
		if err != nil || cookie.Value == "" {
			return c.JSON(http.StatusUnauthorized, statusResponse{OK: false})
		}

		if _, err := h.sessions.Parse(cookie.Value); err != nil {
			return c.JSON(http.StatusUnauthorized, statusResponse{OK: false})
		}

		return next(c)
	}
}
