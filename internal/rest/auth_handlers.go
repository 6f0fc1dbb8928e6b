package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/majalleh/portal/internal/portal"
)

// Login handles POST /api/auth/login. A successful login sets the HTTP-only
// session cookie; the body never carries a token.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "invalid json")
	}

	userID, err := h.uc.Authenticate(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, portal.ErrBadCredentials) {
		return c.JSON(http.StatusUnauthorized, statusResponse{OK: false})
	} else if err != nil {
		return h.failStore(c, "login failed", err)
	}

	token, expires, err := h.sessions.Sign(userID)
	if err != nil {
		return h.failStore(c, "login failed", err)
	}

	c.SetCookie(h.sessions.cookie(token, expires))
	return c.JSON(http.StatusOK, statusResponse{OK: true})
}

// Logout handles POST /api/auth/logout by expiring the session cookie.
func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.cookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, statusResponse{OK: true})
}
