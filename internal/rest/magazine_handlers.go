package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/majalleh/portal/internal/portal"
)

// PortalManager is the domain surface the handlers need.
type PortalManager interface {
	Magazines(ctx context.Context) ([]portal.Magazine, error)
	AddMagazine(ctx context.Context, magazine portal.Magazine) (int, error)
	UpdateMagazine(ctx context.Context, id int, patch portal.MagazinePatch) error
	DeleteMagazine(ctx context.Context, id int) error
	Articles(ctx context.Context) ([]portal.Article, error)
	Settings(ctx context.Context) ([]portal.Setting, error)
	Authenticate(ctx context.Context, username, password string) (int, error)
}

type Handler struct {
	uc       PortalManager
	sessions Sessions
	log      *slog.Logger
	debug    bool
}

func NewHandler(uc PortalManager, sessions Sessions, log *slog.Logger, debug bool) *Handler {
	return &Handler{
		uc:       uc,
		sessions: sessions,
		log:      log,
		debug:    debug,
	}
}

func (h *Handler) fail(c echo.Context, statusCode int, errCode string) error {
	return c.JSON(statusCode, statusResponse{OK: false, Error: errCode})
}

// failStore reports a persistence failure. The internal error text is only
// exposed in details when debug mode is on.
func (h *Handler) failStore(c echo.Context, errCode string, err error) error {
	h.log.Error("store operation failed", "error", err, "code", errCode)

	resp := statusResponse{OK: false, Error: errCode}
	if h.debug {
		resp.Details = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, resp)
}

// ListMagazines handles GET /api/magazines: every issue as a JSON array of
// storage-shaped rows, ordered year DESC, month DESC.
func (h *Handler) ListMagazines(c echo.Context) error {
	magazines, err := h.uc.Magazines(c.Request().Context())
	if err != nil {
		return h.failStore(c, "list failed", err)
	}

	return c.JSON(http.StatusOK, NewMagazineRows(magazines))
}

// CreateMagazine handles POST /api/magazines. Body fields are camelCase and
// translated to storage columns; missing fields are stored empty.
func (h *Handler) CreateMagazine(c echo.Context) error {
	var req MagazineCreateRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "invalid json")
	}

	id, err := h.uc.AddMagazine(c.Request().Context(), magazineFromCreate(req))
	if errors.Is(err, portal.ErrInvalidMonth) {
		return h.fail(c, http.StatusBadRequest, "invalid month")
	} else if err != nil {
		return h.failStore(c, "insert failed", err)
	}

	return c.JSON(http.StatusOK, statusResponse{OK: true, ID: &id})
}

// UpdateMagazine handles PUT /api/magazines: required id plus any subset of
// the mutable fields; only fields present in the body are written.
func (h *Handler) UpdateMagazine(c echo.Context) error {
	var req MagazineUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "invalid json")
	}

	if req.ID == nil {
		return h.fail(c, http.StatusBadRequest, "missing id")
	}

	err := h.uc.UpdateMagazine(c.Request().Context(), *req.ID, patchFromUpdate(req))
	switch {
	case errors.Is(err, portal.ErrEmptyPatch):
		return h.fail(c, http.StatusBadRequest, "no fields to update")
	case errors.Is(err, portal.ErrInvalidMonth):
		return h.fail(c, http.StatusBadRequest, "invalid month")
	case err != nil:
		return h.failStore(c, "update failed", err)
	}

	return c.JSON(http.StatusOK, statusResponse{OK: true, ID: req.ID})
}

// DeleteMagazine handles DELETE /api/magazines. The body is form-encoded,
// not JSON. Deleting an id that does not exist still answers {ok:true}.
func (h *Handler) DeleteMagazine(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.fail(c, http.StatusBadRequest, "")
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return h.fail(c, http.StatusBadRequest, "")
	}

	id, err := strconv.Atoi(values.Get("id"))
	if err != nil || id == 0 {
		return h.fail(c, http.StatusBadRequest, "")
	}

	if err := h.uc.DeleteMagazine(c.Request().Context(), id); err != nil {
		return h.failStore(c, "delete failed", err)
	}

	return c.JSON(http.StatusOK, statusResponse{OK: true})
}

// ListArticles handles GET /api/articles.
func (h *Handler) ListArticles(c echo.Context) error {
	articles, err := h.uc.Articles(c.Request().Context())
	if err != nil {
		return h.failStore(c, "list failed", err)
	}

	return c.JSON(http.StatusOK, NewArticleResponses(articles))
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(c echo.Context) error {
	settings, err := h.uc.Settings(c.Request().Context())
	if err != nil {
		return h.failStore(c, "list failed", err)
	}

	return c.JSON(http.StatusOK, NewSettingsObject(settings))
}
