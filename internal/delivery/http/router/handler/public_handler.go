package handler

import (
	"net/http"

	"agency/internal/api"
	"agency/internal/delivery/http/response"
	"agency/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// PublicHandler serves the read-only content of the public site. Reads go
// through the same cache as the dashboard, so dashboard writes show up here
// on the next request.
type PublicHandler struct {
	api *api.API
}

// NewPublicHandler is the constructor for PublicHandler.
func NewPublicHandler(a *api.API) *PublicHandler {
	return &PublicHandler{api: a}
}

func respondRead[T any](c echo.Context, data T, err error) error {
	if err != nil {
		return readError(err)
	}

	return response.Success(c, http.StatusOK, data, "")
}

// Blogs lists published articles.
func (h *PublicHandler) Blogs(c echo.Context) error {
	blogs, err := h.api.Blogs.GetAll(c.Request().Context())

	return respondRead(c, blogs, err)
}

// Blog returns one article.
func (h *PublicHandler) Blog(c echo.Context) error {
	blog, err := h.api.Blogs.GetByID(c.Request().Context(), c.Param("id"))

	return respondRead(c, blog, err)
}

// Projects lists portfolio work.
func (h *PublicHandler) Projects(c echo.Context) error {
	work, err := h.api.Work.GetAll(c.Request().Context())

	return respondRead(c, work, err)
}

// Team lists team members.
func (h *PublicHandler) Team(c echo.Context) error {
	team, err := h.api.Team.GetAll(c.Request().Context())

	return respondRead(c, team, err)
}

// Clients lists clients and their testimonials.
func (h *PublicHandler) Clients(c echo.Context) error {
	clients, err := h.api.Clients.GetAll(c.Request().Context())

	return respondRead(c, clients, err)
}

// Journey lists every journey entry.
func (h *PublicHandler) Journey(c echo.Context) error {
	entries, err := h.api.Journey.GetAll(c.Request().Context())

	return respondRead(c, entries, err)
}

// JourneyByKind lists the experience, skill or education entries.
func (h *PublicHandler) JourneyByKind(c echo.Context) error {
	entries, err := h.api.Journey.GetByKind(c.Request().Context(), entity.JourneyKind(c.Param("kind")))

	return respondRead(c, entries, err)
}
