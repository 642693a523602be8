package handler

import (
	"log/slog"
	"net/http"

	"agency/internal/api"
	deliverycontext "agency/internal/delivery/context"
	"agency/internal/delivery/http/response"
	"agency/internal/domain/entity"
	"agency/internal/errors"
	"agency/internal/usecase"

	"github.com/labstack/echo/v4"
)

// DashboardHandler serves the dashboard landing view and holds the
// collection handlers mounted under it.
type DashboardHandler struct {
	uc     usecase.DashboardUsecase
	logger *slog.Logger

	Blogs   *ResourceHandler[api.Blog, BlogForm]
	Clients *ResourceHandler[api.Client, ClientForm]
	Team    *ResourceHandler[api.TeamMember, TeamForm]
	Work    *ResourceHandler[api.WorkItem, WorkForm]
	Journey *ResourceHandler[api.JourneyEntry, JourneyForm]
}

// NewDashboardHandler is the constructor for DashboardHandler, injected by Fx.
func NewDashboardHandler(uc usecase.DashboardUsecase, a *api.API, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		uc:      uc,
		logger:  logger,
		Blogs:   NewResourceHandler[api.Blog, BlogForm](a.Blogs, "/blogs", "Blog", true, logger),
		Clients: NewResourceHandler[api.Client, ClientForm](a.Clients, "/clients", "Client", false, logger),
		Team:    NewResourceHandler[api.TeamMember, TeamForm](a.Team, "/team", "Team member", false, logger),
		Work:    NewResourceHandler[api.WorkItem, WorkForm](a.Work, "/work", "Project", false, logger),
		Journey: NewResourceHandler[api.JourneyEntry, JourneyForm](a.Journey.Resource, "/journey", "Journey entry", false, logger),
	}
}

// OverviewView is the dashboard landing view model.
type OverviewView struct {
	User   *entity.User      `json:"user,omitempty"`
	Counts *usecase.Overview `json:"counts"`
}

// Overview renders per-collection counts for the signed-in user.
func (h *DashboardHandler) Overview(c echo.Context) error {
	overview, err := h.uc.Overview(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	view := OverviewView{Counts: overview}
	if store := deliverycontext.GetAuthStore(c); store != nil {
		if session, ok := store.Session(); ok {
			view.User = session.User
		}
	}

	return response.View(c, http.StatusOK, "dashboard", view)
}

// Register mounts the landing view and every collection under g.
func (h *DashboardHandler) Register(g *echo.Group) {
	g.GET("", h.Overview)
	h.Blogs.Register(g)
	h.Clients.Register(g)
	h.Team.Register(g)
	h.Work.Register(g)
	h.Journey.Register(g)
}
