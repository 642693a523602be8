package impl

import (
	"context"
	"log/slog"

	"agency/internal/api"
	deliverycontext "agency/internal/delivery/context"
	domainerrors "agency/internal/domain/errors"
	"agency/internal/errors"
	"agency/internal/usecase"

	"golang.org/x/sync/errgroup"
)

// dashboardService implements the DashboardUsecase interface.
type dashboardService struct {
	api    *api.API
	logger *slog.Logger
}

// NewDashboardService is the constructor for dashboardService.
func NewDashboardService(a *api.API, logger *slog.Logger) usecase.DashboardUsecase {
	return &dashboardService{
		api:    a,
		logger: logger,
	}
}

func (srv *dashboardService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Overview reads every collection concurrently through the cache.
func (srv *dashboardService) Overview(ctx context.Context) (*usecase.Overview, error) {
	var out usecase.Overview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := srv.api.Blogs.GetAll(gctx)
		out.Blogs = len(items)

		return errors.Wrap(err, "blogs")
	})
	g.Go(func() error {
		items, err := srv.api.Clients.GetAll(gctx)
		out.Clients = len(items)

		return errors.Wrap(err, "clients")
	})
	g.Go(func() error {
		items, err := srv.api.Team.GetAll(gctx)
		out.Team = len(items)

		return errors.Wrap(err, "team")
	})
	g.Go(func() error {
		items, err := srv.api.Work.GetAll(gctx)
		out.Work = len(items)

		return errors.Wrap(err, "work")
	})
	g.Go(func() error {
		items, err := srv.api.Journey.GetAll(gctx)
		out.Journey = len(items)

		return errors.Wrap(err, "journey")
	})

	if err := g.Wait(); err != nil {
		srv.log(ctx).Error("Failed to load dashboard overview", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrBackendReadFailed, err.Error())
	}

	return &out, nil
}
