// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"net/http"

	"agency/internal/api"
	deliverycontext "agency/internal/delivery/context"
	domainerrors "agency/internal/domain/errors"
	"agency/internal/errors"
	"agency/internal/infra/backend"
	"agency/internal/usecase"
)

// authService implements the AuthUsecase interface.
type authService struct {
	auth   *api.AuthEndpoints
	logger *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(a *api.API, logger *slog.Logger) usecase.AuthUsecase {
	return &authService{
		auth:   a.Auth,
		logger: logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login exchanges credentials for a token. The token is not verified here:
// the backend owns authentication.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	res, err := srv.auth.Login(ctx, api.Credentials{Email: input.Email, Password: input.Password})
	if err != nil {
		if isClientError(err) {
			srv.log(ctx).Info("Login rejected", slog.String("email", input.Email))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login rejected by backend")
		}
		srv.log(ctx).Error("Login request failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrBackendWriteFailed, err.Error())
	}

	if res.Token == "" {
		srv.log(ctx).Warn("Login response carried no token", slog.String("email", input.Email))

		return nil, errors.WithStack(domainerrors.ErrEmptyToken)
	}

	return &usecase.AuthOutput{Token: res.Token, User: res.User}, nil
}

// Signup registers an account. The output carries a token only when the
// backend logs the new account in right away.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*usecase.AuthOutput, error) {
	res, err := srv.auth.Signup(ctx, api.SignupInput{Name: input.Name, Email: input.Email, Password: input.Password})
	if err != nil {
		if httpErr, ok := errors.AsType[*backend.HTTPError](err); ok && isClientError(err) {
			srv.log(ctx).Info("Signup rejected", slog.String("email", input.Email), slog.Int("status", httpErr.StatusCode))

			return nil, errors.WithStack(domainerrors.ErrSignupFailed.WithDetails(httpErr.Message))
		}
		srv.log(ctx).Error("Signup request failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrBackendWriteFailed, err.Error())
	}

	srv.log(ctx).Info("Account created", slog.String("email", input.Email), slog.Bool("logged_in", res.Token != ""))

	return &usecase.AuthOutput{Token: res.Token, User: res.User}, nil
}

func isClientError(err error) bool {
	httpErr, ok := errors.AsType[*backend.HTTPError](err)

	return ok && httpErr.StatusCode >= http.StatusBadRequest && httpErr.StatusCode < http.StatusInternalServerError
}
