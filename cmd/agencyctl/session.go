package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"agency/internal/api"
	"agency/internal/apicache"
	"agency/internal/domain/entity"
	"agency/internal/errors"
	infraauth "agency/internal/infra/auth"
	"agency/internal/infra/backend"
	"agency/internal/infra/storage"
	"agency/internal/store/auth"
	"agency/internal/store/theme"
)

// session is one CLI invocation: stores hydrated from the session file and
// the API bound to the stored token.
type session struct {
	out        io.Writer
	api        *api.API
	authStore  *auth.Store
	themeStore *theme.Store
}

func newSession(backendURL, storagePath string, timeout time.Duration, out io.Writer) (*session, error) {
	if storagePath == "" {
		path, err := storage.DefaultFilePath()
		if err != nil {
			return nil, err
		}
		storagePath = path
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	file := storage.NewFile(storagePath)

	authStore := auth.New(file, infraauth.NewJWTDecoder(), auth.WithLogger(logger))
	authStore.Hydrate()

	themeStore := theme.New(file, theme.DefaultKey)
	themeStore.Hydrate()

	cache := apicache.New(apicache.WithKeepUnusedDataFor(0), apicache.WithLogger(logger))

	return &session{
		out:        out,
		api:        api.New(cache, backend.NewClient(backendURL, timeout, logger)),
		authStore:  authStore,
		themeStore: themeStore,
	}, nil
}

func (s *session) withToken(ctx context.Context) context.Context {
	if token := s.authStore.Token(); token != "" {
		return backend.WithToken(ctx, token)
	}

	return ctx
}

func (s *session) login(ctx context.Context, email, password string) error {
	res, err := s.api.Auth.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return errors.Wrap(err, "login failed")
	}
	if err := s.authStore.Login(res.Token); err != nil {
		return err
	}

	return s.whoami()
}

func (s *session) logout() error {
	if err := s.authStore.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Logged out")

	return nil
}

func (s *session) whoami() error {
	sess, ok := s.authStore.Session()
	if !ok {
		fmt.Fprintln(s.out, "Not logged in")

		return nil
	}
	if sess.User == nil {
		fmt.Fprintln(s.out, "Logged in (token carries no identity)")

		return nil
	}

	fmt.Fprintf(s.out, "Logged in as %s <%s> role=%s\n", sess.User.Name, sess.User.Email, sess.Role())

	return nil
}

func (s *session) list(ctx context.Context, resource, kind string) error {
	ctx = s.withToken(ctx)

	var (
		items any
		err   error
	)
	switch resource {
	case "blog":
		items, err = s.api.Blogs.GetAll(ctx)
	case "client":
		items, err = s.api.Clients.GetAll(ctx)
	case "team":
		items, err = s.api.Team.GetAll(ctx)
	case "work":
		items, err = s.api.Work.GetAll(ctx)
	case "journey":
		if kind != "" {
			items, err = s.api.Journey.GetByKind(ctx, entity.JourneyKind(kind))
		} else {
			items, err = s.api.Journey.GetAll(ctx)
		}
	default:
		return errors.Errorf("unknown resource %q", resource)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to list %s", resource)
	}

	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")

	return errors.WithStack(enc.Encode(items))
}

func (s *session) showTheme(toggle bool) error {
	if toggle {
		if err := s.themeStore.Toggle(); err != nil {
			return err
		}
	}
	fmt.Fprintln(s.out, s.themeStore.RootClass())

	return nil
}
