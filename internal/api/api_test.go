package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"agency/internal/apicache"
	"agency/internal/domain/entity"
	domainerrors "agency/internal/domain/errors"
	"agency/internal/errors"
	"agency/internal/infra/backend"
	"agency/internal/infra/backend/backendtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*API, *backendtest.Server) {
	t.Helper()

	srv := backendtest.New()
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := apicache.New(apicache.WithLogger(logger), apicache.WithKeepUnusedDataFor(time.Minute))

	return New(cache, backend.NewClient(srv.URL, time.Second, logger)), srv
}

func TestResource_GetAllIsCached(t *testing.T) {
	a, srv := newTestAPI(t)
	srv.Seed("team", backendtest.Record{"name": "Ada", "position": "CTO"})

	members, err := a.Team.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ada", members[0].Name)

	_, err = a.Team.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Hits("GET /team"))
}

func TestResource_ConcurrentReadsShareOneRequest(t *testing.T) {
	a, srv := newTestAPI(t)
	srv.Seed("work", backendtest.Record{"title": "Portal", "description": "Client portal"})

	sub := a.Work.SubscribeAll(context.Background())
	defer sub.Unsubscribe()

	var wg sync.WaitGroup
	results := make([][]WorkItem, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := a.Work.GetAll(context.Background())
			assert.NoError(t, err)
			results[i] = items
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, srv.Hits("GET /work"))
	for _, items := range results {
		assert.Equal(t, results[0], items)
	}
}

func TestResource_CreateInvalidatesCollection(t *testing.T) {
	a, srv := newTestAPI(t)
	ctx := context.Background()

	sub := a.Blogs.SubscribeAll(ctx)
	defer sub.Unsubscribe()

	res, err := sub.Wait(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Data)

	created, err := a.Blogs.Create(ctx, Blog{Title: "Launch", Author: "Sam", Content: "We shipped"},
		&backend.Upload{Filename: "cover.jpg", ContentType: "image/jpeg", Content: []byte("jpg")})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "cover.jpg", srv.Upload(created.ID))

	res, err = sub.Wait(ctx)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Launch", res.Data[0].Title)
	assert.Equal(t, 2, srv.Hits("GET /blog"))
}

func TestResource_WritesLeaveOtherTagsAlone(t *testing.T) {
	a, srv := newTestAPI(t)
	ctx := context.Background()

	_, err := a.Team.GetAll(ctx)
	require.NoError(t, err)

	_, err = a.Clients.Create(ctx, Client{Name: "Acme"}, nil)
	require.NoError(t, err)

	_, err = a.Team.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Hits("GET /team"))
}

func TestResource_UpdateAndDelete(t *testing.T) {
	a, srv := newTestAPI(t)
	ctx := context.Background()
	srv.Seed("client", backendtest.Record{"_id": "c1", "name": "Acme"}, backendtest.Record{"_id": "c2", "name": "Globex"})

	got, err := a.Clients.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	updated, err := a.Clients.Update(ctx, "c1", Client{Name: "Acme Corp"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)

	got, err = a.Clients.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)

	require.NoError(t, a.Clients.Delete(ctx, "c2"))

	all, err := a.Clients.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "c1", all[0].ID)
}

func TestResource_ReadFailureIsReportedWithoutRetry(t *testing.T) {
	a, srv := newTestAPI(t)
	ctx := context.Background()
	srv.FailNext("GET /client", 1)

	sub := a.Clients.SubscribeAll(ctx)
	defer sub.Unsubscribe()

	res, err := sub.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.True(t, backend.IsStatus(res.Err, http.StatusInternalServerError))

	res, err = sub.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, 1, srv.Hits("GET /client"))

	sub.Refetch()
	res, err = sub.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, res.IsSuccess)
	assert.Equal(t, 2, srv.Hits("GET /client"))
}

func TestResource_GetReturnsReadError(t *testing.T) {
	a, srv := newTestAPI(t)
	srv.FailNext("GET /team/m1", 1)

	_, err := a.Team.GetByID(context.Background(), "m1")
	assert.True(t, backend.IsStatus(err, http.StatusInternalServerError))
}

func TestResource_WriteFailureKeepsCache(t *testing.T) {
	a, srv := newTestAPI(t)
	ctx := context.Background()

	_, err := a.Work.GetAll(ctx)
	require.NoError(t, err)

	srv.FailNext("POST /work", 1)
	_, err = a.Work.Create(ctx, WorkItem{Title: "Broken"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work.create")

	_, err = a.Work.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Hits("GET /work"))
}

func TestJourney_GetByKind(t *testing.T) {
	a, srv := newTestAPI(t)
	ctx := context.Background()
	srv.Seed("journey",
		backendtest.Record{"type": "skill", "title": "Go", "level": 90},
		backendtest.Record{"type": "education", "title": "BSc"},
	)

	skills, err := a.Journey.GetByKind(ctx, entity.JourneySkill)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "Go", skills[0].Title)
	assert.Equal(t, 90, skills[0].Level)

	_, err = a.Journey.Create(ctx, JourneyEntry{Kind: entity.JourneySkill, Title: "Rust"}, nil)
	require.NoError(t, err)

	skills, err = a.Journey.GetByKind(ctx, entity.JourneySkill)
	require.NoError(t, err)
	assert.Len(t, skills, 2)
	assert.Equal(t, 2, srv.Hits("GET /journey/skill"))
}

func TestJourney_RejectsUnknownKind(t *testing.T) {
	a, srv := newTestAPI(t)

	_, err := a.Journey.GetByKind(context.Background(), "hobby")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidJourneyKind)
	assert.Equal(t, 0, srv.Hits("GET /journey/hobby"))
}

func TestAuth_Login(t *testing.T) {
	a, srv := newTestAPI(t)
	srv.AddAccount("admin@agency.dev", backendtest.Account{
		Password: "secret",
		Token:    "tok",
		User:     backendtest.Record{"_id": "u1", "name": "Admin", "email": "admin@agency.dev", "role": "admin"},
	})

	res, err := a.Auth.Login(context.Background(), Credentials{Email: "admin@agency.dev", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, entity.RoleAdmin, res.User.Role)

	_, err = a.Auth.Login(context.Background(), Credentials{Email: "admin@agency.dev", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, backend.IsStatus(err, http.StatusUnauthorized))
}

func TestAuth_Signup(t *testing.T) {
	a, _ := newTestAPI(t)
	in := SignupInput{Name: "New", Email: "new@agency.dev", Password: "secret1"}

	res, err := a.Auth.Signup(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, "new@agency.dev", res.User.Email)

	_, err = a.Auth.Signup(context.Background(), in)
	var httpErr *backend.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusConflict, httpErr.StatusCode)
}

func TestCredentialScope(t *testing.T) {
	assert.Equal(t, AnonymousScope, CredentialScope(context.Background()))

	a := CredentialScope(backend.WithToken(context.Background(), "token-a"))
	b := CredentialScope(backend.WithToken(context.Background(), "token-b"))
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "token-a")
	assert.Equal(t, a, CredentialScope(backend.WithToken(context.Background(), "token-a")))
}

func TestResource_ReadsAreCachedPerToken(t *testing.T) {
	a, srv := newTestAPI(t)
	srv.Seed("blog", backendtest.Record{"title": "Draft"})
	admin := backend.WithToken(context.Background(), "admin-token")
	other := backend.WithToken(context.Background(), "other-token")

	_, err := a.Blogs.GetAll(admin)
	require.NoError(t, err)
	_, err = a.Blogs.GetAll(other)
	require.NoError(t, err)
	_, err = a.Blogs.GetAll(admin)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer admin-token", "Bearer other-token"}, srv.Authorizations("GET /blog"))
}
