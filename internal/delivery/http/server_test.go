package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"agency/config"
	"agency/internal/api"
	"agency/internal/apicache"
	deliveryhttp "agency/internal/delivery/http"
	httpmiddleware "agency/internal/delivery/http/middleware"
	"agency/internal/delivery/http/response"
	"agency/internal/delivery/http/router"
	"agency/internal/delivery/http/router/handler"
	infraauth "agency/internal/infra/auth"
	"agency/internal/infra/backend"
	"agency/internal/infra/backend/backendtest"
	"agency/internal/infra/redisstore"
	"agency/internal/usecase/impl"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	echo    *echo.Echo
	backend *backendtest.Server
	cache   *apicache.Cache
}

func newTestApp(t *testing.T, opts ...apicache.Option) *testApp {
	t.Helper()

	srv := backendtest.New()
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{}
	cfg.Env.ServiceName = "agency-test"
	cfg.HTTP.MaxRequestBodySize = "10MB"
	cfg.Cookie = config.CookieConfig{AuthToken: "token", Theme: "theme", MaxAge: time.Hour}
	cfg.Auth = config.AuthConfig{
		AllowedRoles:     []string{"admin"},
		LoginPath:        "/login",
		UnauthorizedPath: "/unauthorized",
	}

	cache := apicache.New(append([]apicache.Option{apicache.WithLogger(logger)}, opts...)...)
	a := api.New(cache, backend.NewClient(srv.URL, 5*time.Second, logger))

	e := deliveryhttp.NewEcho(deliveryhttp.HTTPParams{
		Config:            cfg,
		Logger:            logger,
		ErrorMiddleware:   httpmiddleware.NewErrorMiddleware(logger),
		SessionMiddleware: httpmiddleware.NewSessionMiddleware(cfg, infraauth.NewJWTDecoder(), logger),
		RouterParams: router.RouterParams{
			AuthHandler:      handler.NewAuthHandler(impl.NewAuthService(a, logger), cfg, logger),
			ThemeHandler:     handler.NewThemeHandler(),
			PublicHandler:    handler.NewPublicHandler(a),
			DashboardHandler: handler.NewDashboardHandler(impl.NewDashboardService(a, logger), a, logger),
			GuardMiddleware:  httpmiddleware.NewGuardMiddleware(httpmiddleware.NewGuard(cfg), logger),
		},
	})

	return &testApp{echo: e, backend: srv, cache: cache}
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, infraauth.Claims{
		ID:    "u-1",
		Name:  "Ada",
		Email: "ada@agency.dev",
		Role:  role,
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	return token
}

func (a *testApp) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	return rec
}

type page struct {
	View string          `json:"view"`
	Data json.RawMessage `json:"data"`
}

type envelope struct {
	response.Response
	Data json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	return env
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) page {
	t.Helper()

	var p page
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &p))

	return p
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}

	return nil
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	return req
}

func TestServer_Health(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_UnauthenticatedVisitorIsSentToLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/work", nil), "")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?from=/dashboard/work", rec.Header().Get(echo.HeaderLocation))
	assert.Zero(t, app.backend.Hits("GET /work"))
}

func TestServer_WrongRoleIsSentToUnauthorized(t *testing.T) {
	app := newTestApp(t)

	for _, role := range []string{"user", "editor", ""} {
		t.Run("role="+role, func(t *testing.T) {
			rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/work", nil), tokenFor(t, role))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/unauthorized", rec.Header().Get(echo.HeaderLocation))
		})
	}
	assert.Zero(t, app.backend.Hits("GET /work"))
}

func TestServer_TokenWithoutIdentityIsUnauthorized(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "not-a-jwt")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get(echo.HeaderLocation))
}

func TestServer_PrefetchGetsLoadingPlaceholder(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Sec-Purpose", "prefetch")
	rec := app.do(req, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get(echo.HeaderCacheControl))
	assert.Equal(t, "loading", decodePage(t, rec).View)
}

func TestServer_DashboardOverview(t *testing.T) {
	app := newTestApp(t)
	app.backend.Seed("blog", backendtest.Record{"title": "a"}, backendtest.Record{"title": "b"})
	app.backend.Seed("client", backendtest.Record{"name": "Acme"})

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil), tokenFor(t, "admin"))

	require.Equal(t, http.StatusOK, rec.Code)
	p := decodePage(t, rec)
	assert.Equal(t, "dashboard", p.View)

	var view handler.OverviewView
	require.NoError(t, json.Unmarshal(p.Data, &view))
	require.NotNil(t, view.User)
	assert.Equal(t, "Ada", view.User.Name)
	assert.Equal(t, 2, view.Counts.Blogs)
	assert.Equal(t, 1, view.Counts.Clients)
	assert.Zero(t, view.Counts.Team)
}

func TestServer_CreateBlogWithImageRefreshesList(t *testing.T) {
	app := newTestApp(t)
	token := tokenFor(t, "admin")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/blogs", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(listItems(t, rec)))

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("title", "Launch"))
	require.NoError(t, mw.WriteField("author", "Ada"))
	require.NoError(t, mw.WriteField("content", "We shipped."))
	fw, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/dashboard/blogs", body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec = app.do(req, token)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.Equal(t, "Blog created successfully", env.Message)

	records := app.backend.Records("blog")
	require.Len(t, records, 1)
	assert.Equal(t, "cover.png", app.backend.Upload(records[0]["_id"].(string)))

	rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/blogs", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []api.Blog
	require.NoError(t, json.Unmarshal(listItems(t, rec), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Launch", items[0].Title)
	assert.Equal(t, 2, app.backend.Hits("GET /blog"))
}

func TestServer_CreateBlogWithoutImageIsRejected(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(formRequest(http.MethodPost, "/dashboard/blogs", url.Values{
		"title":   {"Launch"},
		"author":  {"Ada"},
		"content": {"We shipped."},
	}), tokenFor(t, "admin"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "IMAGE_REQUIRED", env.Error.Code)
	assert.Contains(t, string(env.Data), "Launch")
	assert.Zero(t, app.backend.Hits("POST /blog"))
}

func TestServer_CreateWithMissingFieldsEchoesForm(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(formRequest(http.MethodPost, "/dashboard/clients", url.Values{
		"website": {"https://acme.test"},
	}), tokenFor(t, "admin"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, string(env.Data), "https://acme.test")
	assert.Zero(t, app.backend.Hits("POST /client"))
}

func TestServer_DeleteRequiresConfirmation(t *testing.T) {
	app := newTestApp(t)
	app.backend.Seed("client", backendtest.Record{"_id": "c1", "name": "Acme"})
	token := tokenFor(t, "admin")

	rec := app.do(httptest.NewRequest(http.MethodPost, "/dashboard/clients/c1/delete", nil), token)

	require.Equal(t, http.StatusPreconditionRequired, rec.Code)
	var prompt handler.ConfirmPrompt
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &prompt))
	assert.Equal(t, "c1", prompt.ID)
	assert.Equal(t, http.MethodPost, prompt.Method)
	assert.Equal(t, "/dashboard/clients/c1/delete?confirm=true", prompt.Confirm)
	assert.Len(t, app.backend.Records("client"), 1)
	assert.Zero(t, app.backend.Hits("DELETE /client/c1"))

	rec = app.do(httptest.NewRequest(prompt.Method, prompt.Confirm, nil), token)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, app.backend.Records("client"))

	rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/clients", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(listItems(t, rec)))
}

func TestServer_DeleteMethodPromptEchoesMethodAndPath(t *testing.T) {
	app := newTestApp(t)
	app.backend.Seed("team", backendtest.Record{"_id": "m1", "name": "Ada", "position": "CTO"})
	token := tokenFor(t, "admin")

	rec := app.do(httptest.NewRequest(http.MethodDelete, "/dashboard/team/m1", nil), token)

	require.Equal(t, http.StatusPreconditionRequired, rec.Code)
	var prompt handler.ConfirmPrompt
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &prompt))
	assert.Equal(t, http.MethodDelete, prompt.Method)
	assert.Equal(t, "/dashboard/team/m1?confirm=true", prompt.Confirm)
	assert.Zero(t, app.backend.Hits("DELETE /team/m1"))

	rec = app.do(httptest.NewRequest(prompt.Method, prompt.Confirm, nil), token)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, app.backend.Records("team"))
	assert.Equal(t, 1, app.backend.Hits("DELETE /team/m1"))
}

func TestServer_ReadFailureShowsInlineError(t *testing.T) {
	app := newTestApp(t)
	app.backend.FailNext("GET /work", 1)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/work", nil), tokenFor(t, "admin"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Something went wrong", env.Message)
	assert.Equal(t, 1, app.backend.Hits("GET /work"))
}

func TestServer_RefetchRecoversFromReadFailure(t *testing.T) {
	app := newTestApp(t)
	app.backend.Seed("work", backendtest.Record{"title": "Portal", "description": "Client portal"})
	app.backend.FailNext("GET /work", 1)
	token := tokenFor(t, "admin")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/work", nil), token)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	view := listView[api.WorkItem](t, rec)
	assert.True(t, view.IsError)
	assert.NotEmpty(t, view.Error)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/work?refetch=1", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	view = listView[api.WorkItem](t, rec)
	assert.False(t, view.IsError)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Portal", view.Items[0].Title)
	assert.Equal(t, 2, app.backend.Hits("GET /work"))

	// A fulfilled list is read again from the network only on request.
	rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/work", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, app.backend.Hits("GET /work"))

	rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/work?refetch=1", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, app.backend.Hits("GET /work"))
}

func TestServer_NoWaitRendersLoadingState(t *testing.T) {
	app := newTestApp(t)
	app.backend.Seed("team", backendtest.Record{"name": "Ada", "position": "CTO"})
	token := tokenFor(t, "admin")
	release := app.backend.Hold("GET /team")
	defer release()

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/team?wait=0", nil), token)

	require.Equal(t, http.StatusOK, rec.Code)
	view := listView[api.TeamMember](t, rec)
	assert.True(t, view.IsLoading)
	assert.True(t, view.IsFetching)
	assert.Empty(t, view.Items)

	require.Eventually(t, func() bool { return app.backend.Parked("GET /team") == 1 }, time.Second, 2*time.Millisecond)
	release()

	// Waiting joins the read already in flight.
	rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/team", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/team?wait=0", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	view = listView[api.TeamMember](t, rec)
	assert.False(t, view.IsLoading)
	assert.False(t, view.IsFetching)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Ada", view.Items[0].Name)
	assert.Equal(t, 1, app.backend.Hits("GET /team"))
}

func TestServer_WriteDuringUnwaitedReadIsNotLost(t *testing.T) {
	for name, keep := range map[string]time.Duration{
		"entry kept":      time.Minute,
		"entry collected": 10 * time.Millisecond,
	} {
		t.Run(name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			store := redisstore.NewStore(client, time.Minute, "test:", slog.New(slog.NewTextHandler(io.Discard, nil)))

			app := newTestApp(t, apicache.WithResponseStore(store), apicache.WithKeepUnusedDataFor(keep))
			token := tokenFor(t, "admin")
			release := app.backend.Hold("GET /team")
			defer release()

			rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/team?wait=0", nil), token)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, listView[api.TeamMember](t, rec).IsLoading)

			// The list read has been answered with the old data but not delivered yet.
			require.Eventually(t, func() bool { return app.backend.Parked("GET /team") == 1 }, time.Second, 2*time.Millisecond)
			if keep < time.Second {
				require.Eventually(t, func() bool { return app.cache.Len() == 0 }, time.Second, 2*time.Millisecond)
			}

			rec = app.do(formRequest(http.MethodPost, "/dashboard/team", url.Values{
				"name":     {"Grace"},
				"position": {"CTO"},
			}), token)
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			release()

			rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/team", nil), token)
			require.Equal(t, http.StatusOK, rec.Code)
			view := listView[api.TeamMember](t, rec)
			require.Len(t, view.Items, 1)
			assert.Equal(t, "Grace", view.Items[0].Name)
			assert.Equal(t, 2, app.backend.Hits("GET /team"))

			scope := api.CredentialScope(backend.WithToken(context.Background(), token))
			saved, err := mr.Get("test:resp:team.getAll()@" + scope)
			require.NoError(t, err)
			assert.Contains(t, saved, "Grace")
		})
	}
}

func TestServer_ReadsAreNotSharedAcrossTokens(t *testing.T) {
	app := newTestApp(t)
	app.backend.Seed("blog", backendtest.Record{"title": "Draft"})
	admin := tokenFor(t, "admin")
	// Unsigned: the guard only reads claims, the backend is what rejects it.
	forged := "eyJhbGciOiJub25lIn0.eyJyb2xlIjoiYWRtaW4ifQ."

	rec := app.do(httptest.NewRequest(http.MethodGet, "/dashboard/blogs", nil), admin)
	require.Equal(t, http.StatusOK, rec.Code)

	app.do(httptest.NewRequest(http.MethodGet, "/dashboard/blogs", nil), forged)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/blogs", nil), admin)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"Bearer " + admin, "Bearer " + forged}, app.backend.Authorizations("GET /blog"))
}

func TestServer_WriteFailureKeepsForm(t *testing.T) {
	app := newTestApp(t)
	app.backend.FailNext("POST /team", 1)

	rec := app.do(formRequest(http.MethodPost, "/dashboard/team", url.Values{
		"name":     {"Grace"},
		"position": {"CTO"},
	}), tokenFor(t, "admin"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BACKEND_WRITE_FAILED", env.Error.Code)
	assert.Contains(t, string(env.Data), "Grace")
	assert.Empty(t, app.backend.Records("team"))
}

func TestServer_LoginPersistsSessionAcrossRequests(t *testing.T) {
	app := newTestApp(t)
	token := tokenFor(t, "admin")
	app.backend.AddAccount("ada@agency.dev", backendtest.Account{
		Password: "secret",
		Token:    token,
		User:     backendtest.Record{"name": "Ada", "role": "admin"},
	})

	rec := app.do(formRequest(http.MethodPost, "/login", url.Values{
		"email":    {"ada@agency.dev"},
		"password": {"secret"},
		"from":     {"/dashboard/clients"},
	}), "")

	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/dashboard/clients", rec.Header().Get(echo.HeaderLocation))
	cookie := cookieNamed(rec, "token")
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	// A later request carrying only the cookie is still signed in.
	rec = app.do(httptest.NewRequest(http.MethodGet, "/dashboard/clients", nil), cookie.Value)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer "+token, app.backend.LastAuthorization())
}

func TestServer_LoginRejectsOffSiteReturn(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddAccount("ada@agency.dev", backendtest.Account{Password: "secret", Token: tokenFor(t, "admin")})

	rec := app.do(formRequest(http.MethodPost, "/login", url.Values{
		"email":    {"ada@agency.dev"},
		"password": {"secret"},
		"from":     {"//evil.example"},
	}), "")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestServer_LoginWithWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.backend.AddAccount("ada@agency.dev", backendtest.Account{Password: "secret", Token: "tok"})

	rec := app.do(formRequest(http.MethodPost, "/login", url.Values{
		"email":    {"ada@agency.dev"},
		"password": {"wrong"},
	}), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, cookieNamed(rec, "token"))
}

func TestServer_LogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodPost, "/logout", nil), tokenFor(t, "admin"))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	cookie := cookieNamed(rec, "token")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestServer_ThemeToggle(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/theme", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Theme)
	assert.True(t, env.Theme.DarkMode)
	assert.Equal(t, "dark", env.Theme.RootClass)

	rec = app.do(httptest.NewRequest(http.MethodPost, "/theme/toggle", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := cookieNamed(rec, "theme")
	require.NotNil(t, cookie)
	assert.Equal(t, "light", cookie.Value)
	assert.False(t, decode(t, rec).Theme.DarkMode)

	req := httptest.NewRequest(http.MethodGet, "/theme", nil)
	req.AddCookie(cookie)
	rec = app.do(req, "")
	assert.Equal(t, "light", decode(t, rec).Theme.RootClass)
}

func TestServer_PublicReads(t *testing.T) {
	app := newTestApp(t)
	app.backend.Seed("journey",
		backendtest.Record{"type": "experience", "title": "Agency"},
		backendtest.Record{"type": "skill", "title": "Go"},
	)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/api/journey/skill", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []api.JourneyEntry
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Go", entries[0].Title)

	rec = app.do(httptest.NewRequest(http.MethodGet, "/api/journey/hobbies", nil), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func listItems(t *testing.T, rec *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()

	var view struct {
		Items json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decodePage(t, rec).Data, &view))

	return view.Items
}

func listView[T any](t *testing.T, rec *httptest.ResponseRecorder) handler.ListView[T] {
	t.Helper()

	var view handler.ListView[T]
	require.NoError(t, json.Unmarshal(decodePage(t, rec).Data, &view))

	return view
}
