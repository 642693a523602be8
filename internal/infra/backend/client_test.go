package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agency/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/blog", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[{"_id":"1","title":"Hello"}],"message":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, nil)
	data, err := c.Get(context.Background(), "/blog")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"_id":"1","title":"Hello"}]`, string(data))
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"data":null}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)

	_, err := c.Get(context.Background(), "/team")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	_, err = c.Get(WithToken(context.Background(), "tok-123"), "/team")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_PostSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.c", body["email"])

		_, _ = io.WriteString(w, `{"data":{"token":"t"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	data, err := c.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.c"}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"t"}`, string(data))
}

func TestClient_PostSendsMultipartUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)

		assert.Equal(t, "cover.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("png-bytes"), content)
		assert.JSONEq(t, `{"title":"Post"}`, r.FormValue("data"))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"_id":"b1","title":"Post"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	upload := &Upload{Filename: "cover.png", ContentType: "image/png", Content: []byte("png-bytes")}
	data, err := c.Post(context.Background(), "/blog", map[string]string{"title": "Post"}, upload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"b1","title":"Post"}`, string(data))
}

func TestClient_HTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "message member", status: http.StatusBadRequest, body: `{"message":"title is required"}`, message: "title is required"},
		{name: "error member", status: http.StatusInternalServerError, body: `{"error":"boom"}`, message: "boom"},
		{name: "plain text", status: http.StatusNotFound, body: "not found\n", message: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, time.Second, nil)
			_, err := c.Delete(context.Background(), "/client/1")
			require.Error(t, err)

			httpErr, ok := errors.AsType[*HTTPError](err)
			require.True(t, ok)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.True(t, IsStatus(errors.Wrap(err, "wrapped"), tt.status))
			assert.False(t, IsStatus(err, http.StatusTeapot))
		})
	}
}

func TestClient_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = io.WriteString(w, `{"data":null}`)
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.Get(ctx, "/work")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "object data", raw: `{"data":{"a":1}}`, want: `{"a":1}`},
		{name: "array data", raw: `{"data":[1,2]}`, want: `[1,2]`},
		{name: "missing data member", raw: `{"message":"deleted"}`, want: `null`},
		{name: "empty body", raw: ``, want: `null`},
		{name: "top-level array", raw: `[1,2]`, wantErr: ErrMalformedEnvelope},
		{name: "top-level null", raw: `null`, wantErr: ErrMalformedEnvelope},
		{name: "not json", raw: `<html>`, wantErr: ErrMalformedEnvelope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unwrap([]byte(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
