// Package backend is the HTTP transport to the content API. Every response is
// wrapped as {"data": ...}; the client strips the envelope and hands back the
// raw data member.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"agency/config"
	"agency/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/fx"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 1 << 20
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// ErrMalformedEnvelope is returned when a response body is not a JSON object.
var ErrMalformedEnvelope = errors.New("malformed response envelope")

type tokenKey struct{}

// WithToken attaches a session token to ctx. Requests made with the returned
// context carry it as a bearer credential.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token attached by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)

	return token
}

// Upload is a file sent alongside a write. When present the request body is
// multipart with the file under "file" and the JSON body under "data".
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Body   any
	Upload *Upload
}

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// Client is the content API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates the client from configuration.
func New(params Params) *Client {
	return NewClient(params.Config.Backend.BaseURL, params.Config.Backend.Timeout, params.Logger)
}

// NewClient creates a client for baseURL. Outgoing requests are traced.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Get reads path.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path})
}

// Post sends body to path.
func (c *Client) Post(ctx context.Context, path string, body any, upload *Upload) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Upload: upload})
}

// Put replaces the resource at path.
func (c *Client) Put(ctx context.Context, path string, body any, upload *Upload) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Upload: upload})
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do performs req and returns the unwrapped data member.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if token := TokenFromContext(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Backend request",
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, readHTTPError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	return Unwrap(raw)
}

// Unwrap extracts the data member of an envelope. A body without a data
// member yields JSON null; an empty body (such as 204) also yields null.
func Unwrap(raw []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope == nil {
		return nil, ErrMalformedEnvelope
	}

	data, ok := envelope["data"]
	if !ok {
		return json.RawMessage("null"), nil
	}

	return data, nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Upload == nil {
		if req.Body == nil {
			return nil, "", nil
		}
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", errors.Wrap(err, "marshal body")
		}

		return bytes.NewReader(data), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+quoteEscaper.Replace(req.Upload.Filename)+`"`)
	fileType := req.Upload.ContentType
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	header.Set("Content-Type", fileType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", errors.Wrap(err, "create file part")
	}
	if _, err := part.Write(req.Upload.Content); err != nil {
		return nil, "", errors.Wrap(err, "write file part")
	}

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", errors.Wrap(err, "marshal body")
		}
		if err := w.WriteField("data", string(data)); err != nil {
			return nil, "", errors.Wrap(err, "write data field")
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart body")
	}

	return &buf, w.FormDataContentType(), nil
}

func readHTTPError(resp *http.Response) error {
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: "failed to read body: " + err.Error()}
	}

	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		switch {
		case apiErr.Message != "":
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		case apiErr.Error != "":
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
	}

	return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
}
