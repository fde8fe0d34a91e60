package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultConnectTimeout = 5 * time.Second
	maxErrorBodySize      = 4 << 10
)

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	logger  logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (tests use httptest's).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithRateLimit caps outbound requests per second. rps <= 0 disables the cap.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

func defaultHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: defaultConnectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: defaultConnectTimeout,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// NewHTTPClient builds a client for the backend rooted at serverURL
// (e.g. "http://127.0.0.1:8000"). API paths are resolved under /api.
func NewHTTPClient(serverURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    defaultHTTPClient(timeout),
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// endpoint joins API path segments under <base>/api.
func (c *HTTPClient) endpoint(segments ...string) string {
	return c.baseURL.JoinPath(append([]string{"api"}, segments...)...).String()
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

type request struct {
	method      string
	url         string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(method, endpoint string, payload any) (request, error) {
	r := request{method: method, url: endpoint}
	if payload == nil {
		return r, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return r, fmt.Errorf("encode request: %w", err)
	}
	r.body = bytes.NewReader(b)
	r.contentType = "application/json"
	return r, nil
}

// do sends r and decodes a 2xx JSON response into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, r request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	target := r.url
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn(ctx, "backend call failed", "method", r.method, "url", r.url, "request_id", requestID, "err", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "backend call", "method", r.method, "url", r.url, "status", resp.StatusCode,
		"request_id", requestID, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return mapStatus(resp.StatusCode, errorDetail(body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	return nil
}

// mapStatus folds an HTTP status into a sentinel error, keeping the backend
// detail message when there is one.
func mapStatus(status int, detail string) error {
	var kind error
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = ErrUnauthorized
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status == http.StatusConflict:
		kind = ErrConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		kind = ErrValidation
	default:
		kind = ErrUnavailable
	}
	if detail == "" {
		return fmt.Errorf("%w (status %d)", kind, status)
	}
	return fmt.Errorf("%w: %s", kind, detail)
}

// errorDetail extracts a human-readable message from an error body. FastAPI
// style bodies carry either {"detail": "..."} or {"detail": [{"msg": "..."}]}.
func errorDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}

	if bytes.HasPrefix(body, []byte("{")) || bytes.HasPrefix(body, []byte("<")) {
		return ""
	}
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func (c *HTTPClient) Signup(ctx context.Context, email, username, password string) (*models.Identity, error) {
	r, err := jsonRequest(http.MethodPost, c.endpoint("users", "signup"), map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var out models.Identity
	if err := c.do(ctx, r, &out); err != nil {
		if errors.Is(err, ErrValidation) && isAlreadyTaken(err) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}
	return &out, nil
}

// isAlreadyTaken recognises the 400 the backend answers for a duplicate
// email or username.
func isAlreadyTaken(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already") || strings.Contains(msg, "exists")
}

// Login treats every rejection of the credentials themselves as
// ErrInvalidCredentials; transport and server failures keep their class.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	r, err := jsonRequest(http.MethodPost, c.endpoint("users", "login"), map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var out models.LoginResult
	if err := c.do(ctx, r, &out); err != nil {
		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	if out.UserID == 0 {
		return nil, fmt.Errorf("%w: login response without user_id", ErrUnavailable)
	}
	return &out, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, userID int64) (*models.Identity, error) {
	var out models.Identity
	if err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint("users", id(userID))}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, userID int64, username string) (*models.Identity, error) {
	r, err := jsonRequest(http.MethodPut, c.endpoint("users", id(userID)), map[string]string{"username": username})
	if err != nil {
		return nil, err
	}
	var out models.Identity
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) listPins(ctx context.Context, endpoint string, query url.Values) ([]models.Pin, error) {
	var out []models.Pin
	if err := c.do(ctx, request{method: http.MethodGet, url: endpoint, query: query}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Pin{}
	}
	return out, nil
}

func (c *HTTPClient) ListUserPins(ctx context.Context, userID int64) ([]models.Pin, error) {
	return c.listPins(ctx, c.endpoint("users", id(userID), "pins"), nil)
}

func (c *HTTPClient) ListLikedPins(ctx context.Context, userID int64) ([]models.Pin, error) {
	return c.listPins(ctx, c.endpoint("users", id(userID), "likes"), nil)
}

// ListPins hits the collection with its trailing slash, as the backend routes it.
func (c *HTTPClient) ListPins(ctx context.Context) ([]models.Pin, error) {
	return c.listPins(ctx, c.endpoint("pins")+"/", nil)
}

func (c *HTTPClient) SearchPins(ctx context.Context, query string) ([]models.Pin, error) {
	return c.listPins(ctx, c.endpoint("pins", "search"), url.Values{"search": {query}})
}

func (c *HTTPClient) GetPin(ctx context.Context, pinID int64) (*models.Pin, error) {
	var out models.Pin
	if err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint("pins", id(pinID))}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func multipartRequest(method, endpoint string, userID int64, form PinForm) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{{"user_id", id(userID)}}
	if form.Title != "" {
		fields = append(fields, [2]string{"title", form.Title})
	}
	if form.Content != "" {
		fields = append(fields, [2]string{"content", form.Content})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return request{}, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	if form.Image != nil && form.Image.Data != nil {
		part, err := w.CreateFormFile("image", form.Image.FileName)
		if err != nil {
			return request{}, fmt.Errorf("create image part: %w", err)
		}
		if _, err := io.Copy(part, form.Image.Data); err != nil {
			return request{}, fmt.Errorf("copy image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("close multipart: %w", err)
	}
	return request{method: method, url: endpoint, body: &buf, contentType: w.FormDataContentType()}, nil
}

func (c *HTTPClient) CreatePin(ctx context.Context, userID int64, form PinForm) (*models.Pin, error) {
	r, err := multipartRequest(http.MethodPost, c.endpoint("pins"), userID, form)
	if err != nil {
		return nil, err
	}
	var out models.Pin
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdatePin(ctx context.Context, pinID, userID int64, form PinForm) (*models.Pin, error) {
	r, err := multipartRequest(http.MethodPut, c.endpoint("pins", id(pinID)), userID, form)
	if err != nil {
		return nil, err
	}
	var out models.Pin
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeletePin(ctx context.Context, pinID, userID int64) error {
	r, err := jsonRequest(http.MethodDelete, c.endpoint("pins", id(pinID)), map[string]int64{"user_id": userID})
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

func (c *HTTPClient) LikePin(ctx context.Context, pinID, userID int64) error {
	r, err := jsonRequest(http.MethodPost, c.endpoint("pins", id(pinID), "likes"), map[string]int64{"user_id": userID})
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}

func (c *HTTPClient) ListComments(ctx context.Context, pinID int64) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint("pins", id(pinID), "comments")}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Comment{}
	}
	return out, nil
}

type commentPayload struct {
	UserID  int64  `json:"user_id"`
	Content string `json:"content"`
}

func (c *HTTPClient) CreateComment(ctx context.Context, pinID, userID int64, content string) (*models.Comment, error) {
	r, err := jsonRequest(http.MethodPost, c.endpoint("pins", id(pinID), "comments"), commentPayload{UserID: userID, Content: content})
	if err != nil {
		return nil, err
	}
	var out models.Comment
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateComment(ctx context.Context, commentID, userID int64, content string) (*models.Comment, error) {
	r, err := jsonRequest(http.MethodPut, c.endpoint("pins", "comments", id(commentID)), commentPayload{UserID: userID, Content: content})
	if err != nil {
		return nil, err
	}
	var out models.Comment
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteComment(ctx context.Context, commentID, userID int64) error {
	r, err := jsonRequest(http.MethodDelete, c.endpoint("pins", "comments", id(commentID)), map[string]int64{"user_id": userID})
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}
