// Package gateway forwards browser calls to the alerting backend with the session's bearer token.
package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"AlertConsoleAPI/internal/apperr"
	"AlertConsoleAPI/internal/config"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/metrics"
	"AlertConsoleAPI/internal/models"
	"AlertConsoleAPI/internal/session"
)

const maxResponseBytes = 10 << 20

// Request describes one call to the backend. Path is relative to the base URL and
// RawQuery is appended verbatim.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Body     json.RawMessage
}

// Response is the backend's answer, relayed unchanged.
type Response struct {
	Status int
	Body   json.RawMessage
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewHTTPClient returns a pooled client suited to a handful of backend hosts.
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// New validates the base URL and builds a Client. httpClient may be nil.
func New(cfg config.GatewayConfig, httpClient *http.Client, log *logger.Logger, m *metrics.Metrics) (*Client, error) {
	base, err := config.ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg.Timeout)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		baseURL: base.String(),
		http:    httpClient,
		log:     log,
		metrics: m,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Forward sends req with the stored token. Without a token nothing is sent and
// ErrUnauthorized is returned.
func (c *Client) Forward(ctx context.Context, store session.Store, req Request) (*Response, error) {
	token, ok := "", false
	if store != nil {
		token, ok = store.Token()
	}
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	return c.do(ctx, req, token)
}

// Authenticate forwards a login or signup call, which needs no token. A successful
// answer carrying data.token is saved into store before returning.
func (c *Client) Authenticate(ctx context.Context, store session.Store, path string, body json.RawMessage) (*Response, error) {
	resp, err := c.do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, "")
	if err != nil {
		return nil, err
	}

	var auth models.AuthResponse
	if err := json.Unmarshal(resp.Body, &auth); err != nil {
		return resp, nil
	}
	if auth.Success && auth.Data != nil && auth.Data.Token != "" {
		if err := store.Save(auth.Data.Token); err != nil {
			return nil, fmt.Errorf("failed to store session token: %w", err)
		}
		c.log.Info("Session established for %s", subjectOrAnon(auth.Data.Token))
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, req Request, token string) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if req.RawQuery != "" {
		target += "?" + req.RawQuery
	}

	var body io.Reader
	if len(bytes.TrimSpace(req.Body)) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, req.Body); err != nil {
			return nil, apperr.NewValidation(apperr.CodeInvalidField, "body", "Invalid request body")
		}
		body = &buf
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &apperr.TransportError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.ObserveGateway(method, 0, time.Since(start))
		c.log.Warn("Backend call %s %s failed: %v", method, req.Path, err)
		return nil, &apperr.TransportError{Op: fmt.Sprintf("%s %s", method, req.Path), Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	c.metrics.ObserveGateway(method, httpResp.StatusCode, elapsed)
	if err != nil {
		return nil, &apperr.TransportError{Op: "read response", Err: err}
	}
	if !json.Valid(raw) {
		c.log.Warn("Backend call %s %s returned a non-JSON body (status %d)", method, req.Path, httpResp.StatusCode)
		return nil, &apperr.TransportError{
			Op:  "decode response",
			Err: fmt.Errorf("non-JSON body with status %d", httpResp.StatusCode),
		}
	}

	c.log.Debug("%s %s -> %d in %dms (%s)", method, req.Path, httpResp.StatusCode, elapsed.Milliseconds(), subjectOrAnon(token))

	return &Response{Status: httpResp.StatusCode, Body: raw}, nil
}

func subjectOrAnon(token string) string {
	if token == "" {
		return "anonymous"
	}
	if sub := session.Subject(token); sub != "" {
		return sub
	}
	return "session"
}

// QueryOf re-encodes a single optional query parameter.
func QueryOf(key, value string) string {
	if value == "" {
		return ""
	}
	return url.Values{key: []string{value}}.Encode()
}
