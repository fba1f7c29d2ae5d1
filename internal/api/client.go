// Package api is the client for the remote admin REST API.
//
// Every entity screen goes through a Resource, which performs one network
// call per operation and normalises the endpoint's envelope into typed
// results. Failures of any kind surface as *Error. Nothing is retried.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/JonMunkholm/solaradmin/internal/logging"
)

// TokenFunc returns the bearer token of the session that issued the request,
// or "" for anonymous calls such as login.
type TokenFunc func(ctx context.Context) string

// Config holds the connection settings of a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client wraps a resty client configured for the admin API.
type Client struct {
	http *resty.Client
}

// NewClient creates a client. token may be nil.
func NewClient(cfg Config, token TokenFunc) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}

	if token != nil {
		rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if t := token(r.Context()); t != "" {
				r.SetAuthToken(t)
			}
			return nil
		})
	}

	return &Client{http: rc}
}

// do performs one request and returns the raw response body of a 2xx
// response. body, when non-nil, is sent as JSON.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return c.send(ctx, req, method, path)
}

func (c *Client) send(ctx context.Context, req *resty.Request, method, path string) ([]byte, error) {
	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		logging.FromContext(ctx).Warn("api request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, transportError(err)
	}

	status := resp.StatusCode()
	logging.FromContext(ctx).Debug("api request completed",
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	raw := resp.Body()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, statusError(status, raw)
	}
	if len(raw) > 0 && !gjson.ValidBytes(raw) {
		return nil, decodeError(status, fmt.Errorf("invalid JSON body from %s %s", method, path))
	}
	if err := envelopeFailure(raw); err != nil {
		err.Status = status
		return nil, err
	}
	return raw, nil
}

// envelopeFailure detects 2xx responses whose envelope still reports a
// failure, e.g. {"status": false, "message": "Coupon already exists"}.
func envelopeFailure(body []byte) *Error {
	if len(body) == 0 {
		return nil
	}
	res := gjson.ParseBytes(body)
	failed := false
	for _, path := range []string{"status", "success"} {
		v := res.Get(path)
		if v.Type == gjson.False {
			failed = true
		}
		if v.Type == gjson.String && strings.EqualFold(v.String(), "error") {
			failed = true
		}
	}
	if !failed {
		return nil
	}
	msg := bodyMessage(body)
	if msg == "" {
		msg = "The request was rejected"
	}
	return &Error{Kind: KindStatus, Message: msg}
}
