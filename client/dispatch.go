package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Get executes a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, url string, params map[string]string) (*Response, error) {
	return c.dispatch(ctx, http.MethodGet, url, nil, params)
}

// Post executes a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, url string, body interface{}) (*Response, error) {
	return c.dispatch(ctx, http.MethodPost, url, body, nil)
}

// Put executes a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, url string, body interface{}) (*Response, error) {
	return c.dispatch(ctx, http.MethodPut, url, body, nil)
}

// Delete executes a DELETE request.
func (c *Client) Delete(ctx context.Context, url string) (*Response, error) {
	return c.dispatch(ctx, http.MethodDelete, url, nil, nil)
}

// dispatch runs one verb request: clears error state, merges persisted and
// session cookies (session wins), executes, persists response cookies on
// success, and normalizes the body.
func (c *Client) dispatch(ctx context.Context, method, url string, body interface{}, params map[string]string) (*Response, error) {
	c.clearLastError()

	merged := mergeCookies(c.store.Load(), c.sessionCookies())

	limiter := c.rateLimiter()
	if err := limiter.Wait(ctx); err != nil {
		c.setLastError(err.Error(), nil)
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req := c.newRequest(ctx)
	for name, value := range merged {
		req.SetCookie(&http.Cookie{Name: name, Value: value})
	}

	switch method {
	case http.MethodGet:
		if params != nil {
			req.SetQueryParams(params)
		}
	case http.MethodPost, http.MethodPut:
		if body != nil {
			req.SetHeader("Content-Type", "application/json")
			req.SetBody(body)
		}
	case http.MethodDelete:
		// no payload
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		c.setLastError(err.Error(), nil)
		c.log.Error("request failed",
			zap.String("method", method), zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	if resp.IsError() {
		code := resp.StatusCode()
		statusErr := &StatusError{
			StatusCode: code,
			Status:     resp.Status(),
			Body:       resp.String(),
		}
		c.setLastError(statusErr.Error(), &code)
		c.log.Error("request failed",
			zap.String("method", method), zap.String("url", url),
			zap.Int("code", code))
		return nil, statusErr
	}

	c.persistCookies(resp.Cookies())

	return normalizeResponse(resp)
}

// newRequest snapshots session state into a resty request.
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	c.mu.RLock()
	defer c.mu.RUnlock()

	req := c.rc.R().SetContext(ctx).SetHeaders(c.headers)
	if c.auth != nil {
		req.SetBasicAuth(c.auth.username, c.auth.password)
	}
	return req
}

// persistCookies writes response cookies through the store. Persistence is
// best-effort; the store logs and swallows its own failures.
func (c *Client) persistCookies(respCookies []*http.Cookie) {
	jar := make(map[string]string, len(respCookies))
	for _, ck := range respCookies {
		jar[ck.Name] = ck.Value
	}
	c.store.Save(jar)
}

func (c *Client) sessionCookies() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.cookies))
	for k, v := range c.cookies {
		out[k] = v
	}
	return out
}

func (c *Client) rateLimiter() *rate.Limiter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limiter
}

// mergeCookies overlays session on top of persisted; session wins.
func mergeCookies(persisted, session map[string]string) map[string]string {
	out := make(map[string]string, len(persisted)+len(session))
	for k, v := range persisted {
		out[k] = v
	}
	for k, v := range session {
		out[k] = v
	}
	return out
}
