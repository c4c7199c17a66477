// Package client implements a session-scoped HTTP client with persistent
// cookies and unified error capture.
//
// A Client carries headers, cookies, authentication, timeout, and redirect
// policy across requests. Cookies returned by servers are merged into a
// shared cookie store so they survive process restarts. Verb dispatch
// returns a normalized response or an error; the most recent failure is
// also queryable through LastError.
package client

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/transferkit/transferkit/cookies"
	"github.com/transferkit/transferkit/internal/config"
	"github.com/transferkit/transferkit/internal/logging"
)

const maxRedirects = 10

type basicAuth struct {
	username string
	password string
}

// Client wraps resty with session state, a persistent cookie store, and
// rate limiting. Zero value is not usable; use New.
type Client struct {
	mu      sync.RWMutex
	rc      *resty.Client
	limiter *rate.Limiter

	headers map[string]string
	cookies map[string]string
	auth    *basicAuth
	timeout time.Duration
	follow  bool

	store   cookies.Store
	log     *zap.Logger
	lastErr *ErrorState

	defaults config.ClientConfig
}

// Option customizes client construction.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCookieStore replaces the default file-backed cookie store.
func WithCookieStore(store cookies.Store) Option {
	return func(c *Client) {
		if store != nil {
			c.store = store
		}
	}
}

// New creates a client with defaults from the environment.
func New(opts ...Option) *Client {
	cfg := config.LoadOrDefault()

	c := &Client{
		limiter:  rate.NewLimiter(rate.Inf, 0), // Unlimited by default
		log:      logging.NewDefault().Logger,
		defaults: cfg.Client,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		c.store = cookies.NewFileStore(cfg.Client.CookieFile, c.log)
	}

	c.applyDefaults()

	return c
}

// applyDefaults restores construction-time state and replaces the resty
// client, discarding any pooled connections held by the previous one.
func (c *Client) applyDefaults() {
	if c.rc != nil {
		c.rc.GetClient().CloseIdleConnections()
	}

	c.rc = resty.New()
	c.headers = map[string]string{"User-Agent": c.defaults.UserAgent}
	c.cookies = map[string]string{}
	c.auth = nil
	c.timeout = time.Duration(c.defaults.TimeoutSeconds) * time.Second
	c.follow = true
	c.lastErr = nil

	c.rc.SetTimeout(c.timeout)
	c.setRedirectPolicy(true)
}

// SetTimeout configures request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
	c.rc.SetTimeout(d)
}

// SetHeader sets a session header. Later sets override earlier ones.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// SetBasicAuth configures basic authentication.
func (c *Client) SetBasicAuth(username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = &basicAuth{username: username, password: password}
}

// SetBearerAuth configures bearer token authentication. The token is stored
// as the Authorization header.
func (c *Client) SetBearerAuth(token string) {
	c.SetHeader("Authorization", "Bearer "+token)
}

// SetUserAgent sets the User-Agent header.
func (c *Client) SetUserAgent(value string) {
	c.SetHeader("User-Agent", value)
}

// SetReferer sets the Referer header.
func (c *Client) SetReferer(referer string) {
	c.SetHeader("Referer", referer)
}

// SetFollowRedirects configures whether redirects are followed.
func (c *Client) SetFollowRedirects(follow bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.follow = follow
	c.setRedirectPolicy(follow)
}

// SetCookie sets a session cookie. Session cookies win over persisted ones.
func (c *Client) SetCookie(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies[name] = value
}

// SetRateLimit configures rate limiting (requests per second, 0 disables).
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// Headers returns a copy of the session headers.
func (c *Client) Headers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// Reset restores the client to its construction-time state and starts a
// fresh connection-reuse session.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyDefaults()
}

func (c *Client) setRedirectPolicy(follow bool) {
	if follow {
		c.rc.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		}))
		return
	}
	c.rc.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}))
}
