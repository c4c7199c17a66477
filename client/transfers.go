package client

import (
	"context"

	"github.com/transferkit/transferkit/download"
	"github.com/transferkit/transferkit/upload"
)

// Download streams a large resource to disk using the session's headers,
// basic auth, cookies, timeout, and redirect policy. Session state fills
// only the option fields the caller left empty.
//
// Unlike verb dispatch, download failures are not recorded in LastError.
func (c *Client) Download(ctx context.Context, opts download.Options) (string, error) {
	c.mu.RLock()
	if opts.Headers == nil {
		headers := make(map[string]string, len(c.headers))
		for k, v := range c.headers {
			headers[k] = v
		}
		opts.Headers = headers
	}
	if opts.Cookies == nil {
		cookieMap := make(map[string]string, len(c.cookies))
		for k, v := range c.cookies {
			cookieMap[k] = v
		}
		opts.Cookies = cookieMap
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = c.defaults.ChunkSize
	}
	if opts.Auth == nil && c.auth != nil {
		opts.Auth = &download.BasicAuth{
			Username: c.auth.username,
			Password: c.auth.password,
		}
	}
	rc := c.rc
	c.mu.RUnlock()

	return download.New(rc, c.log).Fetch(ctx, opts)
}

// UploadFTP sends a local file to an FTP server. The upload is
// self-contained: it uses its own credentials and connection, nothing from
// the HTTP session, and reports failures only through its return values.
func (c *Client) UploadFTP(opts upload.Options) (string, error) {
	return upload.New(c.log).Upload(opts)
}
