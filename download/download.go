// Package download streams large HTTP responses to disk in fixed-size
// chunks with per-chunk progress reporting.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/transferkit/transferkit/progress"
)

const defaultChunkSize = 8192

var (
	// ErrNoDownloadDir reports a skipped download: no destination directory
	// was provided and no network call was made.
	ErrNoDownloadDir = errors.New("download: no destination directory provided")

	// ErrUnsupportedMethod reports a method other than GET or POST.
	ErrUnsupportedMethod = errors.New("download: unsupported HTTP method")

	// ErrNoFilename reports that neither the Content-Disposition header nor
	// the caller supplied an output filename.
	ErrNoFilename = errors.New("download: no filename available")
)

// BasicAuth carries credentials for the download request.
type BasicAuth struct {
	Username string
	Password string
}

// Options configures a single download.
type Options struct {
	URL       string `validate:"required,url"`
	Method    string // GET (default) or POST
	Params    map[string]string
	ChunkSize int `validate:"gte=0"`
	Dir       string
	Filename  string // fallback when Content-Disposition has none

	Headers map[string]string
	Cookies map[string]string
	Auth    *BasicAuth
	Sink    progress.Sink
}

// Downloader executes chunked downloads over a shared resty client, reusing
// its connection pool, timeout, and redirect policy.
type Downloader struct {
	rc       *resty.Client
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a downloader. A nil resty client gets a fresh one.
func New(rc *resty.Client, log *zap.Logger) *Downloader {
	if rc == nil {
		rc = resty.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Downloader{rc: rc, log: log, validate: validator.New()}
}

// Fetch streams the resource to a file under opts.Dir and returns its path.
//
// A missing Dir skips the download before any network call. Mid-stream
// failures abort and leave the partial file in place; callers that want
// cleanup or resume own that decision.
func (d *Downloader) Fetch(ctx context.Context, opts Options) (string, error) {
	if opts.Dir == "" {
		d.log.Warn("no download directory provided, skipping",
			zap.String("url", opts.URL))
		return "", ErrNoDownloadDir
	}

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodPost {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMethod, opts.Method)
	}

	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if err := d.validate.Struct(opts); err != nil {
		return "", fmt.Errorf("download: invalid options: %w", err)
	}

	req := d.rc.R().SetContext(ctx).SetDoNotParseResponse(true)
	if opts.Headers != nil {
		req.SetHeaders(opts.Headers)
	}
	for name, value := range opts.Cookies {
		req.SetCookie(&http.Cookie{Name: name, Value: value})
	}
	if opts.Auth != nil {
		req.SetBasicAuth(opts.Auth.Username, opts.Auth.Password)
	}
	if method == http.MethodGet {
		if opts.Params != nil {
			req.SetQueryParams(opts.Params)
		}
	} else if opts.Params != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(opts.Params)
	}

	resp, err := req.Execute(method, opts.URL)
	if err != nil {
		return "", fmt.Errorf("download request: %w", err)
	}
	stream := resp.RawBody()
	defer stream.Close()

	if resp.IsError() {
		return "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode())
	}

	total := resp.RawResponse.ContentLength
	if total < 0 {
		total = 0 // unknown; progress reports an indeterminate total
	}

	filename := filenameFromDisposition(resp.Header().Get("Content-Disposition"))
	if filename == "" {
		filename = opts.Filename
	}
	if filename == "" {
		return "", ErrNoFilename
	}

	path := filepath.Join(opts.Dir, filename)
	if err := d.copyChunks(stream, path, opts.ChunkSize, total, opts.Sink); err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("downloaded file not found: %w", err)
	}

	if mt, err := mimetype.DetectFile(path); err == nil {
		d.log.Debug("download complete",
			zap.String("path", path), zap.String("content_type", mt.String()))
	}

	return path, nil
}

// copyChunks streams the body to path in fixed-size chunks, skipping
// zero-length keep-alive chunks. On failure the partial file stays on disk.
func (d *Downloader) copyChunks(stream io.Reader, path string, chunkSize int, total int64, sink progress.Sink) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	tracker := progress.NewTracker(total, sink)
	buf := make([]byte, chunkSize)
	for {
		n, rerr := stream.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				return fmt.Errorf("writing %s: %w", path, werr)
			}
			tracker.Add(int64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			return fmt.Errorf("download stream: %w", rerr)
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// filenameFromDisposition extracts the filename hint from a
// Content-Disposition header, tolerating the bare unquoted form.
func filenameFromDisposition(cd string) string {
	if cd == "" {
		return ""
	}

	if _, params, err := mime.ParseMediaType(cd); err == nil {
		if name := params["filename"]; name != "" {
			return name
		}
	}

	const marker = "filename="
	idx := strings.Index(cd, marker)
	if idx == -1 {
		return ""
	}
	return strings.Trim(cd[idx+len(marker):], `"`)
}
