// Package upload transfers local files to FTP servers, creating the remote
// directory tree as needed and reporting progress per chunk sent.
package upload

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gonzalop/ftp"
	"go.uber.org/zap"

	"github.com/transferkit/transferkit/progress"
)

const defaultPort = 21

// Options configures a single FTP upload. Passive mode is the default;
// set Active for PORT-style data connections.
type Options struct {
	Host      string `validate:"required"`
	Username  string
	Password  string
	FilePath  string `validate:"required"`
	RemoteDir string `validate:"required"`
	Port      int    `validate:"gte=0,lte=65535"`
	Active    bool
	Timeout   time.Duration
	Sink      progress.Sink
}

// session is the slice of the FTP client the uploader needs. Narrow on
// purpose so tests can substitute a fake.
type session interface {
	Login(username, password string) error
	ChangeDir(path string) error
	MakeDir(path string) error
	Store(remotePath string, r io.Reader) error
	Quit() error
}

type dialFunc func(addr string, opts ...ftp.Option) (session, error)

// Uploader executes FTP uploads.
type Uploader struct {
	log      *zap.Logger
	validate *validator.Validate
	dial     dialFunc
}

// New creates an uploader.
func New(log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{
		log:      log,
		validate: validator.New(),
		dial: func(addr string, opts ...ftp.Option) (session, error) {
			return ftp.Dial(addr, opts...)
		},
	}
}

// Upload sends the local file to RemoteDir under its base name, overwriting
// any remote file of the same name, and returns the composed remote path.
//
// Any step failure aborts the whole operation with no partial success
// value. The session is closed in a final step iff it was established.
func (u *Uploader) Upload(opts Options) (string, error) {
	if opts.Port == 0 {
		opts.Port = defaultPort
	}
	if err := u.validate.Struct(opts); err != nil {
		return "", fmt.Errorf("upload: invalid options: %w", err)
	}

	info, err := os.Stat(opts.FilePath)
	if err != nil {
		return "", fmt.Errorf("upload: local file %s does not exist: %w", opts.FilePath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("upload: %s is a directory", opts.FilePath)
	}

	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	var dialOpts []ftp.Option
	if opts.Timeout > 0 {
		dialOpts = append(dialOpts, ftp.WithTimeout(opts.Timeout))
	}
	if opts.Active {
		dialOpts = append(dialOpts, ftp.WithActiveMode())
	}

	conn, err := u.dial(addr, dialOpts...)
	if err != nil {
		return "", fmt.Errorf("upload: connect %s: %w", addr, err)
	}
	defer func() {
		if qerr := conn.Quit(); qerr != nil {
			u.log.Warn("failed to close FTP session",
				zap.String("addr", addr), zap.Error(qerr))
		}
	}()

	if err := conn.Login(opts.Username, opts.Password); err != nil {
		return "", fmt.Errorf("upload: login: %w", err)
	}
	u.log.Info("connected to FTP server",
		zap.String("addr", addr), zap.Bool("passive", !opts.Active))

	if err := u.ensureDir(conn, opts.RemoteDir); err != nil {
		return "", err
	}

	file, err := os.Open(opts.FilePath)
	if err != nil {
		return "", fmt.Errorf("upload: open %s: %w", opts.FilePath, err)
	}
	defer file.Close()

	base := filepath.Base(opts.FilePath)
	tracker := progress.NewTracker(info.Size(), opts.Sink)
	reader := &ftp.ProgressReader{
		Reader: file,
		Callback: func(bytesTransferred int64) {
			tracker.Set(bytesTransferred)
		},
	}

	if err := conn.Store(base, reader); err != nil {
		return "", fmt.Errorf("upload: store %s: %w", base, err)
	}

	remotePath := opts.RemoteDir + "/" + base
	u.log.Info("file uploaded",
		zap.String("remote_path", remotePath),
		zap.Int64("size", info.Size()))
	return remotePath, nil
}

// ensureDir changes into dir, creating it level by level when the change
// fails. A ChangeDir probe failure cannot tell a missing directory from a
// denied one, so creation is attempted either way; MakeDir errors surface
// with the server's own response rather than being conflated with
// "does not exist".
func (u *Uploader) ensureDir(conn session, dir string) error {
	if err := conn.ChangeDir(dir); err == nil {
		return nil
	}
	u.log.Info("remote directory missing, creating", zap.String("dir", dir))

	current := ""
	for _, segment := range splitPath(dir) {
		current += "/" + segment
		if err := conn.ChangeDir(current); err == nil {
			continue
		}
		if err := conn.MakeDir(current); err != nil {
			return fmt.Errorf("upload: create remote directory %s: %w", current, err)
		}
		if err := conn.ChangeDir(current); err != nil {
			return fmt.Errorf("upload: enter remote directory %s: %w", current, err)
		}
	}
	return nil
}

// splitPath breaks a remote path into its non-empty segments.
func splitPath(dir string) []string {
	var segments []string
	for _, seg := range strings.Split(dir, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
