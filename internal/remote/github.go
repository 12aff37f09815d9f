// Package remote fetches files that live outside the content tree.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/goliatone/go-codex/internal/cache"
	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
)

const (
	DefaultBaseURL  = "https://api.github.com"
	rawAccept       = "application/vnd.github.v3.raw"
	maxFileBytes    = 5 << 20
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond
)

var (
	ErrInvalidURL      = errors.New("remote: unsupported github url")
	ErrOwnerNotAllowed = errors.New("remote: github owner not allowed")
)

// StatusError is a non-2xx answer from upstream.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: upstream returned %d", e.StatusCode)
}

// Retryable reports whether another attempt could succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// FileRef addresses one file in a repository at a branch.
type FileRef struct {
	Owner  string
	Repo   string
	Branch string
	Path   string
}

// ParseFileURL accepts raw.githubusercontent.com/{owner}/{repo}/{branch}/{path}
// and github.com/{owner}/{repo}/blob/{branch}/{path} links.
func ParseFileURL(raw string) (FileRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return FileRef{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	var ref FileRef
	switch strings.ToLower(u.Hostname()) {
	case "raw.githubusercontent.com":
		if len(parts) < 4 {
			return FileRef{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
		}
		ref = FileRef{Owner: parts[0], Repo: parts[1], Branch: parts[2], Path: strings.Join(parts[3:], "/")}
	case "github.com", "www.github.com":
		if len(parts) < 5 || (parts[2] != "blob" && parts[2] != "raw") {
			return FileRef{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
		}
		ref = FileRef{Owner: parts[0], Repo: parts[1], Branch: parts[3], Path: strings.Join(parts[4:], "/")}
	default:
		return FileRef{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	for _, seg := range parts {
		if seg == "" || seg == "." || seg == ".." {
			return FileRef{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
		}
	}
	return ref, nil
}

// ContentsPath is the contents API path for the file, query included.
func (r FileRef) ContentsPath() string {
	return fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s",
		url.PathEscape(r.Owner), url.PathEscape(r.Repo), escapePath(r.Path), url.QueryEscape(r.Branch))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// Config controls the fetcher.
type Config struct {
	BaseURL      string
	AllowedOwner string
	Token        string
	Timeout      time.Duration
	Attempts     uint
	Delay        time.Duration
}

// GitHubFetcher downloads raw files through the contents API. Results go
// through a shared cache, so a failing upstream keeps serving the last good
// copy.
type GitHubFetcher struct {
	cfg    Config
	client *http.Client
	cache  interfaces.Cache[string]
	logger interfaces.Logger
}

type Option func(*GitHubFetcher)

func WithHTTPClient(client *http.Client) Option {
	return func(f *GitHubFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

func WithCache(c interfaces.Cache[string]) Option {
	return func(f *GitHubFetcher) {
		if c != nil {
			f.cache = c
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(f *GitHubFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewGitHubFetcher requires an allowed owner. Without WithCache a private
// cache with the default five minute TTL is used.
func NewGitHubFetcher(cfg Config, opts ...Option) (*GitHubFetcher, error) {
	if strings.TrimSpace(cfg.AllowedOwner) == "" {
		return nil, fmt.Errorf("remote: allowed owner is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.Delay <= 0 {
		cfg.Delay = defaultDelay
	}

	f := &GitHubFetcher{
		cfg:    cfg,
		client: http.DefaultClient,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.cache == nil {
		c, err := cache.New[string](cache.Config{
			Name:               "github",
			TTL:                5 * time.Minute,
			StaleWindow:        24 * time.Hour,
			Capacity:           256,
			Shards:             4,
			EvictionPercentage: 10,
		}, cache.WithLogger(f.logger))
		if err != nil {
			return nil, err
		}
		f.cache = c
	}
	return f, nil
}

// Fetch returns the raw text of the file linked by rawURL.
func (f *GitHubFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	ref, err := ParseFileURL(rawURL)
	if err != nil {
		return "", err
	}
	if !strings.EqualFold(ref.Owner, f.cfg.AllowedOwner) {
		return "", fmt.Errorf("%w: %s", ErrOwnerNotAllowed, ref.Owner)
	}
	endpoint := f.cfg.BaseURL + ref.ContentsPath()
	return f.cache.GetOrFetch(ctx, endpoint, func(ctx context.Context) (string, error) {
		return f.download(ctx, endpoint)
	})
}

func (f *GitHubFetcher) download(ctx context.Context, endpoint string) (string, error) {
	logger := logging.WithFields(f.logger.WithContext(ctx), map[string]any{"url": endpoint})
	return retry.DoWithData(
		func() (string, error) {
			return f.attempt(ctx, endpoint)
		},
		retry.Context(ctx),
		retry.Attempts(f.cfg.Attempts),
		retry.Delay(f.cfg.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("remote.github.retry", "attempt", n+1, "error", err)
		}),
	)
}

func (f *GitHubFetcher) attempt(ctx context.Context, endpoint string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", rawAccept)
	req.Header.Set("User-Agent", "go-codex")
	if f.cfg.Token != "" {
		req.Header.Set("Authorization", "token "+f.cfg.Token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		if !statusErr.Retryable() {
			return "", retry.Unrecoverable(statusErr)
		}
		return "", statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFileBytes+1))
	if err != nil {
		return "", err
	}
	if len(body) > maxFileBytes {
		return "", retry.Unrecoverable(fmt.Errorf("remote: file exceeds %d bytes", maxFileBytes))
	}
	return string(body), nil
}
