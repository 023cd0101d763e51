package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
	"github.com/custodia-labs/repochat/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.RepositoryFetcher = (*Client)(nil)

const (
	// APITimeout bounds the archive link lookup.
	APITimeout = 30 * time.Second

	// DownloadTimeout bounds the archive download.
	DownloadTimeout = 10 * time.Minute

	// MaxArchiveSize caps the downloaded archive.
	MaxArchiveSize = 512 << 20

	// maxRedirects is passed to the archive link lookup.
	maxRedirects = 3
)

// Client wraps the go-github client with archive download helpers.
type Client struct {
	gh          *gh.Client
	http        *http.Client
	rateLimiter *RateLimiter
	maxSize     int64
}

// NewClient creates a client. An empty token makes unauthenticated calls,
// which only reach public repositories.
func NewClient(ctx context.Context, token string) *Client {
	httpClient := &http.Client{}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return newClient(httpClient, gh.NewClient(httpClient))
}

// NewClientWithHTTPClient creates a client against baseURL, for GitHub
// Enterprise servers and tests.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("github: parse base URL: %w", err)
	}
	ghc := gh.NewClient(httpClient)
	ghc.BaseURL = u
	return newClient(httpClient, ghc), nil
}

func newClient(httpClient *http.Client, ghc *gh.Client) *Client {
	return &Client{
		gh:          ghc,
		http:        httpClient,
		rateLimiter: NewRateLimiter(),
		maxSize:     MaxArchiveSize,
	}
}

// FetchArchive writes the zipball of repo to w. Missing repositories,
// rejected tokens and exhausted quotas wrap the matching domain error.
func (c *Client) FetchArchive(ctx context.Context, repo domain.RepoRef, w io.Writer) error {
	link, err := c.archiveLink(ctx, repo)
	if err == nil {
		logger.Debug("Archive link for %s: %s", repo, link.Redacted())
		err = c.download(ctx, link, w)
	}
	return classify(repo, err)
}

func classify(repo domain.RepoRef, err error) error {
	switch {
	case err == nil:
		return nil
	case IsNotFound(err):
		return fmt.Errorf("%w: %s: %w", domain.ErrNotFound, repo, ErrRepoNotFound)
	case IsUnauthorized(err):
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	case IsRateLimited(err):
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return err
}

func (c *Client) archiveLink(ctx context.Context, repo domain.RepoRef) (*url.URL, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	opts := &gh.RepositoryContentGetOptions{Ref: repo.Ref}
	link, resp, err := c.gh.Repositories.GetArchiveLink(ctx, repo.Owner, repo.Name, gh.Zipball, opts, maxRedirects)
	limited := c.updateRateLimitFromResponse(resp)
	if err == nil {
		return link, nil
	}
	if limited != nil {
		return nil, limited
	}

	var ghErr *gh.ErrorResponse
	var rlErr *gh.RateLimitError
	typed := errors.As(err, &ghErr) || errors.As(err, &rlErr)
	if !typed && resp != nil && resp.Response != nil && resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), URL: repo.String()}
	}
	return nil, c.wrapError(err, "get archive link")
}

func (c *Client) download(ctx context.Context, link *url.URL, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, DownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("github: create download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github: download archive: %w", err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.Observe(resp); err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body)), URL: link.Redacted()}
	}

	n, err := io.Copy(w, io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return fmt.Errorf("github: read archive: %w", err)
	}
	if n > c.maxSize {
		return fmt.Errorf("%w: more than %d bytes", ErrArchiveTooLarge, c.maxSize)
	}
	logger.Info("Downloaded %d bytes", n)
	return nil
}

// updateRateLimitFromResponse records quota headers and returns a
// RateLimitError when resp is a rate limit rejection.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) error {
	if resp == nil || resp.Response == nil {
		return nil
	}
	return c.rateLimiter.Observe(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{StatusCode: ghErr.Response.StatusCode, Message: ghErr.Message}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
