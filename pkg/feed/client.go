// Package feed is the HTTP client for the affiliate datafeed portal. Every
// request is credentialed with HTTP digest authentication; report downloads
// are streamed rather than buffered.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/icholy/digest"
	"github.com/klauspost/compress/gzip"

	errs "assocfeed/pkg/errors"
	"assocfeed/pkg/logger"
	"assocfeed/pkg/ratelimit"
	"assocfeed/pkg/retry"
)

// Options configures a portal client.
type Options struct {
	BaseURL   string
	Username  string
	Password  string
	UserAgent string
	Timeout   time.Duration

	// Retry governs report fetches; nil means the default constant-interval
	// policy.
	Retry *retry.Config

	// Limiter paces requests; nil disables pacing.
	Limiter ratelimit.Limiter
}

// Client talks to the datafeed portal.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	retryCfg   *retry.Config
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a portal client with digest authentication.
func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	retryCfg := opts.Retry
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &digest.Transport{
				Username: opts.Username,
				Password: opts.Password,
			},
		},
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		retryCfg:  retryCfg,
		limiter:   opts.Limiter,
		logger:    log,
	}
}

// FetchListing downloads the directory-listing page and returns its HTML.
// Setting the accept-encoding header explicitly disables the transport's
// transparent decompression, so the page is inflated here when the portal
// honored the requested encoding.
func (c *Client) FetchListing(ctx context.Context) (string, error) {
	resp, err := retry.DoWithResult(func() (*http.Response, error) {
		return c.open(ctx, ListReportsURL(c.baseURL))
	}, c.retryCfg)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", &errs.Error{
				Type:    errs.ErrorTypeDecode,
				Message: fmt.Sprintf("malformed listing encoding: %v", err),
			}
		}
		defer zr.Close()
		body = zr
	}

	html, err := io.ReadAll(body)
	if err != nil {
		return "", &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read listing body: %v", err),
		}
	}
	return string(html), nil
}

// OpenReport opens a streaming download of one report file. The caller owns
// the returned body and must close it; the bytes are the raw gzip payload.
func (c *Client) OpenReport(ctx context.Context, filename string) (io.ReadCloser, error) {
	resp, err := retry.DoWithResult(func() (*http.Response, error) {
		return c.open(ctx, GetReportURL(c.baseURL, filename))
	}, c.retryCfg)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// open issues a single credentialed GET and classifies any failure.
func (c *Client) open(ctx context.Context, requestURL string) (*http.Response, error) {
	if c.limiter != nil {
		c.limiter.Wait()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	req.Header.Set("Accept-Encoding", "gzip")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending portal request", map[string]interface{}{
		"url": requestURL,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	c.logger.DebugWithFields("portal request completed", map[string]interface{}{
		"url":      requestURL,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if err := checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

func classifyTransportError(err error) error {
	// A cancelled or expired context is the caller's decision, not a portal
	// failure; keep it unwrapped so the retry predicate sees it.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
		return &errs.Error{
			Type:    errs.ErrorTypeTimeout,
			Message: fmt.Sprintf("read timeout: %v", err),
		}
	}
	return &errs.Error{
		Type:    errs.ErrorTypeNetwork,
		Message: fmt.Sprintf("connection error: %v", err),
	}
}

func checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "authentication rejected",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusNotFound:
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "report not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 500:
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: fmt.Sprintf("server returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	default:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}
