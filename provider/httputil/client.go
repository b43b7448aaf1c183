package httputil

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultUserAgent = "swapkit/0.1.0"

// maxBodySize caps how much of a response body is read
const maxBodySize = 16 << 20

var ErrStatusCode = errors.New("http status != 200")

// DefaultSourceHTTPClient return preconfigured HTTP client
func DefaultSourceHTTPClient() SourceHTTPClient {
	return SourceHTTPClient{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				DisableCompression:    true,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
			},
		},
		userAgent: defaultUserAgent,
	}
}

// NewHTTPClient return prepared SourceHTTPClient
func NewHTTPClient(client *http.Client) SourceHTTPClient {
	if client == nil {
		return DefaultSourceHTTPClient()
	}

	return SourceHTTPClient{client: client, userAgent: defaultUserAgent}
}

type SourceHTTPClient struct {
	client    *http.Client
	userAgent string
}

// WithUserAgent returns a copy of the client sending the given User-Agent
func (f SourceHTTPClient) WithUserAgent(ua string) SourceHTTPClient {
	if ua != "" {
		f.userAgent = ua
	}

	return f
}

func (f SourceHTTPClient) UserAgent() string {
	return f.userAgent
}

// Get implements HTTP method GET client and returns the slice byte from the body
func (f SourceHTTPClient) Get(ctx context.Context, u url.URL) ([]byte, error) {
	return f.fetch(ctx, u)
}

func (f SourceHTTPClient) fetch(ctx context.Context, u url.URL) ([]byte, error) {
	req, err := f.prepareRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("build HTTP request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("make HTTP request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("http status: %d, %s: %w", resp.StatusCode, resp.Status, ErrStatusCode)
	}

	var reader io.ReadCloser
	contentType := resp.Header.Get("Content-Type")
	contentEncoding := resp.Header.Get("Content-Encoding")
	switch {
	case strings.Contains(contentType, "application/x-gzip"), strings.Contains(contentEncoding, "gzip"):
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("unable create gzip.NewReader: %w", err)
		}
		reader = gz
		defer reader.Close()

	default:
		reader = resp.Body
	}

	b, err := io.ReadAll(io.LimitReader(reader, maxBodySize))
	if err != nil {
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}

	return b, nil
}

func (f SourceHTTPClient) prepareRequest(ctx context.Context, u url.URL) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Encoding", "gzip")

	return req, nil
}
