package realityserver

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Session is the handshake surface of a RealityServer.
// This interface is implemented by *Client and can be used for testing.
type Session interface {
	CreateSession(ctx context.Context) error
	Version(ctx context.Context) (string, error)
	DestroySession(ctx context.Context) error
}

// Prober checks whether the server answers HTTP at all.
type Prober interface {
	Ping(ctx context.Context) error
}

// Ensure Client implements Session and Prober at compile time.
var (
	_ Session = (*Client)(nil)
	_ Prober  = (*Client)(nil)
)

const (
	defaultUserAgent      = "wait-for-rs/0.1"
	defaultRequestTimeout = 2500 * time.Millisecond

	pathCreateSession  = "/uac/create/"
	pathDestroySession = "/uac/destroy/"
	pathRoot           = "/"
)

// ClientOptions configure a Client.
type ClientOptions struct {
	Host               string
	Port               int
	Secure             bool
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
}

// Client talks to a single RealityServer. Every Client owns its cookie jar and
// transport, so sessions never leak between clients.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	timeout   time.Duration
}

// NewClient builds a Client for the server at opts.Host:opts.Port.
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := baseURL(opts.Host, opts.Port, opts.Secure)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // opt-in via configuration
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Jar:       jar,
			Transport: transport,
		},
		userAgent: defaultUserAgent,
		timeout:   timeout,
	}, nil
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CreateSession opens a UAC session. The session cookie is kept in the
// client's jar for the following calls.
func (c *Client) CreateSession(ctx context.Context) error {
	return c.doChecked(ctx, http.MethodGet, pathCreateSession, nil, nil)
}

// Version asks the server for its version string with the get_version
// command.
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp RPCResponse
	if err := c.doChecked(ctx, http.MethodPost, pathRoot, versionCommand(), &resp); err != nil {
		return "", err
	}
	return resp.StringResult()
}

// DestroySession closes the UAC session opened by CreateSession.
func (c *Client) DestroySession(ctx context.Context) error {
	return c.doChecked(ctx, http.MethodGet, pathDestroySession, nil, nil)
}

// Ping reports whether the server answered an HTTP request. Any response,
// whatever its status, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, pathRoot, nil)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}

// CloseIdleConnections releases pooled connections held by the client.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) doChecked(ctx context.Context, method, path string, body, dest any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do issues the request; the caller owns the response body.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// ServerURL returns the root URL a Client for host:port would use.
func ServerURL(host string, port int, secure bool) (string, error) {
	u, err := baseURL(host, port, secure)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func baseURL(host string, port int, secure bool) (*url.URL, error) {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return nil, fmt.Errorf("host is empty")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("port %d out of range", port)
	}
	scheme := "http"
	if secure {
		scheme = "https"
	}
	u := &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(trimmed, strconv.Itoa(port)),
	}
	if _, err := url.Parse(u.String()); err != nil {
		return nil, fmt.Errorf("parse server address %q: %w", trimmed, err)
	}
	return u, nil
}
