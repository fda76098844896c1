// Package offerapi is an HTTP client for the offer service's REST API.
package offerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// API defines the offer service operations used by the rest of offerwatch.
// This interface is implemented by *Client and can be used for testing.
type API interface {
	Me(ctx context.Context) (Me, error)
	Logout(ctx context.Context) error
	ListOffers(ctx context.Context, filter Filter) ([]Offer, error)
	GetOffer(ctx context.Context, id int64) (Offer, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id int64, read bool) error
	Confirm(ctx context.Context, id int64) error
	ConfirmAll(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	CreateOffer(ctx context.Context, req CreateRequest) (Offer, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the offer service HTTP API using a cookie session.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	jar       http.CookieJar
	userAgent string
}

const (
	defaultBaseURL     = "http://127.0.0.1:8080"
	defaultCookieName  = "JSESSIONID"
	defaultUserAgent   = "offerwatch/0.1"
	defaultTimeout     = 5 * time.Second
	maxErrorBodyLength = 512
)

// Options configure a Client.
type Options struct {
	BaseURL           string
	SessionCookieName string
	SessionCookie     string
	Timeout           time.Duration
	Transport         http.RoundTripper // nil uses http.DefaultTransport
}

// NewClient builds a Client for the given base URL and seeds the cookie jar
// with the session cookie when one is provided.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if value := strings.TrimSpace(opts.SessionCookie); value != "" {
		name := strings.TrimSpace(opts.SessionCookieName)
		if name == "" {
			name = defaultCookieName
		}
		jar.SetCookies(base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: opts.Transport,
		},
		jar:       jar,
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns a copy of the normalized service origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Jar returns the cookie jar carrying the session, for transports that
// must present the same credentials (the push socket).
func (c *Client) Jar() http.CookieJar {
	return c.jar
}

// Transport returns the round tripper used for API calls.
func (c *Client) Transport() http.RoundTripper {
	if c.http.Transport == nil {
		return http.DefaultTransport
	}
	return c.http.Transport
}

// Me retrieves the current identity.
func (c *Client) Me(ctx context.Context) (Me, error) {
	var payload Me
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &payload); err != nil {
		return Me{}, err
	}
	return payload, nil
}

// Logout terminates the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Filter narrows /api/offers. Empty fields are omitted; all supplied fields
// must match.
type Filter struct {
	Status  Status
	Read    *bool
	Keyword string
}

// IsZero reports whether the filter narrows nothing.
func (f Filter) IsZero() bool {
	return f.Status == "" && f.Read == nil && strings.TrimSpace(f.Keyword) == ""
}

// Equal reports whether two filters select the same offers.
func (f Filter) Equal(other Filter) bool {
	if f.Status != other.Status || strings.TrimSpace(f.Keyword) != strings.TrimSpace(other.Keyword) {
		return false
	}
	if (f.Read == nil) != (other.Read == nil) {
		return false
	}
	return f.Read == nil || *f.Read == *other.Read
}

// Values encodes the filter as query parameters.
func (f Filter) Values() url.Values {
	values := url.Values{}
	if f.Status != "" {
		values.Set("status", string(f.Status))
	}
	if f.Read != nil {
		values.Set("read", strconv.FormatBool(*f.Read))
	}
	if keyword := strings.TrimSpace(f.Keyword); keyword != "" {
		values.Set("keyword", keyword)
	}
	return values
}

// ListOffers retrieves the offers visible to the current identity.
func (c *Client) ListOffers(ctx context.Context, filter Filter) ([]Offer, error) {
	rel := &url.URL{Path: "/api/offers", RawQuery: filter.Values().Encode()}
	var payload []Offer
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetOffer retrieves a single offer.
func (c *Client) GetOffer(ctx context.Context, id int64) (Offer, error) {
	if id <= 0 {
		return Offer{}, fmt.Errorf("offer id required")
	}
	var payload Offer
	if err := c.do(ctx, http.MethodGet, offerPath(id, ""), nil, &payload); err != nil {
		return Offer{}, err
	}
	return payload, nil
}

// UnreadCount retrieves the authoritative unread counter. A missing count
// field decodes as zero.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var payload UnreadCountResponse
	if err := c.do(ctx, http.MethodGet, "/api/offers/unread-count", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// MarkRead sets the staff-facing read flag. Administrative identities only.
func (c *Client) MarkRead(ctx context.Context, id int64, read bool) error {
	if id <= 0 {
		return fmt.Errorf("offer id required")
	}
	body := struct {
		Read bool `json:"read"`
	}{Read: read}
	return c.do(ctx, http.MethodPatch, offerPath(id, "read"), body, nil)
}

// Confirm sets the submitter-facing flag on one offer. Submitters only.
func (c *Client) Confirm(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("offer id required")
	}
	return c.do(ctx, http.MethodPatch, offerPath(id, "confirm"), nil, nil)
}

// ConfirmAll confirms every unread offer of the submitter and returns how
// many were confirmed.
func (c *Client) ConfirmAll(ctx context.Context) (int, error) {
	var payload ConfirmAllResponse
	if err := c.do(ctx, http.MethodPost, "/api/offers/confirm", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Total(), nil
}

// UpdateStatus moves an offer to a new status. Administrative identities only.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if id <= 0 {
		return fmt.Errorf("offer id required")
	}
	if status == "" {
		return fmt.Errorf("status required")
	}
	body := struct {
		Status Status `json:"status"`
	}{Status: status}
	return c.do(ctx, http.MethodPatch, offerPath(id, "status"), body, nil)
}

// CreateOffer submits a new offer. The server rejects administrative identities.
func (c *Client) CreateOffer(ctx context.Context, req CreateRequest) (Offer, error) {
	if strings.TrimSpace(req.CompanyName) == "" || strings.TrimSpace(req.PositionTitle) == "" {
		return Offer{}, fmt.Errorf("company name and position title required")
	}
	var payload Offer
	if err := c.do(ctx, http.MethodPost, "/api/offers", req, &payload); err != nil {
		return Offer{}, err
	}
	return payload, nil
}

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
	}
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
}

// IsUnauthorized reports whether err is a 401 or 403 from the API.
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden
}

func offerPath(id int64, action string) string {
	path := "/api/offers/" + strconv.FormatInt(id, 10)
	if action != "" {
		path += "/" + action
	}
	return path
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return &StatusError{
			Method: method,
			Path:   rel.Path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
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

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
