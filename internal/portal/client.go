package portal

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// SimKuliah endpoints, relative to the base URL.
const (
	loginPath      = "/index.php/login/auth"
	attendancePath = "/index.php/absensi"
	confirmPath    = "/index.php/absensi/konfirmasi_kehadiran"
	schedulePath   = "/index.php/jadwal_kuliah/index"
)

// Network error kinds. These are distinct from login rejection: an unreachable
// portal is not a credentials problem.
var (
	ErrUnreachable = errors.New("portal unreachable")
	ErrTimeout     = errors.New("portal request timed out")
)

// Response is the subset of an HTTP exchange the engine cares about.
type Response struct {
	Status   int
	Body     string
	FinalURL string
}

// Client is a cookie-jarred browser-like HTTP client bound to one portal
// session. A fresh Client is created per login; cookies carry the session.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a portal client for the given base URL. TLS verification
// is disabled: the portal serves a broken certificate chain.
func NewClient(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// setBrowserHeaders mimics a desktop browser; the portal rejects bare clients.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// Get fetches a portal page, following redirects.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	setBrowserHeaders(req)
	return c.do(req)
}

// PostForm submits a form-encoded POST to a portal endpoint.
func (c *Client) PostForm(ctx context.Context, path string, data url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	setBrowserHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyNetErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyNetErr(err)
	}

	return &Response{
		Status:   resp.StatusCode,
		Body:     string(body),
		FinalURL: resp.Request.URL.String(),
	}, nil
}

// classifyNetErr maps transport failures onto the two network error kinds so
// callers can report them distinctly.
func classifyNetErr(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// AttendancePage fetches the attendance page body.
func (c *Client) AttendancePage(ctx context.Context) (string, error) {
	resp, err := c.Get(ctx, attendancePath)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

// SchedulePage fetches the semester schedule page body.
func (c *Client) SchedulePage(ctx context.Context) (string, error) {
	resp, err := c.Get(ctx, schedulePath)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

// SubmitConfirmation posts an attendance confirmation and returns the raw
// response body for classification by the caller.
func (c *Client) SubmitConfirmation(ctx context.Context, data url.Values) (string, error) {
	resp, err := c.PostForm(ctx, confirmPath, data)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}
