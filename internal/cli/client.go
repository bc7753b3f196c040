package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const sessionCookieName = "session"

// ErrNotLoggedIn is returned when the store redirects a request to the login page
var ErrNotLoggedIn = errors.New("not logged in (run the login command first)")

// Client talks to the store: the REST endpoints as JSON and the site as HTML forms.
// Redirects are never followed so the caller can read session cookies and login bounces.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new store client. Requests are logged at debug level.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// SetToken updates the client's token
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError represents an error response from the REST API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (c *Client) newRequest(method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.token})
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	c.logger.Debug("request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}

// GetJSON performs a REST query and decodes the response into result
func (c *Client) GetJSON(path string, query url.Values, result any) error {
	req, err := c.newRequest(http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// Login submits the login form and returns the session token from the response cookie
func (c *Client) Login(username, password string) (string, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := c.newRequest(http.MethodPost, "/login/", nil, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Log in fresh, not as whoever the stored token belongs to
	req.Header.Del("Authorization")
	req.Header.Del("Cookie")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", errors.New("too many login attempts, try again later")
	case resp.StatusCode == http.StatusSeeOther:
		for _, cookie := range resp.Cookies() {
			if cookie.Name == sessionCookieName && cookie.Value != "" {
				return cookie.Value, nil
			}
		}
		// Redirected without a session: the account is not activated
		return "", errors.New("login refused: account is not activated")
	case resp.StatusCode == http.StatusOK:
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err == nil {
			if msg := strings.TrimSpace(doc.Find("p.error").First().Text()); msg != "" {
				return "", fmt.Errorf("login failed: %s", msg)
			}
		}
		return "", errors.New("login failed")
	default:
		return "", fmt.Errorf("login failed: HTTP %d", resp.StatusCode)
	}
}

// Page fetches or submits a site page and parses it. A redirect to the login page
// gives ErrNotLoggedIn; other non-200 responses report the error page message.
func (c *Client) Page(method, path string, query url.Values) (*goquery.Document, error) {
	var body io.Reader
	if method == http.MethodPost {
		body = strings.NewReader("")
	}
	req, err := c.newRequest(method, path, query, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusSeeOther || resp.StatusCode == http.StatusFound {
		if strings.HasPrefix(resp.Header.Get("Location"), "/login/") {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("unexpected redirect to %s", resp.Header.Get("Location"))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(doc.Find("#error p").First().Text())
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
	}
	return doc, nil
}
