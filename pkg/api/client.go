package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"courseadmin/pkg/apierr"
	"courseadmin/pkg/course"
	"courseadmin/pkg/lesson"
	"courseadmin/pkg/user"
)

var (
	_ user.Backend   = (*Client)(nil)
	_ course.Backend = (*Client)(nil)
	_ lesson.Backend = (*Client)(nil)
)

// Client talks to the course-authoring backend. Public calls (login,
// registration) skip the auth stage; everything else goes through it.
type Client struct {
	baseURL   string
	public    *http.Client
	protected *http.Client
	logger    *slog.Logger
}

// NewClient builds a client over base. creds owns the session; a 401 on a
// protected call makes it log out.
func NewClient(baseURL string, base http.RoundTripper, creds Credentials, logger *slog.Logger) *Client {
	if base == nil {
		base = http.DefaultTransport
	}
	base = requestIDTransport{next: base}

	auth := &AuthTransport{
		Next:        base,
		Credentials: creds,
		OnLogout: func(err error) {
			if err != nil {
				logger.Error("implicit logout after 401", "error", err)
				return
			}
			logger.Warn("backend rejected credential, session cleared")
		},
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		public:    &http.Client{Transport: base},
		protected: &http.Client{Transport: auth},
		logger:    logger,
	}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Title   string `json:"title"`
	Detail  string `json:"detail"`
}

func (b errorBody) text() string {
	for _, s := range []string{b.Message, b.Detail, b.Error, b.Title} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, apierr.ErrUnauthorized) {
			return apierr.ErrUnauthorized
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var eb errorBody
		msg := ""
		if json.Unmarshal(raw, &eb) == nil {
			msg = eb.text()
		}
		c.logger.Debug("backend error", "method", method, "path", path, "status", resp.StatusCode, "message", msg)
		return &apierr.StatusError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
