package api

import (
	"context"
	"net/http"

	"courseadmin/pkg/apierr"

	"github.com/google/uuid"
)

// Credentials is what the auth stage needs from the session owner.
type Credentials interface {
	AccessToken() (string, bool)
	Logout(ctx context.Context) error
}

// AuthTransport attaches the bearer credential to every request and turns a
// 401 into an implicit logout. All protected calls go through it.
type AuthTransport struct {
	Next        http.RoundTripper
	Credentials Credentials
	OnLogout    func(err error)
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := t.Credentials.AccessToken()
	if !ok {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, apierr.ErrUnauthorized
	}

	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.next().RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		logoutErr := t.Credentials.Logout(context.WithoutCancel(req.Context()))
		if t.OnLogout != nil {
			t.OnLogout(logoutErr)
		}
		return nil, apierr.ErrUnauthorized
	}
	return resp, nil
}

func (t *AuthTransport) next() http.RoundTripper {
	if t.Next == nil {
		return http.DefaultTransport
	}
	return t.Next
}

// requestIDTransport stamps each outgoing request with a correlation id.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("X-Request-ID") != "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("X-Request-ID", uuid.NewString())
	return t.next.RoundTrip(r)
}
