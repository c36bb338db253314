package nitro

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// ErrSessionClosed is returned when a session is used after logout.
var ErrSessionClosed = errors.New("session already logged out")

// Session is an authenticated session on the appliance.
type Session struct {
	client *Client
	token  string
}

// GetJSON fetches the resource at path (relative to /nitro/v1/) and decodes it into target.
func (s *Session) GetJSON(ctx context.Context, path string, target interface{}) error {
	if s.token == "" {
		return ErrSessionClosed
	}

	resp, err := s.client.do(ctx, http.MethodGet, path, "", nil, s.token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %s", path, err.Error())
	}
	log.Tracef("response %s: %s", path, data)

	var status Response
	if err := json.Unmarshal(data, &status); err != nil {
		return fmt.Errorf("json decode %s: %s", path, err.Error())
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("json decode %s: %s", path, err.Error())
	}

	return nil
}

// Logout ends the session. Calling it twice is a no-op.
func (s *Session) Logout(ctx context.Context) error {
	if s.token == "" {
		return nil
	}

	payload := map[string]interface{}{
		"logout": map[string]string{},
	}
	resp, err := s.client.do(ctx, http.MethodPost, "config/logout/", logoutContentType, payload, s.token)
	s.token = ""
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	log.Debugf("logged out from %s", s.client.baseURL.Host)

	return nil
}

// WithSession logs in, runs fn and logs out again on every path.
// A logout error is returned only if fn succeeded.
func WithSession(ctx context.Context, client *Client, fn func(*Session) error) (err error) {
	session, err := client.Login(ctx)
	if err != nil {
		return err
	}

	defer func() {
		// logout even if the context is done already
		logoutErr := session.Logout(context.WithoutCancel(ctx))
		if logoutErr == nil {
			return
		}
		if err == nil {
			err = logoutErr

			return
		}
		log.Warnf("%s", logoutErr.Error())
	}()

	return fn(session)
}
