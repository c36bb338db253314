// Package nitro implements the few NITRO REST API calls needed by the
// NetScaler plugins: login, fetching a stat resource and logout.
package nitro

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/biola/nagios-plugins/pkg/logger"
	"github.com/biola/nagios-plugins/pkg/utils"
	"github.com/goccy/go-json"
)

var log = logger.Log

const (
	// AuthCookie is the name of the session cookie returned by the login call.
	AuthCookie = "NITRO_AUTH_TOKEN"

	apiPrefix = "/nitro/v1/"

	loginContentType  = "application/vnd.com.citrix.netscaler.login+json"
	logoutContentType = "application/vnd.com.citrix.netscaler.logout+json"

	// DefaultTimeout is used if no timeout is configured.
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrNoToken is returned if the login response did not contain a session cookie.
	ErrNoToken = errors.New("login response contains no " + AuthCookie + " cookie")

	// ErrNoHost is returned if no appliance address is configured.
	ErrNoHost = errors.New("no host given")
)

// Config contains everything required to talk to an appliance.
type Config struct {
	// Host is the appliance address, either a plain host[:port] or a full base url.
	Host     string
	Username string
	Password string

	// Scheme is used for plain hosts, defaults to https.
	Scheme        string
	Insecure      bool
	TLSMinVersion string
	Timeout       time.Duration
}

// Client talks to a single appliance.
type Client struct {
	config  Config
	baseURL *url.URL
	http    *http.Client
}

// NewClient creates a client from given config.
func NewClient(config Config) (*Client, error) {
	base, err := baseURL(config)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: config.Insecure, //nolint:gosec // appliances often use self signed certificates, opt-in only
		MinVersion:         tls.VersionTLS12,
	}
	if config.TLSMinVersion != "" {
		minVersion, err := utils.ParseTLSMinVersion(config.TLSMinVersion)
		if err != nil {
			return nil, fmt.Errorf("tls min version: %s", err.Error())
		}
		if minVersion > 0 {
			tlsConfig.MinVersion = minVersion
		}
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &Client{
		config:  config,
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: tlsConfig,
				DialContext: (&net.Dialer{
					Timeout: timeout,
				}).DialContext,
				ResponseHeaderTimeout: timeout,
				TLSHandshakeTimeout:   timeout,
				IdleConnTimeout:       timeout,
			},
		},
	}

	return client, nil
}

// BaseURL returns the appliance base url.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func baseURL(config Config) (*url.URL, error) {
	host := strings.TrimSpace(config.Host)
	if host == "" {
		return nil, ErrNoHost
	}
	if !strings.Contains(host, "://") {
		scheme := config.Scheme
		if scheme == "" {
			scheme = "https"
		}
		host = scheme + "://" + host
	}

	base, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid host %s: %s", config.Host, err.Error())
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid host %s: %w", config.Host, ErrNoHost)
	}

	return base, nil
}

func (c *Client) url(path string) string {
	return c.baseURL.String() + apiPrefix + strings.TrimPrefix(path, "/")
}

// Login authenticates and returns a new session.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	payload := map[string]interface{}{
		"login": map[string]string{
			"username": c.config.Username,
			"password": c.config.Password,
		},
	}

	resp, err := c.do(ctx, http.MethodPost, "config/login/", loginContentType, payload, "")
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == AuthCookie && cookie.Value != "" {
			log.Debugf("logged into %s as %s", c.baseURL.Host, c.config.Username)

			return &Session{client: c, token: cookie.Value}, nil
		}
	}

	return nil, fmt.Errorf("login failed: %w", ErrNoToken)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, payload interface{}, token string) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("json encode: %s", err.Error())
		}
		body = bytes.NewReader(data)
	}

	reqURL := c.url(path)
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %s", err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: AuthCookie, Value: token})
	}

	log.Tracef("http %s %s", method, reqURL)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http %s %s: %w", method, reqURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		return nil, newHTTPError(method, reqURL, resp)
	}

	return resp, nil
}
