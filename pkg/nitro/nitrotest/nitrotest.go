// Package nitrotest provides a fake NITRO appliance for tests.
package nitrotest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

const (
	// Username and Password are accepted by default.
	Username = "nsroot"
	Password = "secret"

	// Token is the session cookie handed out on login.
	Token = "##0123456789ABCDEF"

	authCookie = "NITRO_AUTH_TOKEN"
)

// Server is a fake appliance serving canned stat documents.
type Server struct {
	*httptest.Server

	// Documents maps a resource path below /nitro/v1/ (ex.: stat/systemcpu) to its response document.
	Documents map[string]interface{}

	// Status overrides the http status for a resource path.
	Status map[string]int

	// LoginStatus overrides the http status of the login call.
	LoginStatus int

	// OmitCookie makes the login call succeed without a session cookie.
	OmitCookie bool

	mu       sync.Mutex
	logins   int
	logouts  int
	requests []string
	active   bool
}

// NewServer starts a new fake appliance which is closed on test cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()

	srv := &Server{
		Documents: make(map[string]interface{}),
		Status:    make(map[string]int),
	}

	router := chi.NewRouter()
	router.Use(middleware.StripSlashes)
	router.Post("/nitro/v1/config/login", srv.handleLogin)
	router.Group(func(r chi.Router) {
		r.Use(srv.requireSession)
		r.Post("/nitro/v1/config/logout", srv.handleLogout)
		r.Get("/nitro/v1/*", srv.handleGet)
	})

	srv.Server = httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

// Logins returns the number of successful logins.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logins
}

// Logouts returns the number of logouts.
func (s *Server) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.logouts
}

// SessionOpen returns true if a session was created and not logged out yet.
func (s *Server) SessionOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// Requests returns all resource paths fetched so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.requests...)
}

func (s *Server) handleLogin(res http.ResponseWriter, req *http.Request) {
	if s.LoginStatus != 0 {
		writeError(res, s.LoginStatus, 354, "Invalid username or password")

		return
	}
	if ct := req.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/vnd.com.citrix.netscaler.login+json") {
		writeError(res, http.StatusUnsupportedMediaType, 1242, "Invalid content type "+ct)

		return
	}

	payload := struct {
		Login struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"login"`
	}{}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(res, http.StatusBadRequest, 1240, "Invalid JSON input")

		return
	}
	if payload.Login.Username != Username || payload.Login.Password != Password {
		writeError(res, http.StatusUnauthorized, 354, "Invalid username or password")

		return
	}

	s.mu.Lock()
	s.logins++
	s.active = true
	s.mu.Unlock()

	if !s.OmitCookie {
		http.SetCookie(res, &http.Cookie{Name: authCookie, Value: Token, Path: "/nitro/v1"})
	}
	writeJSON(res, http.StatusCreated, map[string]interface{}{
		"errorcode": 0,
		"message":   "Done",
		"severity":  "NONE",
		"sessionid": Token,
	})
}

func (s *Server) handleLogout(res http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.logouts++
	s.active = false
	s.mu.Unlock()

	writeJSON(res, http.StatusCreated, map[string]interface{}{"errorcode": 0, "message": "Done", "severity": "NONE"})
}

func (s *Server) handleGet(res http.ResponseWriter, req *http.Request) {
	path := chi.URLParam(req, "*")

	s.mu.Lock()
	s.requests = append(s.requests, path)
	s.mu.Unlock()

	if status, ok := s.Status[path]; ok {
		writeError(res, status, 1, http.StatusText(status))

		return
	}

	doc, ok := s.Documents[path]
	if !ok {
		writeError(res, http.StatusNotFound, 258, "No such resource ["+path+"]")

		return
	}

	writeJSON(res, http.StatusOK, doc)
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie(authCookie)
		if err != nil || cookie.Value != Token {
			writeError(res, http.StatusUnauthorized, 444, "Session expired or killed. Please login again")

			return
		}
		next.ServeHTTP(res, req)
	})
}

func writeError(res http.ResponseWriter, status, code int, message string) {
	writeJSON(res, status, map[string]interface{}{
		"errorcode": code,
		"message":   message,
		"severity":  "ERROR",
	})
}

func writeJSON(res http.ResponseWriter, status int, doc interface{}) {
	res.Header().Set("Content-Type", "application/json; charset=utf-8")
	res.WriteHeader(status)
	_ = json.NewEncoder(res).Encode(doc)
}
