package nitro_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/biola/nagios-plugins/pkg/nitro"
	"github.com/biola/nagios-plugins/pkg/nitro/nitrotest"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, srv *nitrotest.Server, username, password string) *nitro.Client {
	t.Helper()

	client, err := nitro.NewClient(nitro.Config{
		Host:     srv.URL,
		Username: username,
		Password: password,
		Timeout:  5 * time.Second,
	})
	require.NoErrorf(t, err, "client created")

	return client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		cfg  nitro.Config
		base string
		err  bool
	}{
		{nitro.Config{Host: "ns1.example.com"}, "https://ns1.example.com", false},
		{nitro.Config{Host: "ns1.example.com:8443"}, "https://ns1.example.com:8443", false},
		{nitro.Config{Host: "ns1", Scheme: "http"}, "http://ns1", false},
		{nitro.Config{Host: "http://127.0.0.1:8080/"}, "http://127.0.0.1:8080", false},
		{nitro.Config{Host: ""}, "", true},
		{nitro.Config{Host: "ns1", TLSMinVersion: "ssl3"}, "", true},
		{nitro.Config{Host: "ns1", TLSMinVersion: "tls1.3"}, "https://ns1", false},
	}

	for _, tst := range tests {
		client, err := nitro.NewClient(tst.cfg)
		if tst.err {
			assert.Errorf(t, err, "NewClient(%#v) fails", tst.cfg)

			continue
		}
		require.NoErrorf(t, err, "NewClient(%#v)", tst.cfg)
		assert.Equalf(t, tst.base, client.BaseURL(), "base url for %#v", tst.cfg)
	}

	_, err := nitro.NewClient(nitro.Config{})
	assert.ErrorIs(t, err, nitro.ErrNoHost)
}

func TestLoginLogout(t *testing.T) {
	srv := nitrotest.NewServer(t)
	client := newClient(t, srv, nitrotest.Username, nitrotest.Password)

	srv.Documents["stat/systemmemory"] = nitrotest.SystemMemory("42")
	session, err := client.Login(context.TODO())
	require.NoErrorf(t, err, "login works")
	require.NoErrorf(t, session.GetJSON(context.TODO(), "stat/systemmemory", &struct{}{}), "token from cookie accepted")
	assert.Truef(t, srv.SessionOpen(), "session open")

	require.NoErrorf(t, session.Logout(context.TODO()), "logout works")
	assert.Falsef(t, srv.SessionOpen(), "session closed")
	assert.Equalf(t, 1, srv.Logouts(), "one logout")

	// second logout is a no-op
	require.NoErrorf(t, session.Logout(context.TODO()), "logout twice")
	assert.Equalf(t, 1, srv.Logouts(), "still one logout")

	err = session.GetJSON(context.TODO(), "stat/systemcpu", &struct{}{})
	assert.ErrorIs(t, err, nitro.ErrSessionClosed)
}

func TestLoginFailures(t *testing.T) {
	srv := nitrotest.NewServer(t)

	_, err := newClient(t, srv, nitrotest.Username, "wrong").Login(context.TODO())
	require.Errorf(t, err, "wrong password fails")

	var httpErr *nitro.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	var apiErr *nitro.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 354, apiErr.ErrorCode)
	assert.Contains(t, err.Error(), "Invalid username or password")

	srv.OmitCookie = true
	_, err = newClient(t, srv, nitrotest.Username, nitrotest.Password).Login(context.TODO())
	assert.ErrorIs(t, err, nitro.ErrNoToken)
}

func TestEmptyCPUTable(t *testing.T) {
	srv := nitrotest.NewServer(t)
	srv.Documents["stat/systemcpu"] = nitrotest.Empty("systemcpu")

	client := newClient(t, srv, nitrotest.Username, nitrotest.Password)
	err := nitro.WithSession(context.TODO(), client, func(session *nitro.Session) error {
		cpus, err := session.SystemCPUs(context.TODO())
		require.NoErrorf(t, err, "empty cpu table is no error")
		assert.Empty(t, cpus)

		return nil
	})
	require.NoError(t, err)
}

func TestTypedDocuments(t *testing.T) {
	srv := nitrotest.NewServer(t)
	srv.Documents["stat/systemcpu"] = nitrotest.SystemCPU("12", "80")
	srv.Documents["stat/systemmemory"] = nitrotest.SystemMemory("42")
	srv.Documents["stat/hanode"] = nitrotest.HANode("YES", "UP", "Primary", "Mon Oct  6 10:02:12 2025")
	srv.Documents["stat/lbvserver/vs_web"] = nitrotest.LBVServer("vs_web", "75")
	srv.Documents["stat/lbvserver/vs_gone"] = nitrotest.Empty("lbvserver")

	client := newClient(t, srv, nitrotest.Username, nitrotest.Password)
	err := nitro.WithSession(context.TODO(), client, func(session *nitro.Session) error {
		cpus, err := session.SystemCPUs(context.TODO())
		require.NoError(t, err)
		require.Len(t, cpus, 2)
		assert.Equal(t, "0", cpus[0].ID.String())
		assert.Equal(t, int64(80), cpus[1].PerCPUUse.Int64("percpuuse"))

		mem, err := session.SystemMemory(context.TODO())
		require.NoError(t, err)
		assert.Equal(t, int64(42), mem.MemUsagePcnt.Int64("memusagepcnt"))

		node, err := session.HANode(context.TODO())
		require.NoError(t, err)
		assert.True(t, node.Configured())
		assert.True(t, node.Up())
		assert.Equal(t, "Primary", node.HACurMasterState)

		vserver, err := session.LBVServer(context.TODO(), "vs_web")
		require.NoError(t, err)
		assert.Equal(t, "vs_web", vserver.Name)
		assert.Equal(t, "75", vserver.VSLBHealth.String())

		_, err = session.LBVServer(context.TODO(), "vs_gone")
		assert.ErrorIs(t, err, nitro.ErrVServerNotFound)

		_, err = session.LBVServer(context.TODO(), "vs_missing")
		var httpErr *nitro.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"stat/systemcpu",
		"stat/systemmemory",
		"stat/hanode",
		"stat/lbvserver/vs_web",
		"stat/lbvserver/vs_gone",
		"stat/lbvserver/vs_missing",
	}, srv.Requests())
}

func TestWithSessionReleases(t *testing.T) {
	srv := nitrotest.NewServer(t)
	client := newClient(t, srv, nitrotest.Username, nitrotest.Password)

	// success path
	err := nitro.WithSession(context.TODO(), client, func(_ *nitro.Session) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Logins())
	assert.Equal(t, 1, srv.Logouts())

	// failing fetch
	srv.Status["stat/systemmemory"] = http.StatusInternalServerError
	err = nitro.WithSession(context.TODO(), client, func(session *nitro.Session) error {
		_, err := session.SystemMemory(context.TODO())

		return err
	})
	require.Error(t, err)
	assert.Equal(t, 2, srv.Logouts())

	// error from the callback is passed through
	errTest := errors.New("test error")
	err = nitro.WithSession(context.TODO(), client, func(_ *nitro.Session) error { return errTest })
	require.ErrorIs(t, err, errTest)
	assert.Equal(t, 3, srv.Logouts())
	assert.False(t, srv.SessionOpen())

	// failed login never creates a session
	err = nitro.WithSession(context.TODO(), newClient(t, srv, "nobody", "x"), func(_ *nitro.Session) error {
		t.Fatal("callback must not run without session")

		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 3, srv.Logins())
	assert.Equal(t, 3, srv.Logouts())
}

func TestWithSessionCanceledContext(t *testing.T) {
	srv := nitrotest.NewServer(t)
	client := newClient(t, srv, nitrotest.Username, nitrotest.Password)

	ctx, cancel := context.WithCancel(context.Background())
	err := nitro.WithSession(ctx, client, func(session *nitro.Session) error {
		cancel()
		_, err := session.SystemCPUs(ctx)

		return err
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equalf(t, 1, srv.Logouts(), "logout runs even if context got canceled")
}

func TestValueDecoding(t *testing.T) {
	tests := []struct {
		in    string
		raw   string
		num   int64
		fails bool
	}{
		{`"12"`, "12", 12, false},
		{`12`, "12", 12, false},
		{`12.5`, "12.5", 12, false},
		{`"42%"`, "42%", 42, false},
		{`"abc"`, "abc", 0, false},
		{`null`, "", 0, false},
		{`true`, "", 0, true},
		{`{}`, "", 0, true},
	}

	for _, tst := range tests {
		var val nitro.Value
		err := json.Unmarshal([]byte(tst.in), &val)
		if tst.fails {
			assert.Errorf(t, err, "decoding %s fails", tst.in)

			continue
		}
		require.NoErrorf(t, err, "decoding %s", tst.in)
		assert.Equalf(t, tst.raw, val.String(), "raw value of %s", tst.in)
		assert.Equalf(t, tst.num, val.Int64("test"), "numeric value of %s", tst.in)
	}
}
