package check_netscaler_vserver

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/biola/nagios-plugins/pkg/nitro/nitrotest"
	"github.com/stretchr/testify/assert"
)

func runCheck(t *testing.T, args ...string) (string, int) {
	t.Helper()

	output := &bytes.Buffer{}
	rc := Check(context.TODO(), output, args)

	return output.String(), rc
}

func TestCheckVServer(t *testing.T) {
	tests := []struct {
		health string
		extra  []string
		rc     int
		output string
	}{
		{"100", nil, 0, "OK: 100% of service bindings are available |'health'=100%;50;0;0;100\n"},
		{"51", nil, 0, "OK: 51% of service bindings are available |'health'=51%;50;0;0;100\n"},
		{"50", nil, 1, "WARNING: 50% of service bindings are available |'health'=50%;50;0;0;100\n"},
		{"25", nil, 1, "WARNING: 25% of service bindings are available |'health'=25%;50;0;0;100\n"},
		{"1", nil, 1, "WARNING: 1% of service bindings are available |'health'=1%;50;0;0;100\n"},
		{"0", nil, 2, "CRITICAL: 0% of service bindings are available |'health'=0%;50;0;0;100\n"},
		{"", nil, 2, "CRITICAL: % of service bindings are available |'health'=0%;50;0;0;100\n"},
		{"70", []string{"-w", "80", "-c", "70"}, 2, "CRITICAL: 70% of service bindings are available |'health'=70%;80;70;0;100\n"},
	}

	for _, tst := range tests {
		srv := nitrotest.NewServer(t)
		srv.Documents["stat/lbvserver/vs_web"] = nitrotest.LBVServer("vs_web", tst.health)

		args := []string{"-H", srv.URL, "-u", nitrotest.Username, "-p", nitrotest.Password, "-v", "vs_web"}
		output, rc := runCheck(t, append(args, tst.extra...)...)
		assert.Equalf(t, tst.rc, rc, "exit code for health %q", tst.health)
		assert.Equalf(t, tst.output, output, "output for health %q", tst.health)
		assert.Equalf(t, 1, srv.Logouts(), "session released")
		assert.Falsef(t, srv.SessionOpen(), "no session left open")
	}
}

func TestCheckVServerErrors(t *testing.T) {
	srv := nitrotest.NewServer(t)
	srv.Documents["stat/lbvserver/vs_empty"] = nitrotest.Empty("lbvserver")
	srv.Status["stat/lbvserver/vs_broken"] = http.StatusInternalServerError

	args := []string{"-H", srv.URL, "-u", nitrotest.Username, "-p", nitrotest.Password}

	output, rc := runCheck(t, append(args, "-v", "vs_empty")...)
	assert.Equal(t, 3, rc)
	assert.Equal(t, "UNKNOWN: vs_empty: vserver not found\n", output)

	output, rc = runCheck(t, append(args, "-v", "vs_broken")...)
	assert.Equal(t, 3, rc)
	assert.Contains(t, output, "500 Internal Server Error")

	output, rc = runCheck(t, append(args, "-v", "vs_unknown")...)
	assert.Equal(t, 3, rc)
	assert.Contains(t, output, "No such resource")

	assert.Equal(t, 3, srv.Logins())
	assert.Equal(t, 3, srv.Logouts())
}

func TestCheckVServerUsage(t *testing.T) {
	output, rc := runCheck(t, "-H", "ns1", "-u", "user", "-p", "pass")
	assert.Equal(t, 3, rc)
	assert.Contains(t, output, "Missing options: vserver")

	output, rc = runCheck(t, "-H", "ns1", "-u", "user", "-p", "pass", "-v", "vs", "--tls-min-version", "ssl3")
	assert.Equal(t, 3, rc)
	assert.Contains(t, output, "cannot parse ssl3")

	output, rc = runCheck(t, "--unknown")
	assert.Equal(t, 3, rc)
	assert.Contains(t, output, "unknown flag `unknown'")
}
