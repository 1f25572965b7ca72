package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args against a fresh HOME and returns stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeStreams(t, args...)
	return out, err
}

// executeStreams is execute that also returns stderr
func executeStreams(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	invokeList = false
	healthWait = 0
	pathsJSON = false
	cfgFile = ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// pointAt configures the CLI to talk to srv in development mode
func pointAt(t *testing.T, srv *httptest.Server) {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	t.Setenv("HYPERSHELL_MODE", "development")
	t.Setenv("HYPERSHELL_BACKEND_HOST", u.Hostname())
	t.Setenv("HYPERSHELL_BACKEND_PORT", u.Port())
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "startup_timeout: 30s")
	assert.Contains(t, out, "grace_period: 10s")
}

func TestInvokeCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mcp/tools/call", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"h1"}`))
	}))
	defer srv.Close()
	pointAt(t, srv)

	out, err := execute(t, "invoke", "create_human_task", `{"prompt":"ship it"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "h1"`)
}

func TestInvokeCommand_Unknown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	pointAt(t, srv)

	_, err := execute(t, "invoke", "reboot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_COMMAND")
}

func TestInvokeCommand_List(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	pointAt(t, srv)

	out, err := execute(t, "invoke", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "query_knowledge")
	assert.Contains(t, out, "get_server_url")
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	pointAt(t, srv)

	out, err := execute(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend is healthy")
}

func TestHealthCommand_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	pointAt(t, srv)

	_, err := execute(t, "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Server returned status: 500")
}

func TestPathsCommand_JSON(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	pointAt(t, srv)

	out, err := execute(t, "paths", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"binaryPath"`)
	assert.Contains(t, out, `"mode": "development"`)
}

func TestPathsCommand_WarnsWhenBackendMissing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	pointAt(t, srv)

	workdir := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.Mkdir(workdir, 0o755))
	prevDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workdir))
	t.Cleanup(func() { _ = os.Chdir(prevDir) })

	out, stderr, err := executeStreams(t, "paths")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend paths")
	assert.Contains(t, stderr, "Backend binary not found")
	assert.Contains(t, stderr, "Backend config not found")
}
