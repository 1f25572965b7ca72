package shell

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperion/hypershell/pkg/config"
	"github.com/hyperion/hypershell/pkg/health"
	"github.com/hyperion/hypershell/pkg/paths"
	"github.com/hyperion/hypershell/pkg/shellerr"
	"github.com/hyperion/hypershell/pkg/supervisor"
)

type fakeProcess struct {
	once   sync.Once
	exited chan struct{}
}

func (p *fakeProcess) Pid() int         { return 555 }
func (p *fakeProcess) Terminate() error { p.once.Do(func() { close(p.exited) }); return nil }
func (p *fakeProcess) Kill() error      { return p.Terminate() }
func (p *fakeProcess) Wait() error      { <-p.exited; return nil }

type fakeSpawner struct {
	mu    sync.Mutex
	calls int
	proc  *fakeProcess
}

func (s *fakeSpawner) Spawn(ctx context.Context, binary string, args []string, stdout, stderr io.Writer) (supervisor.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.proc = &fakeProcess{exited: make(chan struct{})}
	return s.proc, nil
}

func (s *fakeSpawner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testConfig(resourceDir string) *config.Config {
	return &config.Config{
		Mode:        "packaged",
		ResourceDir: resourceDir,
		Backend: config.BackendConfig{
			Host:           "127.0.0.1",
			StartupTimeout: 2 * time.Second,
		},
		Supervisor: config.SupervisorConfig{GracePeriod: time.Second},
		Log:        config.LogConfig{Level: "info", Format: "text"},
	}
}

// resourceDirFor lays out a packaged resource directory whose env file points at srv
func resourceDirFor(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, paths.BinaryName(runtime.GOOS)), []byte("bin"), 0o755))

	if srv != nil {
		u, err := url.Parse(srv.URL)
		require.NoError(t, err)
		env := fmt.Sprintf("HTTP_PORT=%s\n", u.Port())
		require.NoError(t, os.WriteFile(filepath.Join(dir, paths.ConfigFileName), []byte(env), 0o644))
	}
	return dir
}

func newTestApp(t *testing.T, cfg *config.Config, spawner *fakeSpawner) *App {
	t.Helper()
	app, err := New(cfg,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithSpawner(spawner),
		WithWaitOptions(health.WaitOptions{InitialDelay: 5 * time.Millisecond, MaxDelay: 20 * time.Millisecond}),
	)
	require.NoError(t, err)
	return app
}

func TestApp_PackagedSetupAndExit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	spawner := &fakeSpawner{}
	app := newTestApp(t, testConfig(resourceDirFor(t, srv)), spawner)

	assert.Equal(t, srv.URL, app.BaseURL(), "port comes from the backend env file")

	require.NoError(t, app.Setup(context.Background()))
	assert.Equal(t, 1, spawner.count())
	assert.True(t, app.Supervisor().Running())

	require.NoError(t, app.Exit(context.Background()))
	require.NoError(t, app.Exit(context.Background()))
	assert.Equal(t, supervisor.StateStopped, app.Supervisor().State())
}

func TestApp_SetupFailsWhenBackendNeverHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(resourceDirFor(t, srv))
	cfg.Backend.StartupTimeout = 100 * time.Millisecond

	app := newTestApp(t, cfg, &fakeSpawner{})

	err := app.Setup(context.Background())
	require.Error(t, err)
	assert.True(t, shellerr.IsCode(err, shellerr.CodeUnhealthy))
	assert.False(t, app.Supervisor().Running(), "backend is stopped so it is not orphaned")
}

func TestApp_SetupMissingBinary(t *testing.T) {
	spawner := &fakeSpawner{}
	app := newTestApp(t, testConfig(t.TempDir()), spawner)

	err := app.Setup(context.Background())
	require.Error(t, err)
	assert.True(t, shellerr.IsCode(err, shellerr.CodeBinaryNotFound))
	assert.Equal(t, 0, spawner.count())
}

func TestApp_DevelopmentModeDoesNotSpawn(t *testing.T) {
	cfg := testConfig("")
	cfg.Mode = "development"
	spawner := &fakeSpawner{}
	app := newTestApp(t, cfg, spawner)

	require.NoError(t, app.Setup(context.Background()))
	assert.Equal(t, 0, spawner.count())
	require.NoError(t, app.Exit(context.Background()))
}

func TestApp_ConfiguredPortWins(t *testing.T) {
	cfg := testConfig(resourceDirFor(t, nil))
	cfg.Backend.Port = 8123
	app := newTestApp(t, cfg, &fakeSpawner{})

	assert.Equal(t, "http://127.0.0.1:8123", app.BaseURL())
}

func TestApp_DefaultPortWithoutEnvFile(t *testing.T) {
	app := newTestApp(t, testConfig(resourceDirFor(t, nil)), &fakeSpawner{})
	assert.Equal(t, "http://127.0.0.1:7095", app.BaseURL())
}

func TestApp_InvokeForwardsToBackend(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{"id":"h1"}`)
	}))
	defer srv.Close()

	app := newTestApp(t, testConfig(resourceDirFor(t, srv)), &fakeSpawner{})

	result, err := app.Invoke(context.Background(), "create_human_task", json.RawMessage(`{"prompt":"ship it"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "h1"}, result)
	assert.JSONEq(t, `{"name":"coordinator_create_human_task","arguments":{"prompt":"ship it"}}`, string(body))

	serverURL, err := app.Invoke(context.Background(), "get_server_url", nil)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/ui", serverURL)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("")
	cfg.Mode = "staging"
	_, err := New(cfg)
	assert.Error(t, err)
}
