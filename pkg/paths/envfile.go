package paths

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultHTTPPort is the port the backend listens on when HTTP_PORT is unset
const DefaultHTTPPort = 7095

// ErrConfigMissing is returned when the optional backend environment file does not exist
var ErrConfigMissing = errors.New("backend config file not found")

// BackendEnv is the parsed content of the backend environment file
type BackendEnv map[string]string

// ReadBackendEnv parses the env file at path without touching the process environment.
// A missing file yields ErrConfigMissing; the backend runs with defaults in that case.
func ReadBackendEnv(path string) (BackendEnv, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return BackendEnv{}, ErrConfigMissing
		}
		return nil, fmt.Errorf("stat backend config: %w", err)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("parse backend config %s: %w", path, err)
	}
	return BackendEnv(values), nil
}

// HTTPPort returns the port the backend will listen on
func (e BackendEnv) HTTPPort() (int, error) {
	raw := strings.TrimSpace(e["HTTP_PORT"])
	if raw == "" {
		return DefaultHTTPPort, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid HTTP_PORT %q in backend config", raw)
	}
	return port, nil
}
