// Package paths computes where the backend binary and its optional environment file live.
//
// Resolution depends only on the Mode and the environment (working directory or resource
// directory); nothing is cached, so repeated calls return identical results until the
// environment changes.
package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hyperion/hypershell/pkg/shellerr"
)

const (
	// BinaryBaseName is the backend executable name without platform suffix
	BinaryBaseName = "hyper"

	// ConfigFileName is the environment file the backend discovers on its own
	ConfigFileName = ".env.hyper"

	// DevBinDir is the checkout directory holding development builds
	DevBinDir = "bin"
)

// ResolvedPaths holds the backend locations for one resolution
type ResolvedPaths struct {
	BinaryPath string `json:"binaryPath" yaml:"binary_path"`
	ConfigPath string `json:"configPath" yaml:"config_path"`
	Mode       Mode   `json:"mode" yaml:"mode"`
}

// Resolver resolves backend paths against an environment
type Resolver struct {
	// Getwd returns the current working directory
	Getwd func() (string, error)

	// GOOS selects the platform binary suffix
	GOOS string
}

// NewResolver creates a resolver bound to the real process environment
func NewResolver() *Resolver {
	return &Resolver{
		Getwd: os.Getwd,
		GOOS:  runtime.GOOS,
	}
}

// BinaryName returns the platform-suffixed backend executable name
func BinaryName(goos string) string {
	if goos == "windows" {
		return BinaryBaseName + ".exe"
	}
	return BinaryBaseName
}

// BinaryPath resolves the backend executable location
func (r *Resolver) BinaryPath(mode Mode, provider ResourceDirProvider) (string, error) {
	dir, err := r.baseDir(mode, provider, "backend binary path")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, BinaryName(r.GOOS)), nil
}

// ConfigPath resolves the optional backend environment file location
func (r *Resolver) ConfigPath(mode Mode, provider ResourceDirProvider) (string, error) {
	dir, err := r.baseDir(mode, provider, "backend config path")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Resolve computes both paths for the given mode
func (r *Resolver) Resolve(mode Mode, provider ResourceDirProvider) (ResolvedPaths, error) {
	binary, err := r.BinaryPath(mode, provider)
	if err != nil {
		return ResolvedPaths{}, err
	}
	config, err := r.ConfigPath(mode, provider)
	if err != nil {
		return ResolvedPaths{}, err
	}
	return ResolvedPaths{
		BinaryPath: binary,
		ConfigPath: config,
		Mode:       mode,
	}, nil
}

// baseDir returns <parent-of-cwd>/bin in development and the resource directory when packaged
func (r *Resolver) baseDir(mode Mode, provider ResourceDirProvider, what string) (string, error) {
	switch mode {
	case ModeDevelopment:
		getwd := r.Getwd
		if getwd == nil {
			getwd = os.Getwd
		}
		cwd, err := getwd()
		if err != nil {
			return "", shellerr.ErrNotResolvable(what, err).
				WithContext("mode", mode.String())
		}
		return filepath.Join(filepath.Dir(filepath.Clean(cwd)), DevBinDir), nil

	case ModePackaged:
		if provider == nil {
			return "", shellerr.ErrNotResolvable(what, errors.New("no resource directory provider")).
				WithContext("mode", mode.String())
		}
		dir, err := provider.ResourceDir()
		if err != nil {
			return "", shellerr.ErrNotResolvable(what, err).
				WithContext("mode", mode.String()).
				WithSuggestion("Verify the application bundle contains its resource directory")
		}
		return dir, nil

	default:
		return "", shellerr.ErrNotResolvable(what, errors.New("unknown mode")).
			WithContext("mode", int(mode))
	}
}

// ResolveBinaryPath resolves the backend executable against the process environment
func ResolveBinaryPath(mode Mode, provider ResourceDirProvider) (string, error) {
	return NewResolver().BinaryPath(mode, provider)
}

// ResolveConfigPath resolves the backend environment file against the process environment
func ResolveConfigPath(mode Mode, provider ResourceDirProvider) (string, error) {
	return NewResolver().ConfigPath(mode, provider)
}

// Resolve computes both paths against the process environment
func Resolve(mode Mode, provider ResourceDirProvider) (ResolvedPaths, error) {
	return NewResolver().Resolve(mode, provider)
}
