package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// ResourceDirProvider returns the directory the application installer placed bundled resources in.
// Hosts with their own resource lookup implement it; the core only consumes the result.
type ResourceDirProvider interface {
	ResourceDir() (string, error)
}

// ResourceDirFunc adapts a function to ResourceDirProvider
type ResourceDirFunc func() (string, error)

// ResourceDir implements ResourceDirProvider
func (f ResourceDirFunc) ResourceDir() (string, error) {
	return f()
}

// StaticResourceDir is a provider for a directory known up front (flag, config file)
type StaticResourceDir string

// ResourceDir implements ResourceDirProvider
func (d StaticResourceDir) ResourceDir() (string, error) {
	if d == "" {
		return "", errors.New("resource directory not configured")
	}
	return string(d), nil
}

// ExecutableResourceDir locates resources next to the running executable.
// Inside a macOS bundle (<App>.app/Contents/MacOS) resources live in Contents/Resources.
type ExecutableResourceDir struct{}

// ResourceDir implements ResourceDirProvider
func (ExecutableResourceDir) ResourceDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return bundleResourceDir(filepath.Dir(exe), runtime.GOOS), nil
}

func bundleResourceDir(exeDir, goos string) string {
	if goos != "darwin" {
		return exeDir
	}
	if filepath.Base(exeDir) == "MacOS" && filepath.Base(filepath.Dir(exeDir)) == "Contents" {
		return filepath.Join(filepath.Dir(exeDir), "Resources")
	}
	return exeDir
}
