package build

import (
	"fmt"
	"os"
	"path/filepath"
)

// CacheEnvVar relocates the cache, e.g. onto a CI volume.
const CacheEnvVar = "CRASHPAD_CACHE_DIR"

// okMarker is written after a successful build or download; its
// presence makes re-runs a no-op.
const okMarker = ".crashpad-ok"

// CacheDir returns the root of the shared cache: CRASHPAD_CACHE_DIR if
// set, otherwise the user cache directory plus "crashpad-go".
func CacheDir() (string, error) {
	if dir := os.Getenv(CacheEnvVar); dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("no cache directory available: %v", err)
	}
	return filepath.Join(base, "crashpad-go"), nil
}

// ToolsDir holds the GN and Ninja binaries for a build host.
func ToolsDir(host Platform) (string, error) {
	root, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "tools", host.String()), nil
}

// SourceDir holds the Crashpad checkout (one per revision).
func SourceDir(revision string) (string, error) {
	root, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "src", revision), nil
}

// PrebuiltDir holds an extracted prebuilt archive.
func PrebuiltDir(version string, p Platform) (string, error) {
	root, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "prebuilt", version, p.String()), nil
}

// markOK records a completed build or download under dir.
func markOK(dir string) error {
	return os.WriteFile(filepath.Join(dir, okMarker), []byte{}, 0o644)
}

// isOK reports whether dir carries a completion marker.
func isOK(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, okMarker))
	return err == nil
}
