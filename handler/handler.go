// Package handler locates and bundles the crashpad_handler executable.
//
// The handler is produced by crashpad-build, not by this module's Go
// code. Consumers either point CRASHPAD_HANDLER at it, ship it next to
// their binary with Bundle, or rely on Locate's search order at
// runtime.
package handler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// EnvVar overrides every other discovery mechanism when set.
const EnvVar = "CRASHPAD_HANDLER"

// Basename returns the handler executable name for the current
// platform. Android uses a shared-library name so APK packaging picks
// the handler up from jniLibs.
func Basename() string {
	return BasenameFor(runtime.GOOS)
}

// BasenameFor returns the handler executable name for the given GOOS.
func BasenameFor(goos string) string {
	switch goos {
	case "windows":
		return "crashpad_handler.exe"
	case "android":
		return "libcrashpad_handler.so"
	default:
		return "crashpad_handler"
	}
}

// Locate finds the handler executable.
//
// Search order: the CRASHPAD_HANDLER environment variable (must point
// at an existing file), the directory containing the running
// executable, the dist/bin directory crashpad-build installs into,
// then the current working directory.
func Locate() (string, error) {
	if path := os.Getenv(EnvVar); path != "" {
		if fileExists(path) {
			return path, nil
		}
	}

	name := Basename()

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), name)
		if fileExists(candidate) {
			return candidate, nil
		}
	}

	if candidate := filepath.Join("dist", "bin", name); fileExists(candidate) {
		return candidate, nil
	}

	if fileExists(name) {
		return name, nil
	}

	return "", fmt.Errorf("%s not found: set %s or place it next to the executable", name, EnvVar)
}

// Bundle copies the handler into destDir so it ships alongside a
// consumer binary. The source is CRASHPAD_HANDLER if set, otherwise
// whatever Locate finds. Returns the installed path.
func Bundle(destDir string) (string, error) {
	src, err := Locate()
	if err != nil {
		return "", err
	}
	return BundleFrom(src, destDir)
}

// BundleFrom copies the handler at src into destDir.
func BundleFrom(src, destDir string) (string, error) {
	if err := validateSource(src); err != nil {
		return "", err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	dest := filepath.Join(destDir, Basename())
	if err := copyAtomic(src, dest); err != nil {
		return "", fmt.Errorf("bundle handler: %w", err)
	}
	if err := setExecutable(dest); err != nil {
		return "", err
	}
	return dest, nil
}

func validateSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("handler source %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("handler source %s is a directory", src)
	}
	return nil
}

// copyAtomic writes to a temp file in the destination directory and
// renames it into place, so a concurrent build never sees a truncated
// handler.
func copyAtomic(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".handler-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func setExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, 0o755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
