package handler

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestBasenameFor(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"linux", "crashpad_handler"},
		{"darwin", "crashpad_handler"},
		{"ios", "crashpad_handler"},
		{"windows", "crashpad_handler.exe"},
		{"android", "libcrashpad_handler.so"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			if got := BasenameFor(tt.goos); got != tt.want {
				t.Errorf("BasenameFor(%q) = %q, want %q", tt.goos, got, tt.want)
			}
		})
	}
}

func TestLocateEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my-handler")
	if err := os.WriteFile(path, []byte("handler"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVar, path)

	got, err := Locate()
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if got != path {
		t.Errorf("Locate() = %q, want %q", got, path)
	}
}

func TestLocateEnvPointsAtMissingFile(t *testing.T) {
	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "nope"))
	t.Chdir(t.TempDir())

	// A dangling override falls through to the other locations; with
	// nothing there either, Locate fails with an actionable message.
	if _, err := Locate(); err == nil {
		t.Error("Locate should fail when the handler is nowhere to be found")
	}
}

func TestLocateCurrentDirectory(t *testing.T) {
	t.Setenv(EnvVar, "")
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(Basename(), []byte("handler"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Locate()
	if err != nil {
		t.Fatalf("Locate error: %v", err)
	}
	if got != Basename() {
		t.Errorf("Locate() = %q, want %q", got, Basename())
	}
}

func TestBundleFrom(t *testing.T) {
	src := filepath.Join(t.TempDir(), "crashpad_handler")
	if err := os.WriteFile(src, []byte("handler-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	destDir := filepath.Join(t.TempDir(), "nested", "bin")
	installed, err := BundleFrom(src, destDir)
	if err != nil {
		t.Fatalf("BundleFrom error: %v", err)
	}
	if installed != filepath.Join(destDir, Basename()) {
		t.Errorf("installed path = %q", installed)
	}

	data, err := os.ReadFile(installed)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "handler-bytes" {
		t.Errorf("bundled content = %q", data)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(installed)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o755 {
			t.Errorf("bundled handler mode = %v, want 0755", info.Mode().Perm())
		}
	}

	// No temp files may be left behind.
	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dest dir should hold exactly the handler, got %d entries", len(entries))
	}
}

func TestBundleFromBadSource(t *testing.T) {
	dest := t.TempDir()

	if _, err := BundleFrom(filepath.Join(t.TempDir(), "missing"), dest); err == nil {
		t.Error("a missing source should be an error")
	}
	if _, err := BundleFrom(t.TempDir(), dest); err == nil {
		t.Error("a directory source should be an error")
	}
}
