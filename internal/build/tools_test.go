package build

import (
	"archive/zip"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractZipFile(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "gn.zip")
	writeZip(t, zipPath, map[string]string{
		"gn":        "#!/bin/sh\necho gn\n",
		"README.md": "not the binary",
	})

	dest := filepath.Join(dir, "gn")
	if err := extractZipFile(zipPath, "gn", dest); err != nil {
		t.Fatalf("extractZipFile error: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "#!/bin/sh\necho gn\n" {
		t.Errorf("extracted content = %q", data)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(dest)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm()&0o100 == 0 {
			t.Errorf("extracted tool should be executable, mode %v", info.Mode())
		}
	}
}

func TestExtractZipFileNestedMember(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "ninja.zip")
	writeZip(t, zipPath, map[string]string{
		"some/prefix/ninja": "binary-bytes",
	})

	dest := filepath.Join(dir, "ninja")
	if err := extractZipFile(zipPath, "ninja", dest); err != nil {
		t.Fatalf("extractZipFile error: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "binary-bytes" {
		t.Errorf("extracted content = %q", data)
	}
}

func TestExtractZipFileMissingMember(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "empty.zip")
	writeZip(t, zipPath, map[string]string{"other": "x"})

	if err := extractZipFile(zipPath, "gn", filepath.Join(dir, "gn")); err == nil {
		t.Error("missing member should be an error")
	}
}

func TestEnsureToolsCacheHit(t *testing.T) {
	root := t.TempDir()
	t.Setenv(CacheEnvVar, root)

	host := Host()
	dir, err := ToolsDir(host)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	suffix := host.ExeSuffix()
	for _, name := range []string{"gn" + suffix, "ninja" + suffix} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("cached"), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	m := testManifest(t)
	// Cached binaries must be reused without touching the network; a
	// download attempt would fail on the unreachable URL below.
	m.Tools.GN.URL = "http://127.0.0.1:1/gn"
	m.Tools.Ninja.URL = "http://127.0.0.1:1/ninja"

	tools, err := EnsureTools(t.Context(), m, Runner{})
	if err != nil {
		t.Fatalf("EnsureTools error: %v", err)
	}
	if tools.GN != filepath.Join(dir, "gn"+suffix) {
		t.Errorf("GN path = %q", tools.GN)
	}
	if tools.Ninja != filepath.Join(dir, "ninja"+suffix) {
		t.Errorf("Ninja path = %q", tools.Ninja)
	}
}
