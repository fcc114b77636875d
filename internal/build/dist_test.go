package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeDist(t *testing.T, p Platform) string {
	t.Helper()
	dist := t.TempDir()

	libDir := filepath.Join(dist, "lib", p.String())
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range p.LinkLibs() {
		if err := os.WriteFile(filepath.Join(libDir, "lib"+name+".a"), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if handler := p.HandlerBasename(); handler != "" {
		binDir := filepath.Join(dist, "bin", p.String())
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(binDir, handler), []byte("handler"), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	incDir := filepath.Join(dist, "include")
	if err := os.MkdirAll(incDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(incDir, "wrapper.h"), []byte("// header"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dist
}

func TestPackageDist(t *testing.T) {
	m := testManifest(t)
	p := Platform{OS: Linux, Arch: X64}
	dist := fakeDist(t, p)
	out := t.TempDir()

	archive, err := PackageDist(m, dist, out, p)
	if err != nil {
		t.Fatalf("PackageDist error: %v", err)
	}

	wantName := "crashpad-" + m.Crashpad.Revision + "-linux-x64.tar.gz"
	if filepath.Base(archive) != wantName {
		t.Errorf("archive name = %q, want %q", filepath.Base(archive), wantName)
	}

	// The sidecar digest must match the archive.
	if err := verifyChecksum(archive, archive+".sha256"); err != nil {
		t.Errorf("sidecar checksum does not verify: %v", err)
	}

	sidecar, err := os.ReadFile(archive + ".sha256")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(sidecar), wantName) {
		t.Errorf("sidecar should name the archive: %q", sidecar)
	}
}

func TestPackageDistMissingContent(t *testing.T) {
	m := testManifest(t)
	p := Platform{OS: Linux, Arch: X64}

	if _, err := PackageDist(m, t.TempDir(), t.TempDir(), p); err == nil {
		t.Error("packaging an empty dist tree should fail")
	}
}

func TestSeedPrebuiltCacheRoundTrip(t *testing.T) {
	root := t.TempDir()
	t.Setenv(CacheEnvVar, root)

	m := testManifest(t)
	p := Platform{OS: Linux, Arch: X64}
	dist := fakeDist(t, p)

	archive, err := PackageDist(m, dist, t.TempDir(), p)
	if err != nil {
		t.Fatalf("PackageDist error: %v", err)
	}

	dir, err := SeedPrebuiltCache(m, archive, p)
	if err != nil {
		t.Fatalf("SeedPrebuiltCache error: %v", err)
	}
	if !isOK(dir) {
		t.Error("seeded cache must carry a completion marker")
	}

	// The seeded cache satisfies a prebuilt build without a download.
	m.Prebuilt.URL = "http://127.0.0.1:1/${version}-${platform}.tar.gz"
	got, err := FetchPrebuilt(t.Context(), m, Runner{}, p)
	if err != nil {
		t.Fatalf("FetchPrebuilt after seeding error: %v", err)
	}
	if got != dir {
		t.Errorf("FetchPrebuilt = %q, want %q", got, dir)
	}

	// And installs into a fresh dist tree.
	e := &Engine{Platform: p, DistDir: filepath.Join(root, "fresh-dist")}
	if err := e.installPrebuilt(got); err != nil {
		t.Fatalf("installPrebuilt error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(e.DistDir, "include", "wrapper.h"))
	if err != nil {
		t.Fatalf("installed header missing: %v", err)
	}
	if string(data) != "// header" {
		t.Errorf("installed header content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(e.DistDir, "bin", p.String(), p.HandlerBasename())); err != nil {
		t.Errorf("installed handler missing: %v", err)
	}
}
