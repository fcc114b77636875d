package build

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FetchPrebuilt downloads and unpacks the released archive for a
// target into the cache and returns the extracted directory. A cached
// extraction with a completion marker is reused as-is.
func FetchPrebuilt(ctx context.Context, m *Manifest, r Runner, p Platform) (string, error) {
	dir, err := PrebuiltDir(m.Crashpad.Revision, p)
	if err != nil {
		return "", err
	}
	if isOK(dir) {
		if r.Verbose {
			fmt.Printf("→ prebuilt cache hit: %s\n", dir)
		}
		return dir, nil
	}

	url := m.PrebuiltURL(p)
	if r.DryRun {
		fmt.Printf("  [DRY RUN] Would download: %s\n", url)
		return dir, nil
	}
	if r.Verbose {
		fmt.Printf("→ fetching %s\n", url)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	archive := filepath.Join(dir, "crashpad.tar.gz")
	if err := download(ctx, url, archive); err != nil {
		return "", err
	}
	defer os.Remove(archive)

	// The checksum file is published next to the archive.
	sumFile := archive + ".sha256"
	if err := download(ctx, url+".sha256", sumFile); err == nil {
		defer os.Remove(sumFile)
		if err := verifyChecksum(archive, sumFile); err != nil {
			return "", err
		}
	} else if r.Verbose {
		fmt.Printf("→ no checksum published for %s, skipping verification\n", url)
	}

	if err := extractTarGz(archive, dir); err != nil {
		return "", err
	}
	if err := markOK(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// verifyChecksum compares a file's SHA-256 against a sha256sum-format
// sidecar (hex digest, whitespace, filename).
func verifyChecksum(path, sumFile string) error {
	raw, err := os.ReadFile(sumFile)
	if err != nil {
		return err
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return fmt.Errorf("empty checksum file %s", sumFile)
	}
	want := strings.ToLower(fields[0])

	got, err := fileSHA256(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", filepath.Base(path), got, want)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// extractTarGz unpacks archive into dir. Entries escaping dir are
// rejected; symlinks and other special entries are skipped.
func extractTarGz(archive, dir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open %s: %v", archive, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %v", archive, err)
		}

		dest := filepath.Join(dir, filepath.FromSlash(hdr.Name))
		rel, err := filepath.Rel(dir, dest)
		// ".." must match a whole path element: a name like "..data"
		// stays inside the extraction directory.
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes the extraction directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return err
			}
			_, err = io.Copy(out, tr)
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
		}
	}
}
