package build

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Tools are the resolved GN and Ninja binaries for the build host.
type Tools struct {
	GN    string
	Ninja string
}

// EnsureTools makes GN and Ninja available for the host and returns
// their paths. Already-cached binaries are reused; otherwise the
// pinned zip archives from the manifest are downloaded and unpacked.
func EnsureTools(ctx context.Context, m *Manifest, r Runner) (Tools, error) {
	host := Host()
	dir, err := ToolsDir(host)
	if err != nil {
		return Tools{}, err
	}

	suffix := host.ExeSuffix()
	t := Tools{
		GN:    filepath.Join(dir, "gn"+suffix),
		Ninja: filepath.Join(dir, "ninja"+suffix),
	}

	if err := ensureTool(ctx, m, r, t.GN, m.Tools.GN, host); err != nil {
		return Tools{}, fmt.Errorf("gn: %w", err)
	}
	if err := ensureTool(ctx, m, r, t.Ninja, m.Tools.Ninja, host); err != nil {
		return Tools{}, fmt.Errorf("ninja: %w", err)
	}
	return t, nil
}

func ensureTool(ctx context.Context, m *Manifest, r Runner, binPath string, tool Tool, host Platform) error {
	if fileExists(binPath) {
		return nil
	}

	url, err := m.ToolURL(tool, host)
	if err != nil {
		return err
	}

	if r.DryRun {
		fmt.Printf("  [DRY RUN] Would download: %s\n", url)
		return nil
	}
	if r.Verbose {
		fmt.Printf("→ fetching %s\n", url)
	}

	if err := os.MkdirAll(filepath.Dir(binPath), 0o755); err != nil {
		return err
	}

	zipPath := binPath + ".zip"
	if err := download(ctx, url, zipPath); err != nil {
		return err
	}
	defer os.Remove(zipPath)

	if err := extractZipFile(zipPath, filepath.Base(binPath), binPath); err != nil {
		return err
	}
	if err := os.Chmod(binPath, 0o755); err != nil {
		return err
	}

	// A quick version probe catches truncated downloads early.
	if _, err := r.Run(ctx, "", binPath, "--version"); err != nil {
		os.Remove(binPath)
		return fmt.Errorf("downloaded tool does not run: %w", err)
	}
	return nil
}

// download fetches url into dest via a temp file, so partial
// downloads never land under the final name.
func download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: HTTP %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	_, err = io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("download %s: %v", url, err)
	}
	return os.Rename(tmp.Name(), dest)
}

// extractZipFile pulls a single member (matched by base name) out of a
// zip archive. Chrome infra tool packages hold the binary at the root.
func extractZipFile(zipPath, member, dest string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open %s: %v", zipPath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if filepath.Base(f.Name) != member || strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		return err
	}
	return fmt.Errorf("%s not found in %s", member, zipPath)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
