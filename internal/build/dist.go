package build

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// PackageDist packs the dist tree for one platform into
// crashpad-<revision>-<platform>.tar.gz under destDir, writes the
// .sha256 sidecar, and returns the archive path. The archive layout
// matches what FetchPrebuilt expects to extract.
func PackageDist(m *Manifest, distDir, destDir string, p Platform) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("crashpad-%s-%s.tar.gz", m.Crashpad.Revision, p)
	archive := filepath.Join(destDir, name)

	paths := []string{
		filepath.Join("lib", p.String()),
		"include",
	}
	if p.HandlerBasename() != "" {
		paths = append(paths, filepath.Join("bin", p.String()))
	}

	if err := writeTarGz(archive, distDir, paths); err != nil {
		return "", err
	}

	sum, err := fileSHA256(archive)
	if err != nil {
		return "", err
	}
	sidecar := fmt.Sprintf("%s  %s\n", sum, name)
	if err := os.WriteFile(archive+".sha256", []byte(sidecar), 0o644); err != nil {
		return "", err
	}
	return archive, nil
}

// SeedPrebuiltCache extracts a packaged archive into the prebuilt
// cache and marks it complete, so a build with the prebuilt strategy
// finds it without a download. Used to test release archives locally.
func SeedPrebuiltCache(m *Manifest, archive string, p Platform) (string, error) {
	dir, err := PrebuiltDir(m.Crashpad.Revision, p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := extractTarGz(archive, dir); err != nil {
		return "", err
	}
	if err := markOK(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// writeTarGz archives the given root-relative paths into a tar.gz.
func writeTarGz(archive, root string, paths []string) error {
	f, err := os.Create(archive)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	var walkErr error
	for _, rel := range paths {
		src := filepath.Join(root, rel)
		walkErr = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("missing dist content %s: %v", rel, err)
			}
			if d.IsDir() {
				return nil
			}
			return addTarFile(tw, root, path)
		})
		if walkErr != nil {
			break
		}
	}

	if err := tw.Close(); walkErr == nil {
		walkErr = err
	}
	if err := gz.Close(); walkErr == nil {
		walkErr = err
	}
	if err := f.Close(); walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		os.Remove(archive)
	}
	return walkErr
}

func addTarFile(tw *tar.Writer, root, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(tw, f)
	return err
}
