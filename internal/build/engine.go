package build

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Engine drives one build of the native Crashpad libraries for one
// target platform, using one acquisition strategy.
type Engine struct {
	Manifest *Manifest
	Options  Options
	Runner   Runner
	Platform Platform
	Strategy Strategy

	// WrapperDir holds wrapper.h and crashpad_wrapper.cc.
	WrapperDir string
	// DistDir receives lib/, bin/ and include/.
	DistDir string
}

// Run executes the selected strategy. Failures are final; nothing
// falls back to another strategy.
func (e *Engine) Run(ctx context.Context) error {
	switch e.Strategy {
	case StrategyPrebuilt:
		dir, err := FetchPrebuilt(ctx, e.Manifest, e.Runner, e.Platform)
		if err != nil {
			return err
		}
		return e.installPrebuilt(dir)
	case StrategyDepot:
		return e.buildDepot(ctx)
	case StrategyMinimal:
		return e.buildMinimal(ctx)
	}
	return fmt.Errorf("unknown build strategy %q", e.Strategy)
}

// install collects build outputs into the dist layout:
//
//	dist/lib/<platform>/lib*.a
//	dist/bin/<platform>/crashpad_handler
//	dist/include/wrapper.h
//
// Host builds are additionally installed flat into dist/lib and
// dist/bin, which is where the binding package's cgo directives look.
func (e *Engine) install(outDir string) error {
	if e.Runner.DryRun {
		fmt.Printf("  [DRY RUN] Would install into: %s\n", e.DistDir)
		return nil
	}

	libDir := filepath.Join(e.DistDir, "lib", e.Platform.String())
	if err := os.MkdirAll(libDir, 0o755); err != nil {
		return err
	}

	wanted := make(map[string]bool)
	for _, name := range e.Platform.LinkLibs() {
		wanted["lib"+name+".a"] = true
		wanted[name+".lib"] = true
	}

	found := make(map[string]bool)
	err := filepath.WalkDir(outDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		base := filepath.Base(path)
		if !wanted[base] || found[base] {
			return nil
		}
		found[base] = true
		return copyFile(path, filepath.Join(libDir, base))
	})
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return fmt.Errorf("no static libraries found under %s", outDir)
	}

	if handler := e.Platform.HandlerBasename(); handler != "" {
		src := filepath.Join(outDir, handler)
		if !fileExists(src) {
			return fmt.Errorf("handler executable %s missing from %s", handler, outDir)
		}
		binDir := filepath.Join(e.DistDir, "bin", e.Platform.String())
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			return err
		}
		dest := filepath.Join(binDir, handler)
		if err := copyFile(src, dest); err != nil {
			return err
		}
		if err := os.Chmod(dest, 0o755); err != nil {
			return err
		}
	}

	incDir := filepath.Join(e.DistDir, "include")
	if err := os.MkdirAll(incDir, 0o755); err != nil {
		return err
	}
	if err := copyFile(filepath.Join(e.WrapperDir, "wrapper.h"), filepath.Join(incDir, "wrapper.h")); err != nil {
		return err
	}

	if e.Platform == Host() {
		return e.installFlat(libDir)
	}
	return nil
}

// installFlat mirrors a host build into dist/lib and dist/bin.
func (e *Engine) installFlat(libDir string) error {
	entries, err := os.ReadDir(libDir)
	if err != nil {
		return err
	}
	flatLib := filepath.Join(e.DistDir, "lib")
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(libDir, entry.Name()), filepath.Join(flatLib, entry.Name())); err != nil {
			return err
		}
	}

	if handler := e.Platform.HandlerBasename(); handler != "" {
		flatBin := filepath.Join(e.DistDir, "bin")
		if err := os.MkdirAll(flatBin, 0o755); err != nil {
			return err
		}
		src := filepath.Join(e.DistDir, "bin", e.Platform.String(), handler)
		dest := filepath.Join(flatBin, handler)
		if err := copyFile(src, dest); err != nil {
			return err
		}
		return os.Chmod(dest, 0o755)
	}
	return nil
}

// installPrebuilt copies an extracted prebuilt tree (already in dist
// layout) into the dist directory.
func (e *Engine) installPrebuilt(dir string) error {
	if e.Runner.DryRun {
		fmt.Printf("  [DRY RUN] Would install into: %s\n", e.DistDir)
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Base(path) == okMarker {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(e.DistDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		return copyFile(path, dest)
	})
}

// Clean removes the dist directory; with cache it also drops the
// shared cache (tools, checkouts, prebuilts).
func (e *Engine) Clean(cache bool) error {
	if err := os.RemoveAll(e.DistDir); err != nil {
		return err
	}
	if !cache {
		return nil
	}
	root, err := CacheDir()
	if err != nil {
		return err
	}
	return os.RemoveAll(root)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}
