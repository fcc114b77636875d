package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// buildMinimal runs the from-source pipeline without depot_tools:
// pinned GN and Ninja binaries, a shallow git checkout, hand-placed
// dependency checkouts, then configure, compile, wrapper and archive.
func (e *Engine) buildMinimal(ctx context.Context) error {
	fmt.Printf("[1/6] prepare (%s)\n", e.Platform)
	tools, err := EnsureTools(ctx, e.Manifest, e.Runner)
	if err != nil {
		return err
	}
	checkout, err := e.ensureCheckout(ctx)
	if err != nil {
		return err
	}

	outDir := filepath.Join(checkout, "out", e.Platform.String())

	fmt.Println("[2/6] configure")
	if err := e.configure(ctx, tools.GN, checkout, outDir); err != nil {
		return err
	}

	fmt.Println("[3/6] compile")
	if err := e.compile(ctx, tools.Ninja, outDir); err != nil {
		return err
	}

	fmt.Println("[4/6] wrapper")
	objPath, err := e.compileWrapper(ctx, checkout, outDir)
	if err != nil {
		return err
	}

	fmt.Println("[5/6] archive")
	if err := e.archiveWrapper(ctx, objPath, outDir); err != nil {
		return err
	}

	fmt.Println("[6/6] install")
	return e.install(outDir)
}

// ensureCheckout clones Crashpad at the pinned revision plus the
// dependency repos gclient would have synced. An existing marked
// checkout is reused.
func (e *Engine) ensureCheckout(ctx context.Context) (string, error) {
	checkout, err := SourceDir(e.Manifest.Crashpad.Revision)
	if err != nil {
		return "", err
	}
	if isOK(checkout) {
		return checkout, nil
	}

	if !e.Runner.Lookup("git") {
		return "", fmt.Errorf("git is required to check out crashpad; install git or use the prebuilt strategy")
	}

	if err := e.cloneAt(ctx, e.Manifest.Crashpad.URL, e.Manifest.Crashpad.Revision, checkout); err != nil {
		return "", err
	}

	for _, dep := range e.Manifest.Crashpad.Deps {
		if !dep.appliesTo(e.Platform) {
			continue
		}
		dest := filepath.Join(checkout, filepath.FromSlash(dep.Path))
		if err := e.cloneAt(ctx, dep.URL, dep.Revision, dest); err != nil {
			return "", err
		}
	}

	if e.Runner.DryRun {
		return checkout, nil
	}
	if err := markOK(checkout); err != nil {
		return "", err
	}
	return checkout, nil
}

// cloneAt makes a minimal single-revision checkout: init, fetch the
// pinned revision with depth 1, then check it out detached.
func (e *Engine) cloneAt(ctx context.Context, url, revision, dest string) error {
	if fileExists(filepath.Join(dest, ".git", "HEAD")) {
		return nil
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	steps := [][]string{
		{"init", "--quiet"},
		{"remote", "add", "origin", url},
		{"fetch", "--quiet", "--depth", "1", "origin", revision},
		{"checkout", "--quiet", "FETCH_HEAD"},
	}
	for _, args := range steps {
		if _, err := e.Runner.Run(ctx, dest, "git", args...); err != nil {
			return err
		}
	}
	return nil
}

// configure runs gn gen with the platform's argument set.
func (e *Engine) configure(ctx context.Context, gn, checkout, outDir string) error {
	args := e.Options.GNArgs(e.Platform)
	for _, extra := range e.Manifest.PlatformConfig(e.Platform).GNArgs {
		args = append(args, e.Manifest.Expand(extra, e.Platform))
	}

	rel, err := filepath.Rel(checkout, outDir)
	if err != nil {
		rel = outDir
	}
	_, err = e.Runner.Run(ctx, checkout, gn,
		"gen", rel, "--args="+strings.Join(args, " "))
	return err
}

// compile runs ninja for the platform's target list.
func (e *Engine) compile(ctx context.Context, ninja, outDir string) error {
	targets := e.Platform.NinjaTargets()
	targets = append(targets, e.Manifest.PlatformConfig(e.Platform).NinjaTargets...)
	args := append([]string{"-C", outDir}, targets...)
	_, err := e.Runner.Run(ctx, "", ninja, args...)
	return err
}

// compileWrapper builds the C ABI translation unit against the
// Crashpad checkout and returns the object file path.
func (e *Engine) compileWrapper(ctx context.Context, checkout, outDir string) (string, error) {
	obj := filepath.Join(outDir, "crashpad_wrapper.o")
	args := e.Options.CompilerFlags(e.Platform)
	args = append(args,
		"-I", checkout,
		"-I", filepath.Join(checkout, "third_party", "mini_chromium", "mini_chromium"),
		"-I", filepath.Join(outDir, "gen"),
		"-I", e.WrapperDir,
		"-o", obj,
		filepath.Join(e.WrapperDir, "crashpad_wrapper.cc"),
	)
	_, err := e.Runner.Run(ctx, "", e.Options.Compiler(e.Platform), args...)
	return obj, err
}

// archiveWrapper folds the wrapper object into a static library next
// to the Crashpad archives.
func (e *Engine) archiveWrapper(ctx context.Context, objPath, outDir string) error {
	lib := filepath.Join(outDir, "obj", "libcrashpad_wrapper.a")
	if err := os.MkdirAll(filepath.Dir(lib), 0o755); err != nil {
		return err
	}
	archiver := e.Options.Archiver(e.Platform)
	var args []string
	if strings.Contains(archiver, "libtool") {
		args = []string{"-static", "-o", lib, objPath}
	} else {
		args = []string{"rcs", lib, objPath}
	}
	_, err := e.Runner.Run(ctx, "", archiver, args...)
	return err
}

func (d Dep) appliesTo(p Platform) bool {
	if len(d.OSList) == 0 {
		return true
	}
	for _, name := range d.OSList {
		if OS(name) == p.OS {
			return true
		}
	}
	return false
}
