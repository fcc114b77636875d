package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const depotToolsURL = "https://chromium.googlesource.com/chromium/tools/depot_tools.git"

// buildDepot runs the upstream-documented pipeline: depot_tools,
// gclient sync, then gn/ninja from the depot. This is the only path
// that wires up MSVC on Windows.
func (e *Engine) buildDepot(ctx context.Context) error {
	fmt.Printf("[1/6] prepare depot_tools (%s)\n", e.Platform)
	depot, err := e.ensureDepotTools(ctx)
	if err != nil {
		return err
	}

	checkout, err := e.ensureGclientCheckout(ctx, depot)
	if err != nil {
		return err
	}
	src := filepath.Join(checkout, "crashpad")
	outDir := filepath.Join(src, "out", e.Platform.String())

	gn := filepath.Join(depot, "gn"+Host().ExeSuffix())
	ninja := filepath.Join(depot, "ninja"+Host().ExeSuffix())
	if runtime.GOOS == "windows" {
		// depot_tools ships .bat shims on Windows.
		gn = filepath.Join(depot, "gn.bat")
		ninja = filepath.Join(depot, "ninja.bat")
	}

	fmt.Println("[2/6] configure")
	if err := e.configure(ctx, gn, src, outDir); err != nil {
		return err
	}

	fmt.Println("[3/6] compile")
	if err := e.compile(ctx, ninja, outDir); err != nil {
		return err
	}

	fmt.Println("[4/6] wrapper")
	obj, err := e.compileWrapper(ctx, src, outDir)
	if err != nil {
		return err
	}

	fmt.Println("[5/6] archive")
	if err := e.archiveWrapper(ctx, obj, outDir); err != nil {
		return err
	}

	fmt.Println("[6/6] install")
	return e.install(outDir)
}

// ensureDepotTools clones depot_tools into the cache.
func (e *Engine) ensureDepotTools(ctx context.Context) (string, error) {
	root, err := CacheDir()
	if err != nil {
		return "", err
	}
	depot := filepath.Join(root, "depot_tools")
	if fileExists(filepath.Join(depot, "gclient")) || fileExists(filepath.Join(depot, "gclient.bat")) {
		return depot, nil
	}
	if !e.Runner.Lookup("git") {
		return "", fmt.Errorf("git is required to fetch depot_tools")
	}
	if _, err := e.Runner.Run(ctx, root, "git",
		"clone", "--quiet", "--depth", "1", depotToolsURL, depot); err != nil {
		return "", err
	}
	return depot, nil
}

// ensureGclientCheckout writes a .gclient solution pinned to the
// manifest revision and runs gclient sync.
func (e *Engine) ensureGclientCheckout(ctx context.Context, depot string) (string, error) {
	root, err := CacheDir()
	if err != nil {
		return "", err
	}
	checkout := filepath.Join(root, "gclient", e.Manifest.Crashpad.Revision)
	if isOK(checkout) {
		return checkout, nil
	}
	if err := os.MkdirAll(checkout, 0o755); err != nil {
		return "", err
	}

	solution := fmt.Sprintf(`solutions = [
  {
    "name": "crashpad",
    "url": "%s@%s",
    "managed": True,
    "deps_file": "DEPS",
  },
]
`, e.Manifest.Crashpad.URL, e.Manifest.Crashpad.Revision)
	if e.Platform.OS == Android || e.Platform.OS == IOS {
		solution += fmt.Sprintf("target_os = [%q]\n", e.Platform.GNOSName())
	}
	if !e.Runner.DryRun {
		if err := os.WriteFile(filepath.Join(checkout, ".gclient"), []byte(solution), 0o644); err != nil {
			return "", err
		}
	}

	gclient := filepath.Join(depot, "gclient")
	if runtime.GOOS == "windows" {
		gclient = filepath.Join(depot, "gclient.bat")
	}
	if _, err := e.Runner.Run(ctx, checkout, gclient, "sync", "--no-history"); err != nil {
		return "", err
	}

	if e.Runner.DryRun {
		return checkout, nil
	}
	if err := markOK(checkout); err != nil {
		return "", err
	}
	return checkout, nil
}
