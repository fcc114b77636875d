// crashpad-build acquires the native Crashpad libraries that the
// crashpad package links against: it builds them from source (with a
// minimal pinned toolchain or with depot_tools) or downloads a
// released prebuilt archive, then lays the results out under dist/.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/bahamoth/crashpad-go/handler"
	"github.com/bahamoth/crashpad-go/internal/build"
)

const version = "0.3.0"

func main() {
	app := orpheus.New("crashpad-build").
		SetDescription("Build or fetch the native Crashpad libraries").
		SetVersion(version)

	buildCmd := orpheus.NewCommand("build", "Build Crashpad for a target platform").
		SetHandler(runBuild).
		AddFlag("target", "t", "", "Target platform, e.g. linux-x64, ios-sim-arm64 (default: host)").
		AddFlag("strategy", "s", "", "Acquisition strategy: minimal, depot or prebuilt").
		AddFlag("config", "c", "", "Manifest file overriding the built-in pins").
		AddFlag("dist", "o", "dist", "Output directory").
		AddBoolFlag("release", "r", false, "Release build (is_debug=false, -O2)").
		AddBoolFlag("dry-run", "n", false, "Print commands without executing them").
		AddBoolFlag("verbose", "v", false, "Echo external commands and their output")

	toolsCmd := orpheus.NewCommand("tools", "Fetch and cache GN and Ninja for this host").
		SetHandler(runTools).
		AddFlag("config", "c", "", "Manifest file overriding the built-in pins").
		AddBoolFlag("verbose", "v", false, "Echo external commands and their output")

	prebuiltCmd := orpheus.NewCommand("prebuilt", "Package a prebuilt archive and seed the local cache").
		SetHandler(runPrebuilt).
		AddFlag("target", "t", "", "Target platform (default: host)").
		AddFlag("config", "c", "", "Manifest file overriding the built-in pins").
		AddFlag("dist", "o", "dist", "Dist directory holding the build outputs").
		AddFlag("out", "d", "release", "Directory receiving the archive")

	distCmd := orpheus.NewCommand("dist", "Package the dist directory for release upload").
		SetHandler(runDist).
		AddFlag("target", "t", "", "Target platform (default: host)").
		AddFlag("config", "c", "", "Manifest file overriding the built-in pins").
		AddFlag("dist", "o", "dist", "Dist directory holding the build outputs").
		AddFlag("out", "d", "release", "Directory receiving the archive")

	bundleCmd := orpheus.NewCommand("bundle", "Copy the crashpad handler next to a consumer binary").
		SetHandler(runBundle).
		AddFlag("dest", "d", ".", "Directory to place the handler in").
		AddFlag("from", "f", "", "Explicit handler to copy (default: discover)")

	cleanCmd := orpheus.NewCommand("clean", "Remove dist outputs").
		SetHandler(runClean).
		AddFlag("dist", "o", "dist", "Output directory").
		AddBoolFlag("cache", "a", false, "Also remove the shared cache")

	listCmd := orpheus.NewCommand("list", "Show the supported platform matrix").
		SetHandler(runList).
		AddFlag("format", "f", "table", "Output format: table, json or yaml")

	envCmd := orpheus.NewCommand("env", "Print the CGO flags consumers need").
		SetHandler(runEnv).
		AddFlag("target", "t", "", "Target platform (default: host)").
		AddFlag("dist", "o", "dist", "Output directory")

	app.AddCommand(buildCmd)
	app.AddCommand(toolsCmd)
	app.AddCommand(prebuiltCmd)
	app.AddCommand(distCmd)
	app.AddCommand(bundleCmd)
	app.AddCommand(cleanCmd)
	app.AddCommand(listCmd)
	app.AddCommand(envCmd)

	if err := app.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup resolves the pieces every build-shaped command needs.
func setup(ctx *orpheus.Context) (*build.Manifest, build.Platform, error) {
	m, err := build.LoadManifest(ctx.GetFlagString("config"))
	if err != nil {
		return nil, build.Platform{}, err
	}
	p, err := build.ParsePlatform(ctx.GetFlagString("target"))
	if err != nil {
		return nil, build.Platform{}, err
	}
	return m, p, nil
}

func newEngine(ctx *orpheus.Context, m *build.Manifest, p build.Platform) (*build.Engine, error) {
	opts, err := build.OptionsFromEnv()
	if err != nil {
		return nil, err
	}
	opts.Release = opts.Release || ctx.GetFlagBool("release")
	opts.Verbose = opts.Verbose || ctx.GetFlagBool("verbose")

	strategy, err := build.SelectStrategy(ctx.GetFlagString("strategy"), p, m)
	if err != nil {
		return nil, err
	}

	return &build.Engine{
		Manifest: m,
		Options:  opts,
		Runner:   build.Runner{Verbose: opts.Verbose, DryRun: ctx.GetFlagBool("dry-run")},
		Platform: p,
		Strategy: strategy,
		// The wrapper sources live next to the module root; the CLI is
		// expected to run from there (go run ./cmd/crashpad-build).
		WrapperDir: "wrapper",
		DistDir:    ctx.GetFlagString("dist"),
	}, nil
}

func runBuild(ctx *orpheus.Context) error {
	m, p, err := setup(ctx)
	if err != nil {
		return orpheus.ExecutionError("build", err.Error())
	}
	engine, err := newEngine(ctx, m, p)
	if err != nil {
		return orpheus.ExecutionError("build", err.Error())
	}

	fmt.Printf("Building crashpad %s for %s (%s strategy)\n",
		m.Crashpad.Revision, p, engine.Strategy)
	if err := engine.Run(context.Background()); err != nil {
		return orpheus.ExecutionError("build", err.Error())
	}
	fmt.Printf("Done. Outputs in %s\n", engine.DistDir)
	return nil
}

func runTools(ctx *orpheus.Context) error {
	m, err := build.LoadManifest(ctx.GetFlagString("config"))
	if err != nil {
		return orpheus.ExecutionError("tools", err.Error())
	}
	r := build.Runner{Verbose: ctx.GetFlagBool("verbose")}
	t, err := build.EnsureTools(context.Background(), m, r)
	if err != nil {
		return orpheus.ExecutionError("tools", err.Error())
	}
	fmt.Printf("gn:    %s\nninja: %s\n", t.GN, t.Ninja)
	return nil
}

func runDist(ctx *orpheus.Context) error {
	m, p, err := setup(ctx)
	if err != nil {
		return orpheus.ExecutionError("dist", err.Error())
	}
	archive, err := build.PackageDist(m, ctx.GetFlagString("dist"), ctx.GetFlagString("out"), p)
	if err != nil {
		return orpheus.ExecutionError("dist", err.Error())
	}
	fmt.Printf("Packaged %s\n", archive)
	return nil
}

func runPrebuilt(ctx *orpheus.Context) error {
	m, p, err := setup(ctx)
	if err != nil {
		return orpheus.ExecutionError("prebuilt", err.Error())
	}
	archive, err := build.PackageDist(m, ctx.GetFlagString("dist"), ctx.GetFlagString("out"), p)
	if err != nil {
		return orpheus.ExecutionError("prebuilt", err.Error())
	}
	dir, err := build.SeedPrebuiltCache(m, archive, p)
	if err != nil {
		return orpheus.ExecutionError("prebuilt", err.Error())
	}
	fmt.Printf("Packaged %s\nSeeded cache at %s\n", archive, dir)
	return nil
}

func runBundle(ctx *orpheus.Context) error {
	dest := ctx.GetFlagString("dest")
	var installed string
	var err error
	if from := ctx.GetFlagString("from"); from != "" {
		installed, err = handler.BundleFrom(from, dest)
	} else {
		installed, err = handler.Bundle(dest)
	}
	if err != nil {
		return orpheus.ExecutionError("bundle", err.Error())
	}
	fmt.Printf("Bundled %s\n", installed)
	return nil
}

func runClean(ctx *orpheus.Context) error {
	e := &build.Engine{DistDir: ctx.GetFlagString("dist")}
	if err := e.Clean(ctx.GetFlagBool("cache")); err != nil {
		return orpheus.ExecutionError("clean", err.Error())
	}
	return nil
}

func runEnv(ctx *orpheus.Context) error {
	p, err := build.ParsePlatform(ctx.GetFlagString("target"))
	if err != nil {
		return orpheus.ExecutionError("env", err.Error())
	}
	dist, err := filepath.Abs(ctx.GetFlagString("dist"))
	if err != nil {
		return orpheus.ExecutionError("env", err.Error())
	}

	var ldflags []string
	ldflags = append(ldflags, "-L"+filepath.Join(dist, "lib", p.String()))
	for _, lib := range p.LinkLibs() {
		ldflags = append(ldflags, "-l"+lib)
	}
	for _, lib := range p.SystemLibs() {
		if name, ok := strings.CutPrefix(lib, "framework="); ok {
			ldflags = append(ldflags, "-framework", name)
		} else {
			ldflags = append(ldflags, "-l"+lib)
		}
	}

	fmt.Printf("CGO_CPPFLAGS=-I%s\n", filepath.Join(dist, "include"))
	fmt.Printf("CGO_LDFLAGS=%s\n", strings.Join(ldflags, " "))
	return nil
}
