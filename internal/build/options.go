package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Options are the knobs a build honors beyond the platform itself.
// They come from environment variables so CI systems and cross-compile
// wrappers can steer the build without flags.
type Options struct {
	// Strategy override; see SelectStrategy for precedence.
	Strategy string `env:"CRASHPAD_BUILD_STRATEGY"`

	// Release switches GN to is_debug=false and the wrapper compile
	// to -O2.
	Release bool `env:"CRASHPAD_BUILD_RELEASE"`

	// LinkType is "static" (default) or "shared". Mobile platforms
	// force static.
	LinkType string `env:"CRASHPAD_LINK_TYPE" envDefault:"static"`

	// CXX and AR override the wrapper compiler and archiver.
	CXX string `env:"CXX"`
	AR  string `env:"AR"`

	// ExtraFlags are appended to the wrapper compile, split on
	// whitespace.
	ExtraFlags string `env:"CRASHPAD_EXTRA_FLAGS"`

	// Verbose echoes every external command and its output.
	Verbose bool `env:"CRASHPAD_BUILD_VERBOSE"`

	// NDKPath is resolved from the usual Android env vars.
	NDKPath string `env:"ANDROID_NDK_HOME"`
}

// OptionsFromEnv reads Options from the environment. ANDROID_NDK_ROOT
// and NDK_HOME are accepted as NDK fallbacks, matching Android
// tooling conventions.
func OptionsFromEnv() (Options, error) {
	var o Options
	if err := env.Parse(&o); err != nil {
		return Options{}, fmt.Errorf("parse build options: %w", err)
	}
	if o.NDKPath == "" {
		for _, key := range []string{"ANDROID_NDK_ROOT", "NDK_HOME"} {
			if v := os.Getenv(key); v != "" {
				o.NDKPath = v
				break
			}
		}
	}
	return o, nil
}

// SharedLink reports whether a shared (component) build was requested.
// Android and iOS always link statically.
func (o Options) SharedLink(p Platform) bool {
	if p.OS == Android || p.OS == IOS {
		return false
	}
	return o.LinkType == "shared" || o.LinkType == "dynamic"
}

// GNArgs returns the gn gen --args key/value list for a target.
func (o Options) GNArgs(p Platform) []string {
	args := []string{
		fmt.Sprintf("is_debug=%t", !o.Release),
		fmt.Sprintf("is_component_build=%t", o.SharedLink(p)),
		fmt.Sprintf("target_cpu=%q", string(p.Arch)),
	}

	if osName := p.GNOSName(); osName != "" {
		args = append(args, fmt.Sprintf("target_os=%q", osName))
	}

	switch p.OS {
	case Android:
		if o.NDKPath != "" {
			args = append(args, fmt.Sprintf("android_ndk_root=%q", o.NDKPath))
		}
		args = append(args, "android_api_level=21")
	case IOS:
		if p.Simulator {
			args = append(args, `target_environment="simulator"`)
		}
	case Windows:
		// Match GN's CRT choice so the wrapper links cleanly.
		if o.Release {
			args = append(args, `extra_cflags="/MD"`)
		} else {
			args = append(args, `extra_cflags="/MDd"`)
		}
	}

	return args
}

// Compiler returns the C++ compiler for the wrapper translation unit.
func (o Options) Compiler(p Platform) string {
	if o.CXX != "" {
		return o.CXX
	}
	if p.OS == Android && o.NDKPath != "" {
		name := map[Arch]string{
			X64:   "x86_64-linux-android21-clang++",
			Arm64: "aarch64-linux-android21-clang++",
			Arm:   "armv7a-linux-androideabi21-clang++",
			X86:   "i686-linux-android21-clang++",
		}[p.Arch]
		candidate := filepath.Join(o.NDKPath, "toolchains/llvm/prebuilt/linux-x86_64/bin", name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "c++"
}

// Archiver returns the static-library tool: libtool on Apple targets,
// ar elsewhere.
func (o Options) Archiver(p Platform) string {
	if o.AR != "" {
		return o.AR
	}
	if p.OS == MacOS || p.OS == IOS {
		return "libtool"
	}
	return "ar"
}

// CompilerFlags returns the wrapper compile flags.
func (o Options) CompilerFlags(p Platform) []string {
	flags := []string{"-c", "-std=c++17"}
	if o.Release {
		flags = append(flags, "-O2")
	} else {
		flags = append(flags, "-g")
	}
	if o.SharedLink(p) {
		flags = append(flags, "-fPIC")
	}
	if p.OS == IOS {
		flags = append(flags, "-DTARGET_OS_IOS=1")
		flags = append(flags, "-target", p.clangTarget())
	}
	if o.ExtraFlags != "" {
		flags = append(flags, strings.Fields(o.ExtraFlags)...)
	}
	return flags
}

// clangTarget returns the -target triple for iOS builds.
func (p Platform) clangTarget() string {
	arch := "arm64"
	if p.Arch == X64 {
		arch = "x86_64"
	}
	if p.Simulator {
		return arch + "-apple-ios14.0-simulator"
	}
	return arch + "-apple-ios14.0"
}
