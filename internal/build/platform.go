package build

import (
	"fmt"
	"runtime"
	"strings"
)

// OS is a Crashpad target operating system.
type OS string

const (
	MacOS   OS = "macos"
	Linux   OS = "linux"
	Windows OS = "windows"
	IOS     OS = "ios"
	Android OS = "android"
)

// Arch is a target CPU architecture, named the way GN names them.
type Arch string

const (
	X64   Arch = "x64"
	Arm64 Arch = "arm64"
	Arm   Arch = "arm"
	X86   Arch = "x86"
)

// Platform identifies one build target: an OS, an architecture, and
// for iOS whether the simulator environment is targeted.
type Platform struct {
	OS        OS
	Arch      Arch
	Simulator bool
}

// Host returns the platform of the machine running the build.
func Host() Platform {
	p := Platform{}
	switch runtime.GOOS {
	case "darwin":
		p.OS = MacOS
	case "windows":
		p.OS = Windows
	default:
		p.OS = Linux
	}
	switch runtime.GOARCH {
	case "arm64":
		p.Arch = Arm64
	case "386":
		p.Arch = X86
	case "arm":
		p.Arch = Arm
	default:
		p.Arch = X64
	}
	return p
}

// ParsePlatform parses names like "linux-x64", "ios-sim-arm64" or
// "android-arm". An empty name means the host platform.
func ParsePlatform(name string) (Platform, error) {
	if name == "" {
		return Host(), nil
	}

	parts := strings.Split(name, "-")
	if len(parts) < 2 || len(parts) > 3 {
		return Platform{}, fmt.Errorf("invalid platform %q: want os-arch or ios-sim-arch", name)
	}

	var p Platform
	switch OS(parts[0]) {
	case MacOS, Linux, Windows, IOS, Android:
		p.OS = OS(parts[0])
	default:
		return Platform{}, fmt.Errorf("unsupported os %q in platform %q", parts[0], name)
	}

	archPart := parts[1]
	if len(parts) == 3 {
		if p.OS != IOS || parts[1] != "sim" {
			return Platform{}, fmt.Errorf("invalid platform %q: only ios supports a -sim- environment", name)
		}
		p.Simulator = true
		archPart = parts[2]
	}

	switch Arch(archPart) {
	case X64, Arm64, Arm, X86:
		p.Arch = Arch(archPart)
	default:
		return Platform{}, fmt.Errorf("unsupported arch %q in platform %q", archPart, name)
	}

	return p, nil
}

// Platforms returns the full supported target matrix.
func Platforms() []Platform {
	return []Platform{
		{OS: MacOS, Arch: X64},
		{OS: MacOS, Arch: Arm64},
		{OS: Linux, Arch: X64},
		{OS: Linux, Arch: Arm64},
		{OS: Windows, Arch: X64},
		{OS: IOS, Arch: Arm64},
		{OS: IOS, Arch: Arm64, Simulator: true},
		{OS: IOS, Arch: X64, Simulator: true},
		{OS: Android, Arch: Arm64},
		{OS: Android, Arch: Arm},
		{OS: Android, Arch: X64},
	}
}

// String returns the canonical name, e.g. "ios-sim-arm64". It doubles
// as the build directory name and the prebuilt archive suffix.
func (p Platform) String() string {
	if p.Simulator {
		return fmt.Sprintf("%s-sim-%s", p.OS, p.Arch)
	}
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}

// InProcessHandler reports whether the platform runs the handler
// inside the client process. Only iOS does; everywhere else a handler
// executable is built and shipped.
func (p Platform) InProcessHandler() bool {
	return p.OS == IOS
}

// HandlerBasename returns the handler executable name this platform
// produces, or "" for in-process platforms.
func (p Platform) HandlerBasename() string {
	switch p.OS {
	case IOS:
		return ""
	case Windows:
		return "crashpad_handler.exe"
	case Android:
		return "libcrashpad_handler.so"
	default:
		return "crashpad_handler"
	}
}

// GNOSName returns GN's target_os value, or "" when GN's default for
// the host is correct.
func (p Platform) GNOSName() string {
	switch p.OS {
	case Android:
		return "android"
	case IOS:
		return "ios"
	case Windows:
		return "win"
	default:
		return ""
	}
}

// NinjaTargets returns the ninja targets to build. iOS builds the
// library-only set: there is no handler executable to produce.
func (p Platform) NinjaTargets() []string {
	common := []string{
		"client:client",
		"client:common",
		"util:util",
		"minidump:format",
		"minidump:minidump",
		"snapshot:context",
		"snapshot:snapshot",
		"handler:common",
		"third_party/mini_chromium/mini_chromium/base:base",
	}
	if p.OS == IOS {
		return append(common,
			"util:net",
			"util:mig_output",
		)
	}
	return append(common, "handler:crashpad_handler")
}

// LinkLibs returns the library names consumers must link, in
// dependency order, used by the env command and the dist manifest.
func (p Platform) LinkLibs() []string {
	libs := []string{"crashpad_wrapper", "client", "common", "util", "format", "base"}
	switch p.OS {
	case Windows:
		return append(libs, "snapshot", "minidump", "context", "compat", "net", "getopt", "zlib")
	case IOS:
		return append(libs, "mig_output", "snapshot", "context", "minidump")
	case MacOS:
		return append(libs, "mig_output")
	default:
		return libs
	}
}

// SystemLibs returns the platform's system-level link inputs (libs and
// frameworks) for the env command.
func (p Platform) SystemLibs() []string {
	switch p.OS {
	case MacOS:
		return []string{"c++", "bsm", "framework=Foundation", "framework=Security", "framework=CoreFoundation", "framework=IOKit"}
	case IOS:
		return []string{"c++", "z", "framework=Foundation", "framework=Security", "framework=CoreFoundation", "framework=UIKit"}
	case Android:
		return []string{"c++_static", "c++abi", "log", "dl"}
	case Windows:
		return []string{"advapi32", "kernel32", "user32", "winmm"}
	default:
		return []string{"stdc++", "pthread"}
	}
}

// ToolKey returns the platform key used in GN/Ninja download URLs
// (Chrome infra package naming). Tools always run on the build host,
// so this is only meaningful for host platforms.
func (p Platform) ToolKey() (string, error) {
	switch {
	case p.OS == MacOS && p.Arch == X64:
		return "mac-amd64", nil
	case p.OS == MacOS && p.Arch == Arm64:
		return "mac-arm64", nil
	case p.OS == Linux && p.Arch == X64:
		return "linux-amd64", nil
	case p.OS == Windows && p.Arch == X64:
		return "windows-amd64", nil
	}
	return "", fmt.Errorf("no prebuilt GN/Ninja tools for host %s", p)
}

// ExeSuffix returns ".exe" on Windows.
func (p Platform) ExeSuffix() string {
	if p.OS == Windows {
		return ".exe"
	}
	return ""
}
