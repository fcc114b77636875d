/*
Package crashpad provides Go bindings for Google Crashpad, the crash
reporting system used by Chromium. It exposes a small, safe API over a C
wrapper library and ships with a companion build pipeline that produces
that library for every supported platform.

# Core Features

Crash Handler Management:
A Client starts and owns the connection to the Crashpad handler. On
macOS, Linux, Windows and Android the handler runs as a separate
executable that is spawned (or connected to) at startup. On iOS the
handler runs in-process and the same API transparently switches
topology.

Configuration:
Config carries the handler path, crash database directory, metrics
directory and upload URL. A fluent builder covers programmatic setup,
and environment variables (CRASHPAD_HANDLER, CRASHPAD_DATABASE_DIR,
CRASHPAD_METRICS_DIR, CRASHPAD_URL) cover deployment-time overrides.

Handler Discovery:
When no handler path is configured the library searches, in order: the
CRASHPAD_HANDLER environment variable, the directory containing the
running executable, the dist/bin directory crashpad-build installs
into, and the current working directory. The handler subpackage
additionally bundles the handler executable next to a consumer binary.

Diagnostic Dumps:
DumpWithoutCrash captures the current thread context and writes a
minidump without terminating the process, using SimulateCrash on macOS
and DumpWithoutCrash everywhere else.

# Usage

	client, err := crashpad.NewClient()
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	cfg := crashpad.NewConfigBuilder().
		DatabasePath("/var/crash/myapp").
		URL("https://crashes.example.com/submit").
		Build()

	annotations := map[string]string{
		"version": "1.2.3",
		"channel": "stable",
	}

	if err := client.StartWithConfig(cfg, annotations); err != nil {
		log.Fatal(err)
	}

# Building the Native Library

The bindings link against libcrashpad_wrapper.a plus the Crashpad
static libraries, installed under dist/ by the crashpad-build command:

	go run ./cmd/crashpad-build build
	go run ./cmd/crashpad-build env

crashpad-build supports three acquisition strategies: a minimal
toolchain build using pinned GN and Ninja binaries, a full depot_tools
build matching upstream's workflow, and prebuilt archives downloaded
from releases. See cmd/crashpad-build and internal/build.

# Platform Notes

  - macOS: SetHandlerMachService connects to a handler registered as a
    Mach service; UseSystemDefaultHandler restores ReportCrash.
  - Windows: SetHandlerIPCPipe connects to a shared handler over a
    named pipe.
  - iOS: no handler executable exists; StartWithConfig starts the
    in-process handler and schedules pending-report processing.
  - Android: the handler is packaged as libcrashpad_handler.so so APK
    tooling will install it.

# Dependencies

Beyond the C wrapper, the module leverages:
- github.com/agilira/orpheus: CLI framework
- github.com/agilira/go-errors: coded errors
- github.com/caarlos0/env: environment configuration
- gopkg.in/yaml.v3: build manifest parsing
*/
package crashpad
