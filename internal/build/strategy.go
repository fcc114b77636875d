package build

import (
	"fmt"
	"os"
)

// Strategy is one way of acquiring the native Crashpad libraries. A
// build picks exactly one strategy up front and runs it to completion
// or failure; there is no fallback chain.
type Strategy string

const (
	// StrategyMinimal fetches pinned GN and Ninja binaries, makes a
	// shallow Crashpad checkout, and builds from source.
	StrategyMinimal Strategy = "minimal"

	// StrategyDepot drives Google's depot_tools (gclient sync), which
	// is what upstream documents and what wires up MSVC on Windows.
	StrategyDepot Strategy = "depot"

	// StrategyPrebuilt downloads a released archive and verifies its
	// checksum. No toolchain needed.
	StrategyPrebuilt Strategy = "prebuilt"
)

// StrategyEnvVar overrides the default strategy when no flag is given.
const StrategyEnvVar = "CRASHPAD_BUILD_STRATEGY"

// ParseStrategy parses a strategy name. The empty string is not a
// valid strategy; callers decide what empty means.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyMinimal, StrategyDepot, StrategyPrebuilt:
		return Strategy(name), nil
	}
	return "", fmt.Errorf("unknown build strategy %q (want minimal, depot or prebuilt)", name)
}

// DefaultStrategy returns the strategy used when neither flag nor
// environment picks one. Windows defaults to depot_tools because the
// minimal toolchain cannot locate MSVC on its own.
func DefaultStrategy(p Platform) Strategy {
	if p.OS == Windows {
		return StrategyDepot
	}
	return StrategyMinimal
}

// SelectStrategy resolves the strategy for a target platform.
// Precedence: explicit flag value, then CRASHPAD_BUILD_STRATEGY, then
// the platform default. The chosen strategy is validated against the
// platform before it is returned.
func SelectStrategy(flagValue string, p Platform, m *Manifest) (Strategy, error) {
	name := flagValue
	if name == "" {
		name = os.Getenv(StrategyEnvVar)
	}

	var s Strategy
	if name == "" {
		s = DefaultStrategy(p)
	} else {
		parsed, err := ParseStrategy(name)
		if err != nil {
			return "", err
		}
		s = parsed
	}

	if err := validateStrategy(s, p, m); err != nil {
		return "", err
	}
	return s, nil
}

// validateStrategy rejects strategy/platform pairs that cannot work,
// before any network or disk activity happens.
func validateStrategy(s Strategy, p Platform, m *Manifest) error {
	switch s {
	case StrategyPrebuilt:
		if m.Prebuilt.URL == "" {
			return fmt.Errorf("prebuilt strategy selected but the manifest has no prebuilt URL")
		}
		if p.OS == IOS && p.Simulator {
			// Simulator slices are not published; they must be built.
			return fmt.Errorf("no prebuilt archives are published for %s; build from source", p)
		}
	case StrategyDepot:
		if p.OS == IOS && Host().OS != MacOS {
			return fmt.Errorf("ios targets require a macos build host")
		}
	case StrategyMinimal:
		if p.OS == Windows {
			return fmt.Errorf("the minimal toolchain cannot drive MSVC; use the depot strategy on windows")
		}
		if p.OS == IOS && Host().OS != MacOS {
			return fmt.Errorf("ios targets require a macos build host")
		}
	}

	if p.OS == Android && s != StrategyPrebuilt {
		if os.Getenv("ANDROID_NDK_HOME") == "" && os.Getenv("ANDROID_NDK_ROOT") == "" && os.Getenv("NDK_HOME") == "" {
			return fmt.Errorf("android builds need the NDK: set ANDROID_NDK_HOME")
		}
	}

	return nil
}
