package build

import (
	"strings"
	"testing"
)

func testManifest(t *testing.T) *Manifest {
	t.Helper()
	m, err := DefaultManifest()
	if err != nil {
		t.Fatalf("DefaultManifest() error: %v", err)
	}
	return m
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{input: "minimal", want: StrategyMinimal},
		{input: "depot", want: StrategyDepot},
		{input: "prebuilt", want: StrategyPrebuilt},
		{input: "", wantErr: true},
		{input: "Minimal", wantErr: true},
		{input: "source", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseStrategy(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrategy(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultStrategy(t *testing.T) {
	if got := DefaultStrategy(Platform{OS: Windows, Arch: X64}); got != StrategyDepot {
		t.Errorf("windows default = %v, want depot", got)
	}
	for _, os := range []OS{MacOS, Linux, Android} {
		if got := DefaultStrategy(Platform{OS: os, Arch: X64}); got != StrategyMinimal {
			t.Errorf("%s default = %v, want minimal", os, got)
		}
	}
}

func TestSelectStrategyPrecedence(t *testing.T) {
	m := testManifest(t)
	linux := Platform{OS: Linux, Arch: X64}

	t.Run("Flag wins over environment", func(t *testing.T) {
		t.Setenv(StrategyEnvVar, "prebuilt")
		got, err := SelectStrategy("depot", linux, m)
		if err != nil {
			t.Fatalf("SelectStrategy error: %v", err)
		}
		if got != StrategyDepot {
			t.Errorf("got %v, want depot (flag wins)", got)
		}
	})

	t.Run("Environment wins over default", func(t *testing.T) {
		t.Setenv(StrategyEnvVar, "prebuilt")
		got, err := SelectStrategy("", linux, m)
		if err != nil {
			t.Fatalf("SelectStrategy error: %v", err)
		}
		if got != StrategyPrebuilt {
			t.Errorf("got %v, want prebuilt (env wins)", got)
		}
	})

	t.Run("Default when nothing is set", func(t *testing.T) {
		t.Setenv(StrategyEnvVar, "")
		got, err := SelectStrategy("", linux, m)
		if err != nil {
			t.Fatalf("SelectStrategy error: %v", err)
		}
		if got != StrategyMinimal {
			t.Errorf("got %v, want minimal (platform default)", got)
		}
	})

	t.Run("Unknown name is fatal", func(t *testing.T) {
		if _, err := SelectStrategy("fastest", linux, m); err == nil {
			t.Error("unknown strategy name should be an error")
		}
	})

	t.Run("Unknown name in environment is fatal", func(t *testing.T) {
		t.Setenv(StrategyEnvVar, "yolo")
		if _, err := SelectStrategy("", linux, m); err == nil {
			t.Error("unknown strategy in environment should be an error")
		}
	})
}

func TestSelectStrategyConflicts(t *testing.T) {
	m := testManifest(t)

	t.Run("Minimal on Windows", func(t *testing.T) {
		_, err := SelectStrategy("minimal", Platform{OS: Windows, Arch: X64}, m)
		if err == nil || !strings.Contains(err.Error(), "depot") {
			t.Errorf("minimal on windows should point at depot, got %v", err)
		}
	})

	t.Run("Prebuilt without a release URL", func(t *testing.T) {
		noURL := testManifest(t)
		noURL.Prebuilt.URL = ""
		if _, err := SelectStrategy("prebuilt", Platform{OS: Linux, Arch: X64}, noURL); err == nil {
			t.Error("prebuilt without a URL should be an error")
		}
	})

	t.Run("Prebuilt for the iOS simulator", func(t *testing.T) {
		sim := Platform{OS: IOS, Arch: Arm64, Simulator: true}
		if _, err := SelectStrategy("prebuilt", sim, m); err == nil {
			t.Error("prebuilt for the ios simulator should be an error")
		}
	})

	t.Run("Android without the NDK", func(t *testing.T) {
		t.Setenv("ANDROID_NDK_HOME", "")
		t.Setenv("ANDROID_NDK_ROOT", "")
		t.Setenv("NDK_HOME", "")
		_, err := SelectStrategy("minimal", Platform{OS: Android, Arch: Arm64}, m)
		if err == nil || !strings.Contains(err.Error(), "NDK") {
			t.Errorf("android without NDK should mention the NDK, got %v", err)
		}
	})

	t.Run("Android prebuilt needs no NDK", func(t *testing.T) {
		t.Setenv("ANDROID_NDK_HOME", "")
		t.Setenv("ANDROID_NDK_ROOT", "")
		t.Setenv("NDK_HOME", "")
		if _, err := SelectStrategy("prebuilt", Platform{OS: Android, Arch: Arm64}, m); err != nil {
			t.Errorf("android prebuilt should not need the NDK: %v", err)
		}
	})
}
