package build

import (
	"strings"
	"testing"
)

func expandManifest(t *testing.T, vars map[string]string) *Manifest {
	t.Helper()
	m := testManifest(t)
	m.Vars = vars
	return m
}

func TestExpandSimple(t *testing.T) {
	m := expandManifest(t, map[string]string{
		"mirror": "https://mirror.example.com",
		"flags":  "-Wall -O2",
	})
	p := Platform{OS: Linux, Arch: X64}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "No substitution needed",
			input:    "plain text",
			expected: "plain text",
		},
		{
			name:     "Single variable",
			input:    "fetch from $mirror",
			expected: "fetch from https://mirror.example.com",
		},
		{
			name:     "Braced variable",
			input:    "fetch from ${mirror}/gn",
			expected: "fetch from https://mirror.example.com/gn",
		},
		{
			name:     "Multiple variables",
			input:    "$mirror with $flags",
			expected: "https://mirror.example.com with -Wall -O2",
		},
		{
			name:     "Lone dollar passes through",
			input:    "cost: 5$",
			expected: "cost: 5$",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Expand(tt.input, p); got != tt.expected {
				t.Errorf("Expand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExpandBuiltins(t *testing.T) {
	m := expandManifest(t, nil)
	m.Crashpad.Revision = "abc123"
	sim := Platform{OS: IOS, Arch: Arm64, Simulator: true}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Platform name",
			input:    "build/$platform",
			expected: "build/ios-sim-arm64",
		},
		{
			name:     "Platform via at-sign",
			input:    "out/$@",
			expected: "out/ios-sim-arm64",
		},
		{
			name:     "OS and arch",
			input:    "${os}/${arch}",
			expected: "ios/arm64",
		},
		{
			name:     "Version",
			input:    "crashpad-${version}",
			expected: "crashpad-abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Expand(tt.input, sim); got != tt.expected {
				t.Errorf("Expand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}

	t.Run("Cwd is non-empty", func(t *testing.T) {
		got := m.Expand("in $cwd", sim)
		if got == "in " || strings.Contains(got, "$cwd") {
			t.Errorf("cwd not expanded: %q", got)
		}
	})

	t.Run("Timestamp has expected shape", func(t *testing.T) {
		got := m.Expand("$TIMESTAMP", sim)
		if len(got) != 19 || strings.Count(got, "-") != 2 || strings.Count(got, ":") != 2 {
			t.Errorf("timestamp format wrong: %q", got)
		}
	})
}

func TestExpandEnvironmentFallback(t *testing.T) {
	m := expandManifest(t, map[string]string{"SHADOWED": "manifest"})
	p := Platform{OS: Linux, Arch: X64}

	t.Setenv("CRASHPAD_TEST_ENV_VAR", "from-env")
	t.Setenv("SHADOWED", "env")

	if got := m.Expand("$CRASHPAD_TEST_ENV_VAR", p); got != "from-env" {
		t.Errorf("environment fallback failed: %q", got)
	}
	// Manifest vars shadow the environment.
	if got := m.Expand("$SHADOWED", p); got != "manifest" {
		t.Errorf("manifest var should shadow environment: %q", got)
	}
}

func TestExpandUndefinedLeftInPlace(t *testing.T) {
	m := expandManifest(t, nil)
	p := Platform{OS: Linux, Arch: X64}

	tests := []struct {
		input    string
		expected string
	}{
		{"echo $UNDEFINED_VAR_98765", "echo $UNDEFINED_VAR_98765"},
		{"${ALSO_UNDEFINED_98765}", "${ALSO_UNDEFINED_98765}"},
		{"$os and $UNDEFINED_VAR_98765", "linux and $UNDEFINED_VAR_98765"},
	}

	for _, tt := range tests {
		if got := m.Expand(tt.input, p); got != tt.expected {
			t.Errorf("Expand(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func BenchmarkExpand(b *testing.B) {
	m, err := DefaultManifest()
	if err != nil {
		b.Fatal(err)
	}
	m.Vars = map[string]string{"mirror": "https://mirror.example.com"}
	p := Platform{OS: Linux, Arch: X64}
	input := "${mirror}/crashpad-${version}-${platform}.tar.gz"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Expand(input, p)
	}
}
