package build

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external build commands. Verbose echoes every
// command; DryRun prints what would run without running it.
type Runner struct {
	Verbose bool
	DryRun  bool
}

// Run executes program args in dir ("" means the current directory)
// and returns its combined output. Failures include the command line
// and the tail of its output so build errors are actionable.
func (r Runner) Run(ctx context.Context, dir, program string, args ...string) (string, error) {
	line := program + " " + strings.Join(args, " ")
	if r.Verbose {
		fmt.Printf("→ %s\n", line)
	}
	if r.DryRun {
		fmt.Printf("  [DRY RUN] Would execute: %s\n", line)
		return "", nil
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s: %v\n%s", line, err, tail(string(out), 40))
	}
	if r.Verbose && strings.TrimSpace(string(out)) != "" {
		fmt.Print(string(out))
	}
	return string(out), nil
}

// Lookup reports whether a program is on PATH.
func (r Runner) Lookup(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
