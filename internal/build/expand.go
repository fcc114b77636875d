package build

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// varPattern matches $var, ${var} and $@.
var varPattern = regexp.MustCompile(`\$\w+|\$\{[^}]+\}|\$@`)

// Expand substitutes variable references in text. Each reference is
// resolved against the manifest vars, the builtins, and finally the
// environment; unresolved references are warned about on stderr and
// left in place so the failure surfaces where the value is used.
func (m *Manifest) Expand(text string, p Platform) string {
	matches := varPattern.FindAllString(text, -1)

	for _, match := range matches {
		name := strings.TrimPrefix(match, "$")
		name = strings.Trim(name, "{}")

		val := m.getVar(name, p)
		if val == "" {
			fmt.Fprintf(os.Stderr, "[warn] undefined variable %s for platform %s\n", match, p)
			continue
		}

		text = strings.Replace(text, match, val, 1)
	}

	return text
}

// getVar resolves one variable: builtins first, then manifest vars,
// then the environment.
func (m *Manifest) getVar(name string, p Platform) string {
	switch name {
	case "@", "platform":
		return p.String()
	case "os":
		return string(p.OS)
	case "arch":
		return string(p.Arch)
	case "version":
		return m.Crashpad.Revision
	case "cache_dir":
		dir, err := CacheDir()
		if err != nil {
			return ""
		}
		return dir
	case "cwd":
		path, _ := os.Getwd()
		return path
	case "TIMESTAMP":
		return time.Now().Format("2006-01-02 15:04:05")
	default:
		if val, ok := m.Vars[name]; ok {
			return val
		}
		return os.Getenv(name)
	}
}
