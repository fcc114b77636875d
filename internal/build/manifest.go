package build

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultManifest []byte

// Dep is one repository the minimal checkout clones next to the
// Crashpad sources, mirroring what gclient would have synced.
type Dep struct {
	// Path is relative to the Crashpad checkout root.
	Path     string `yaml:"path"`
	URL      string `yaml:"url"`
	Revision string `yaml:"revision"`
	// OSList limits the dep to some target OSes; empty means all.
	OSList []string `yaml:"os,omitempty"`
}

// Tool pins one downloadable build tool (GN or Ninja).
type Tool struct {
	Version string `yaml:"version"`
	// URL may reference ${tool_key} and ${tool_version}.
	URL string `yaml:"url"`
}

// PlatformConfig carries per-target manifest overrides.
type PlatformConfig struct {
	GNArgs       []string `yaml:"gn_args,omitempty"`
	NinjaTargets []string `yaml:"ninja_targets,omitempty"`
}

// Manifest is the build pipeline's pinning file. A default manifest is
// embedded in the binary; a project manifest may override or extend it
// and pull in further files via include.
type Manifest struct {
	Includes []string          `yaml:"include,omitempty"`
	Vars     map[string]string `yaml:"vars,omitempty"`

	Crashpad struct {
		URL      string `yaml:"url"`
		Revision string `yaml:"revision"`
		Deps     []Dep  `yaml:"deps,omitempty"`
	} `yaml:"crashpad"`

	Tools struct {
		GN    Tool `yaml:"gn"`
		Ninja Tool `yaml:"ninja"`
	} `yaml:"tools"`

	Prebuilt struct {
		// URL may reference ${version} and ${platform}.
		URL string `yaml:"url"`
	} `yaml:"prebuilt"`

	Platforms map[string]PlatformConfig `yaml:"platforms,omitempty"`
}

// DefaultManifest decodes the embedded manifest.
func DefaultManifest() (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(bytes.NewReader(defaultManifest)).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode embedded manifest: %v", err)
	}
	return &m, nil
}

// LoadManifest returns the embedded defaults overlaid with the YAML
// file at path, if path is non-empty. Include files are decoded into
// the same manifest afterwards, so later files win field by field; a
// missing include is a warning, not an error, matching how optional
// local overrides are used.
func LoadManifest(path string) (*Manifest, error) {
	m, err := DefaultManifest()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return m, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %v", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %v", path, err)
	}

	base := filepath.Dir(path)
	for _, inc := range m.Includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(base, inc)
		}
		incF, err := os.Open(inc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[!] Warning: Cannot Load %s\n", inc)
			continue
		}
		err = yaml.NewDecoder(incF).Decode(m)
		incF.Close()
		if err != nil {
			return nil, fmt.Errorf("decode include %s: %v", inc, err)
		}
	}

	return m, nil
}

// PlatformConfig returns the manifest overrides for a platform, zero
// value when the manifest has none.
func (m *Manifest) PlatformConfig(p Platform) PlatformConfig {
	return m.Platforms[p.String()]
}

// ToolURL renders a tool's download URL for the build host.
func (m *Manifest) ToolURL(t Tool, host Platform) (string, error) {
	key, err := host.ToolKey()
	if err != nil {
		return "", err
	}
	vars := map[string]string{"tool_key": key, "tool_version": t.Version}
	return m.expandWith(t.URL, host, vars), nil
}

// PrebuiltURL renders the release archive URL for a target.
func (m *Manifest) PrebuiltURL(p Platform) string {
	return m.Expand(m.Prebuilt.URL, p)
}

// expandWith is Expand with extra ephemeral vars layered on top.
func (m *Manifest) expandWith(text string, p Platform, extra map[string]string) string {
	saved := m.Vars
	merged := make(map[string]string, len(saved)+len(extra))
	for k, v := range saved {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	m.Vars = merged
	defer func() { m.Vars = saved }()
	return m.Expand(text, p)
}
