//go:build ios

package crashpad

import "testing"

// The in-process start must reject NUL-bearing configuration before
// anything crosses the C boundary; C.CString would otherwise truncate
// the database path at the NUL and start against the wrong directory.
func TestStartPlatformRejectsNULPaths(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "NUL in database path",
			cfg:  Config{DatabasePath: "db\x00evil"},
		},
		{
			name: "NUL in URL",
			cfg:  Config{DatabasePath: "db", URL: "https://crashes.example.com\x00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{}
			if err := c.startPlatform(tt.cfg, nil); err == nil {
				t.Errorf("startPlatform accepted %+v, want invalid configuration", tt.cfg)
			}
		})
	}
}
