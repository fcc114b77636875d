package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/bahamoth/crashpad-go/internal/build"
	"gopkg.in/yaml.v3"
)

type platformInfo struct {
	Name      string `json:"name" yaml:"name"`
	Strategy  string `json:"default_strategy" yaml:"default_strategy"`
	Handler   string `json:"handler,omitempty" yaml:"handler,omitempty"`
	InProcess bool   `json:"in_process" yaml:"in_process"`
}

func runList(ctx *orpheus.Context) error {
	var infos []platformInfo
	for _, p := range build.Platforms() {
		infos = append(infos, platformInfo{
			Name:      p.String(),
			Strategy:  string(build.DefaultStrategy(p)),
			Handler:   p.HandlerBasename(),
			InProcess: p.InProcessHandler(),
		})
	}

	switch ctx.GetFlagString("format") {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{
			"platforms": infos,
			"total":     len(infos),
		})
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		defer func() { _ = encoder.Close() }()
		return encoder.Encode(map[string]interface{}{
			"platforms": infos,
			"total":     len(infos),
		})
	default: // table
		fmt.Println("Supported platforms:")
		fmt.Println("--------------------")

		maxNameLen := 0
		for _, info := range infos {
			if len(info.Name) > maxNameLen {
				maxNameLen = len(info.Name)
			}
		}
		for _, info := range infos {
			padding := strings.Repeat(" ", maxNameLen-len(info.Name)+2)
			handler := info.Handler
			if info.InProcess {
				handler = "(in-process)"
			}
			fmt.Printf("  %s%s%-10s%s\n", info.Name, padding, info.Strategy, handler)
		}
		fmt.Printf("\nTotal: %d platforms\n", len(infos))
		return nil
	}
}
