// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/reelscope/internal/config"
)

func runConfigCLI(args []string, globalPath string, std streams) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(std)
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:], globalPath, std)
	case "dump":
		return runConfigDump(args[1:], globalPath, std)
	default:
		fmt.Fprintf(std.err, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(std)
		return 2
	}
}

func printConfigUsage(std streams) {
	fmt.Fprintln(std.err, "Usage:")
	fmt.Fprintln(std.err, "  reelscope config validate [--file|-f config.yaml]")
	fmt.Fprintln(std.err, "  reelscope config dump [--file|-f config.yaml] [--format=yaml|json]")
}

func runConfigValidate(args []string, globalPath string, std streams) int {
	fs := flag.NewFlagSet("reelscope config validate", flag.ContinueOnError)
	fs.SetOutput(std.err)

	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := configPathFor(file, globalPath)
	if _, err := loadConfig(path); err != nil {
		fmt.Fprintf(std.err, "Configuration error in %s:\n  %v\n", describePath(path), err)
		return 1
	}

	fmt.Fprintf(std.out, "✓ %s is valid\n", describePath(path))
	return 0
}

func runConfigDump(args []string, globalPath string, std streams) int {
	fs := flag.NewFlagSet("reelscope config dump", flag.ContinueOnError)
	fs.SetOutput(std.err)

	var file, format string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := configPathFor(file, globalPath)
	cfg, err := loadConfig(path)
	if err != nil {
		fmt.Fprintf(std.err, "Configuration error in %s:\n  %v\n", describePath(path), err)
		return 1
	}

	masked, err := config.Dump(cfg)
	if err != nil {
		fmt.Fprintf(std.err, "Failed to render configuration: %v\n", err)
		return 1
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		_, _ = std.out.Write(masked)
		return 0
	case "json":
		var tree map[string]any
		if err := yaml.Unmarshal(masked, &tree); err != nil {
			fmt.Fprintf(std.err, "Failed to encode JSON: %v\n", err)
			return 1
		}
		enc := json.NewEncoder(std.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tree); err != nil {
			fmt.Fprintf(std.err, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(std.err, "Error: unsupported --format %q (use yaml or json)\n", format)
		return 2
	}
}

func configPathFor(file, globalPath string) string {
	if p := strings.TrimSpace(file); p != "" {
		return p
	}
	if p := strings.TrimSpace(globalPath); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func describePath(path string) string {
	if path == "" {
		return "effective configuration (defaults + env)"
	}
	return path
}
