// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command reelscope browses a movie catalog API from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/reelscope/internal/config"
	xglog "github.com/ManuGH/reelscope/internal/log"
	"github.com/ManuGH/reelscope/internal/version"
)

// streams are the process standard streams; tests substitute buffers.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, std streams) int {
	global := flag.NewFlagSet("reelscope", flag.ContinueOnError)
	global.SetOutput(std.err)
	global.Usage = func() { printUsage(std.err) }
	configPath := global.String("config", "", "path to config file (YAML)")
	showVersion := global.Bool("version", false, "print version and exit")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		fmt.Fprintln(std.out, version.String())
		return 0
	}

	rest := global.Args()
	if len(rest) == 0 {
		printUsage(std.err)
		return 2
	}
	cmd, cmdArgs := rest[0], rest[1:]

	// Safe defaults until the configuration is loaded.
	xglog.Configure(xglog.Config{
		Level:   "warn",
		Output:  std.err,
		Service: "reelscope",
		Version: version.Version,
		Format:  "console",
	})

	switch cmd {
	case "version":
		fmt.Fprintln(std.out, version.String())
		return 0
	case "help", "-h", "--help":
		printUsage(std.out)
		return 0
	case "config":
		return runConfigCLI(cmdArgs, *configPath, std)
	}

	handler, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(std.err, "Unknown command: %s\n\n", cmd)
		printUsage(std.err)
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(std.err, "Configuration error: %v\n", err)
		return 1
	}
	xglog.Configure(xglog.Config{
		Level:   cfg.Log.Level,
		Output:  std.err,
		Service: "reelscope",
		Version: cfg.Version,
		Format:  cfg.Log.Format,
	})

	return handler(ctx, cfg, cmdArgs, std)
}

type command func(ctx context.Context, cfg config.AppConfig, args []string, std streams) int

var commands = map[string]command{
	"browse":      runBrowse,
	"movie":       runMovie,
	"login":       runLogin,
	"register":    runRegister,
	"logout":      runLogout,
	"whoami":      runWhoami,
	"mock-server": runMockServer,
}

// loadConfig resolves the config path (flag, $REELSCOPE_CONFIG, or
// $REELSCOPE_DATA/config.yaml) and loads it with env overrides.
func loadConfig(explicit string) (config.AppConfig, error) {
	path := strings.TrimSpace(explicit)
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.NewLoader(path, version.Version).Load()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: reelscope [-config file] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  browse [ADDRESS] [-q text] [-genre N] [-year-min N] [-year-max N]")
	fmt.Fprintln(w, "         [-sort title|year|rating] [-order asc|desc] [-page N] [-json] [-i]")
	fmt.Fprintln(w, "  movie ID [-json]")
	fmt.Fprintln(w, "  login [-u username] [-p password]")
	fmt.Fprintln(w, "  register [-u username] [-p password] [-name display]")
	fmt.Fprintln(w, "  logout")
	fmt.Fprintln(w, "  whoami")
	fmt.Fprintln(w, "  mock-server [-listen addr] [-latency d]")
	fmt.Fprintln(w, "  config validate|dump")
	fmt.Fprintln(w, "  version")
}
