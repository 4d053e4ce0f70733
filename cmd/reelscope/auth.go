// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/reelscope/internal/config"
	"github.com/ManuGH/reelscope/internal/session"
)

type credentialFlags struct {
	username    string
	password    string
	displayName string
}

func parseCredentials(name string, args []string, withDisplay bool, std streams) (credentialFlags, bool) {
	fs := flag.NewFlagSet("reelscope "+name, flag.ContinueOnError)
	fs.SetOutput(std.err)
	var c credentialFlags
	fs.StringVar(&c.username, "u", "", "username")
	fs.StringVar(&c.password, "p", "", "password (read from stdin when omitted)")
	if withDisplay {
		fs.StringVar(&c.displayName, "name", "", "display name")
	}
	if err := fs.Parse(args); err != nil {
		return c, false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(std.err, "Error: unexpected argument %q\n", fs.Arg(0))
		return c, false
	}

	in := bufio.NewReader(std.in)
	if c.username == "" {
		c.username = prompt(in, std, "Username: ")
	}
	if c.password == "" {
		c.password = prompt(in, std, "Password: ")
	}
	return c, true
}

func prompt(in *bufio.Reader, std streams, label string) string {
	fmt.Fprint(std.err, label)
	line, _ := in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// withSession opens the app and the persisted session for an auth command.
func withSession(ctx context.Context, cfg config.AppConfig, std streams, fn func(*session.Store) int) int {
	a, err := newApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(std.err, "Error: %v\n", err)
		return 1
	}
	defer a.Close()
	sess, err := a.session(ctx)
	if err != nil {
		fmt.Fprintf(std.err, "Error: %v\n", err)
		return 1
	}
	return fn(sess)
}

func runLogin(ctx context.Context, cfg config.AppConfig, args []string, std streams) int {
	creds, ok := parseCredentials("login", args, false, std)
	if !ok {
		return 2
	}
	return withSession(ctx, cfg, std, func(sess *session.Store) int {
		s, err := sess.Login(ctx, creds.username, creds.password)
		if err != nil {
			fmt.Fprintln(std.err, session.UserMessage(err))
			return 1
		}
		fmt.Fprintf(std.out, "Signed in as %s\n", s.User.Name())
		return 0
	})
}

func runRegister(ctx context.Context, cfg config.AppConfig, args []string, std streams) int {
	creds, ok := parseCredentials("register", args, true, std)
	if !ok {
		return 2
	}
	return withSession(ctx, cfg, std, func(sess *session.Store) int {
		s, err := sess.Register(ctx, creds.username, creds.password, creds.displayName)
		if err != nil {
			fmt.Fprintln(std.err, session.UserMessage(err))
			return 1
		}
		fmt.Fprintf(std.out, "Registered and signed in as %s\n", s.User.Name())
		return 0
	})
}

func runLogout(ctx context.Context, cfg config.AppConfig, args []string, std streams) int {
	if len(args) > 0 {
		fmt.Fprintln(std.err, "Usage: reelscope logout")
		return 2
	}
	return withSession(ctx, cfg, std, func(sess *session.Store) int {
		if err := sess.Logout(ctx); err != nil {
			fmt.Fprintf(std.err, "Signed out, but the stored session could not be removed: %v\n", err)
			return 1
		}
		fmt.Fprintln(std.out, "Signed out")
		return 0
	})
}

func runWhoami(ctx context.Context, cfg config.AppConfig, args []string, std streams) int {
	if len(args) > 0 {
		fmt.Fprintln(std.err, "Usage: reelscope whoami")
		return 2
	}
	return withSession(ctx, cfg, std, func(sess *session.Store) int {
		if sess.State() != session.Authenticated {
			fmt.Fprintln(std.out, "Not signed in")
			return 1
		}
		if err := sess.Revalidate(ctx); err != nil {
			if ctx.Err() != nil {
				return interrupted(std, ctx.Err())
			}
			fmt.Fprintln(std.err, "Stored session could not be verified; signed out")
			return 1
		}
		cur := sess.Current()
		if cur == nil {
			fmt.Fprintln(std.out, "Not signed in")
			return 1
		}
		fmt.Fprintf(std.out, "%s (@%s)\n", cur.User.Name(), cur.User.Username)
		if exp, ok := sess.ExpiresAt(); ok {
			fmt.Fprintf(std.out, "Token expires %s (in %s)\n",
				exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Minute))
		}
		return 0
	})
}
