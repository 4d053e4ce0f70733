// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/reelscope/internal/log"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "REELSCOPE_"

// ParseString reads a string from the environment or returns defaultValue.
// The source is logged; sensitive keys are logged without their value.
func ParseString(key, defaultValue string) string {
	return parseEnv(xglog.WithComponent("config"), key, defaultValue, func(v string) (string, bool) {
		return v, true
	})
}

// ParseInt reads an integer. Unparsable values fall back to defaultValue.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(xglog.WithComponent("config"), key, defaultValue, func(v string) (int, bool) {
		i, err := strconv.Atoi(strings.TrimSpace(v))
		return i, err == nil
	})
}

// ParseFloat reads a float. Unparsable values fall back to defaultValue.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(xglog.WithComponent("config"), key, defaultValue, func(v string) (float64, bool) {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	})
}

// ParseDuration reads a Go duration such as "5s".
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(xglog.WithComponent("config"), key, defaultValue, func(v string) (time.Duration, bool) {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		return d, err == nil
	})
}

// ParseBool accepts true/false, 1/0 and yes/no, case-insensitively.
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(xglog.WithComponent("config"), key, defaultValue, func(v string) (bool, bool) {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		default:
			return false, false
		}
	})
}

func parseEnv[T any](logger zerolog.Logger, key string, defaultValue T, parse func(string) (T, bool)) T {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		reason := "using default value"
		if exists {
			reason = "using default value (environment variable is empty)"
		}
		logger.Debug().
			Str("key", key).
			Interface("default", maskedValue(key, defaultValue)).
			Str("source", "default").
			Msg(reason)
		return defaultValue
	}

	v, ok := parse(raw)
	if !ok {
		logger.Warn().
			Str("key", key).
			Interface("value", maskedValue(key, raw)).
			Interface("default", maskedValue(key, defaultValue)).
			Msg("invalid value in environment variable, using default")
		return defaultValue
	}

	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitiveKey(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Interface("value", v)
	}
	ev.Msg("using environment variable")
	return v
}

func maskedValue(key string, v any) any {
	if isSensitiveKey(key) {
		return "***"
	}
	return v
}
