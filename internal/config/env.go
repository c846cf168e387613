// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/vidshare/internal/log"
)

// EnvPrefix is the prefix of every environment key the loader reads.
const EnvPrefix = "VIDSHARE_"

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password")
}

// parseEnv reads key and converts it. Empty values and parse errors fall back
// to def; parse errors are logged at warn.
func parseEnv[T any](key string, def T, kind string, conv func(string) (T, error)) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	parsed, err := conv(v)
	if err != nil {
		ev := logger.Warn().Str("key", key).Str("kind", kind)
		if !isSensitive(key) {
			ev = ev.Str("value", v)
		}
		ev.Msg("invalid value in environment variable, using default")
		return def
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitive(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Str("value", v)
	}
	ev.Msg("using environment variable")
	return parsed
}

// ParseString reads a string from the environment or returns def.
func ParseString(key, def string) string {
	return parseEnv(key, def, "string", func(s string) (string, error) { return s, nil })
}

// ParseInt reads an integer from the environment or returns def.
func ParseInt(key string, def int) int {
	return parseEnv(key, def, "int", strconv.Atoi)
}

// ParseFloat reads a float64 from the environment or returns def.
func ParseFloat(key string, def float64) float64 {
	return parseEnv(key, def, "float", func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseDuration reads a Go duration such as "5s" from the environment.
func ParseDuration(key string, def time.Duration) time.Duration {
	return parseEnv(key, def, "duration", time.ParseDuration)
}

// ParseBool accepts true/false, 1/0 and yes/no, case-insensitively.
func ParseBool(key string, def bool) bool {
	return parseEnv(key, def, "bool", func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, strconv.ErrSyntax
	})
}

// ParseList reads a comma-separated list. Blank items are dropped.
func ParseList(key string, def []string) []string {
	return parseEnv(key, def, "list", func(s string) ([]string, error) {
		var out []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	})
}
