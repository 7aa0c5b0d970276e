// Package config reads process configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func String(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func Int(k string, def int) int {
	v, err := strconv.Atoi(String(k, ""))
	if err != nil {
		return def
	}
	return v
}

func Duration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(String(k, ""))
	if err != nil {
		return def
	}
	return v
}

func Bool(k string, def bool) bool {
	switch strings.ToLower(String(k, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

// List splits a comma separated value, dropping blanks.
func List(k, def string) []string {
	var out []string
	for _, p := range strings.Split(String(k, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
