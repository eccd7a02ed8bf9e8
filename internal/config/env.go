// Package config provides environment configuration helpers for sage
// commands.
package config

import "os"

// Environment variables honored by the CLI. Flags take precedence.
const (
	EnvStoreURL = "SAGE_STORE_URL"
	EnvDataDir  = "SAGE_DATA_DIR"
	EnvAddr     = "SAGE_ADDR"
)

// StoreURL returns the insight feed URL from SAGE_STORE_URL, falling back
// to the provided default.
func StoreURL(fallback string) string {
	return envOr(EnvStoreURL, fallback)
}

// DataDir returns the baseline store path from SAGE_DATA_DIR, falling back
// to the provided default.
func DataDir(fallback string) string {
	return envOr(EnvDataDir, fallback)
}

// Addr returns the web listen address from SAGE_ADDR, falling back to the
// provided default.
func Addr(fallback string) string {
	return envOr(EnvAddr, fallback)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
