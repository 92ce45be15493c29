// Command contactctl is a terminal client for the contacts API. It keeps the
// session token in a local file between invocations.
package main

import (
	"fmt"
	"os"

	"CONTACTS_BACK-END/internal/logger"
)

func main() {
	logger.InitWithWriter(envOr("CONTACTCTL_LOG_LEVEL", "warn"), "console", os.Stderr)

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
