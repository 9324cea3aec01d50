package main

import (
	"os"

	"cstats/internal/errors"
	"cstats/internal/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger := logging.NewLogger(logging.Config{
			Format: "human",
			Level:  "info",
		})
		logger.Error("Command execution failed", map[string]interface{}{
			"error": err.Error(),
			"code":  string(errors.CodeOf(err)),
		})
		os.Exit(exitStatus(err))
	}
}

// exitStatus maps fatal error codes to exit 2 and recoverable ones, an
// empty corpus for example, to exit 1.
func exitStatus(err error) int {
	if errors.IsFatal(err) {
		return 2
	}
	return 1
}
