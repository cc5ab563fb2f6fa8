package env

import (
	"os"
	"strings"
)

const DevVar = "MINI_DEV"

// DetectDev reports whether MINI_DEV asks for a dev build.
func DetectDev() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(DevVar))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
