package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// expandHome resolves a leading ~ in paths typed at a prompt. Paths that
// cannot be expanded are returned unchanged.
func expandHome(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed != "~" && !strings.HasPrefix(trimmed, "~/") {
		return trimmed
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return trimmed
	}

	return filepath.Join(homeDir, strings.TrimPrefix(trimmed[1:], "/"))
}
