package platform

import (
	"os"
	"path/filepath"
)

// getLinuxInfo returns platform-specific information for Linux
func getLinuxInfo(homeDir string) *Info {
	configDir := filepath.Join(homeDir, ".config")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = xdg
	}

	// xdg-user-dirs exports the localized downloads folder
	downloadsDir := filepath.Join(homeDir, "Downloads")
	if xdg := os.Getenv("XDG_DOWNLOAD_DIR"); filepath.IsAbs(xdg) {
		downloadsDir = filepath.Clean(xdg)
	}

	return &Info{
		OS:           Linux,
		HomeDir:      homeDir,
		DownloadsDir: downloadsDir,
		ConfigDir:    configDir,
	}
}
