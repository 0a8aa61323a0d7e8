package platform

import "path/filepath"

// getMacOSInfo returns platform-specific information for macOS
func getMacOSInfo(homeDir string) *Info {
	return &Info{
		OS:           MacOS,
		HomeDir:      homeDir,
		DownloadsDir: filepath.Join(homeDir, "Downloads"),
		// Matches the ~/.config layout used on Linux so one config file works on both.
		ConfigDir: filepath.Join(homeDir, ".config"),
	}
}
