package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Renanntj/autho-archive/internal/platform"
	"github.com/Renanntj/autho-archive/internal/security"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	RootDir       string     `yaml:"root_dir"`
	BackupDir     string     `yaml:"backup_dir"`
	LogFile       string     `yaml:"log_file"`
	LogLevel      string     `yaml:"log_level"`
	RetentionDays int        `yaml:"retention_days"`
	Categories    []Category `yaml:"categories"`

	// Extra directories that may never be used as root or backup
	ProtectedPaths []string `yaml:"protected_paths,omitempty"`

	Daemon DaemonConfig `yaml:"daemon,omitempty"`
}

// DaemonConfig holds the schedules run by the daemon command
type DaemonConfig struct {
	PidFile   string     `yaml:"pid_file,omitempty"`
	Schedules []Schedule `yaml:"schedules,omitempty"`
}

// Schedule runs a set of tasks on a cron expression
type Schedule struct {
	Name     string   `yaml:"name"`
	Schedule string   `yaml:"schedule"`
	Tasks    []string `yaml:"tasks"`
}

// Category maps a destination folder name to the extensions sorted into it
type Category struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
}

// Load loads configuration from a file. A missing file yields the defaults,
// with the root set to the platform's downloads folder; a partial file only
// overrides the keys it sets. "~" in paths expands to the home directory.
func Load(configPath string, info *platform.Info) (*Config, error) {
	config := GetDefault()
	if info.DownloadsDir != "" {
		config.RootDir = info.DownloadsDir
	}

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.ExpandPaths(info.HomeDir)
	config.Normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ExpandPaths resolves "~" in every configured path
func (c *Config) ExpandPaths(homeDir string) {
	c.RootDir = platform.ExpandHome(c.RootDir, homeDir)
	c.BackupDir = platform.ExpandHome(c.BackupDir, homeDir)
	c.LogFile = platform.ExpandHome(c.LogFile, homeDir)
	c.Daemon.PidFile = platform.ExpandHome(c.Daemon.PidFile, homeDir)
	for i, path := range c.ProtectedPaths {
		c.ProtectedPaths[i] = platform.ExpandHome(path, homeDir)
	}
}

// Normalize cleans paths and lower-cases extensions, adding a leading dot where missing
func (c *Config) Normalize() {
	if c.RootDir != "" {
		c.RootDir = filepath.Clean(c.RootDir)
	}
	if c.BackupDir != "" {
		c.BackupDir = filepath.Clean(c.BackupDir)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	for i, path := range c.ProtectedPaths {
		if path != "" {
			c.ProtectedPaths[i] = filepath.Clean(path)
		}
	}

	for i := range c.Categories {
		c.Categories[i].Name = strings.TrimSpace(c.Categories[i].Name)
		for j, ext := range c.Categories[i].Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext != "" && !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			c.Categories[i].Extensions[j] = ext
		}
	}

	for i := range c.Daemon.Schedules {
		c.Daemon.Schedules[i].Name = strings.TrimSpace(c.Daemon.Schedules[i].Name)
		for j, task := range c.Daemon.Schedules[i].Tasks {
			c.Daemon.Schedules[i].Tasks[j] = strings.ToLower(strings.TrimSpace(task))
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention days must be >= 0")
	}

	switch c.LogLevel {
	case "", "debug", "info", "warning", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.LogFile == "" {
		return fmt.Errorf("log file must be set")
	}

	for _, path := range c.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %q", path)
		}
	}

	validator := c.PathValidator()
	if err := validator.ValidateManagedDir(c.RootDir); err != nil {
		return fmt.Errorf("root dir: %w", err)
	}
	if err := validator.ValidateManagedDir(c.BackupDir); err != nil {
		return fmt.Errorf("backup dir: %w", err)
	}

	// Mirroring into (or out of) a nested directory would copy the tree into itself.
	if security.IsWithin(c.RootDir, c.BackupDir) || security.IsWithin(c.BackupDir, c.RootDir) {
		return fmt.Errorf("backup dir %s and root dir %s must not contain each other", c.BackupDir, c.RootDir)
	}

	names := make(map[string]bool)
	owners := make(map[string]string)
	for _, category := range c.Categories {
		if category.Name == "" {
			return fmt.Errorf("category name must not be empty")
		}
		if strings.ContainsRune(category.Name, filepath.Separator) || category.Name == "." || category.Name == ".." {
			return fmt.Errorf("category name %q is not a valid folder name", category.Name)
		}
		if names[category.Name] {
			return fmt.Errorf("duplicate category %q", category.Name)
		}
		names[category.Name] = true

		if len(category.Extensions) == 0 {
			return fmt.Errorf("category %q has no extensions", category.Name)
		}
		for _, ext := range category.Extensions {
			if ext == "" || ext == "." {
				return fmt.Errorf("category %q has an empty extension", category.Name)
			}
			if owner, ok := owners[ext]; ok && owner != category.Name {
				return fmt.Errorf("extension %q is mapped to both %q and %q", ext, owner, category.Name)
			}
			owners[ext] = category.Name
		}
	}

	return c.Daemon.validate()
}

// PathValidator returns the built-in protected paths plus the configured ones
func (c *Config) PathValidator() *security.PathValidator {
	validator := security.NewPathValidator()
	for _, path := range c.ProtectedPaths {
		validator.AddProtectedPath(path)
	}
	return validator
}

func (d *DaemonConfig) validate() error {
	if d.PidFile != "" && !filepath.IsAbs(d.PidFile) {
		return fmt.Errorf("pid file must be absolute: %q", d.PidFile)
	}

	names := make(map[string]bool)
	for _, schedule := range d.Schedules {
		if schedule.Name == "" {
			return fmt.Errorf("schedule name must not be empty")
		}
		if names[schedule.Name] {
			return fmt.Errorf("duplicate schedule %q", schedule.Name)
		}
		names[schedule.Name] = true

		if strings.TrimSpace(schedule.Schedule) == "" {
			return fmt.Errorf("schedule %q has no cron expression", schedule.Name)
		}
		if len(schedule.Tasks) == 0 {
			return fmt.Errorf("schedule %q has no tasks", schedule.Name)
		}
	}

	return nil
}

// Retention returns the retention window as a duration
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// ExtensionIndex returns a lookup from lower-cased extension to category name
func (c *Config) ExtensionIndex() map[string]string {
	index := make(map[string]string)
	for _, category := range c.Categories {
		for _, ext := range category.Extensions {
			index[strings.ToLower(ext)] = category.Name
		}
	}
	return index
}

// GetConfigPath returns the default config path under configDir
func GetConfigPath(configDir string) string {
	return filepath.Join(configDir, "autho-archive", "config.yaml")
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists(configPath string) (bool, error) {
	if _, err := os.Stat(configPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(GetExampleConfig()), 0644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
