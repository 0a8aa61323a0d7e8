package config

// DefaultRetentionDays is how old a file must be before the cleaner removes it
const DefaultRetentionDays = 30

// GetDefault returns the default configuration. Paths are relative to "~"
// and are expanded by Load, which also swaps in the platform downloads folder.
func GetDefault() *Config {
	return &Config{
		RootDir:       "~/Downloads",
		BackupDir:     "~/Downloads_Backup",
		LogFile:       "~/auto_manager.log",
		LogLevel:      "info",
		RetentionDays: DefaultRetentionDays,
		Categories: []Category{
			{Name: "PDF", Extensions: []string{".pdf"}},
			{Name: "IMAGES", Extensions: []string{".jpg", ".jpeg", ".png"}},
			{Name: "ZIP", Extensions: []string{".zip"}},
			{Name: "DOCUMENTS", Extensions: []string{".doc", ".docx", ".xls", ".xlsx"}},
		},
	}
}

// GetExampleConfig returns an example configuration with comments
func GetExampleConfig() string {
	return `# autho-archive configuration
# Location: ~/.config/autho-archive/config.yaml

# Directory that gets organized, deduplicated, backed up and cleaned
root_dir: ~/Downloads

# Mirror target. Replaced entirely on every backup run.
# Must not be inside root_dir (and root_dir must not be inside it).
backup_dir: ~/Downloads_Backup

# Append-only activity log
log_file: ~/auto_manager.log

# debug, info, warning or error
log_level: info

# Files whose modification time is older than this many days are deleted by --clean
retention_days: 30

# Extension table used by --organize. Matching is case-insensitive and an
# extension may belong to only one category.
categories:
  - name: PDF
    extensions: [.pdf]
  - name: IMAGES
    extensions: [.jpg, .jpeg, .png]
  - name: ZIP
    extensions: [.zip]
  - name: DOCUMENTS
    extensions: [.doc, .docx, .xls, .xlsx]

# Directories that must never be used as root_dir or backup_dir, in addition
# to the built-in system paths.
# protected_paths:
#   - ~/Documents

# Schedules for "autho-archive daemon". Cron expressions use five fields
# (minute hour day-of-month month day-of-week) or descriptors like @daily.
# daemon:
#   pid_file: ~/.autho-archive.pid
#   schedules:
#     - name: nightly
#       schedule: "0 2 * * *"
#       tasks: [organize, duplicates, backup, clean]
`
}
