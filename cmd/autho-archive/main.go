package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Renanntj/autho-archive/internal/cleaner"
	"github.com/Renanntj/autho-archive/internal/config"
	"github.com/Renanntj/autho-archive/internal/daemon"
	"github.com/Renanntj/autho-archive/internal/logging"
	"github.com/Renanntj/autho-archive/internal/maintenance"
	"github.com/Renanntj/autho-archive/internal/platform"
	"github.com/Renanntj/autho-archive/internal/reporter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath   string
	verbose      bool
	outputFmt    string
	reportFile   string
	manifestFile string

	doOrganize   bool
	doDuplicates bool
	doBackup     bool
	doClean      bool
	doAll        bool

	testSchedules bool
	runJob        string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError reports a failed command. A file the cleaner stopped on gets
// an extra line saying what to do about it.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)

	var delErr *cleaner.DeletionError
	if errors.As(err, &delErr) {
		fmt.Fprintln(w, delErr.UserMessage())
	}
}

var rootCmd = &cobra.Command{
	Use:   "autho-archive",
	Short: "Organize, deduplicate, back up and clean a downloads folder",
	Long: `autho-archive keeps a downloads folder tidy. It sorts files into category
folders by extension, removes byte-identical duplicates, mirrors the folder into
a backup directory, and deletes files older than the retention window.

Selected tasks always run in the order organize, duplicates, backup, clean.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		var format reporter.OutputFormat
		if outputFmt != "" {
			if format, err = reporter.ParseFormat(outputFmt); err != nil {
				return err
			}
		}

		fs := afero.NewOsFs()
		log, closer, err := logging.Open(fs, cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return err
		}
		defer closer.Close()

		if verbose {
			log.SetLevel(logrus.DebugLevel)
			log.SetOutput(io.MultiWriter(log.Out, os.Stderr))
		}

		runner := maintenance.NewRunner(fs, cfg, log)
		report, runErr := runner.Run(context.Background(), selectedTasks())

		if manifestFile != "" && report != nil {
			if err := report.Manifest.Save(fs, manifestFile); err != nil {
				return fmt.Errorf("failed to save manifest: %w", err)
			}
		}

		if report != nil {
			if err := writeReport(cmd.OutOrStdout(), fs, report, format); err != nil {
				return err
			}
		}

		if runErr != nil {
			return runErr
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Execution finished.")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	Long:  `Shows the effective configuration: the config file merged over the defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.OutOrStdout())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.OutOrStdout())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := resolveConfigPath()
		if err != nil {
			return err
		}

		created, err := config.EnsureConfigExists(cfgPath)
		if err != nil {
			return err
		}

		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", cfgPath)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", cfgPath)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfgPath)
		return nil
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the configured schedules until interrupted",
	Long: `Runs the tasks listed under daemon.schedules in the config file on their cron
schedules. Runs never overlap. SIGINT or SIGTERM stops the daemon after the
current file.

--run NAME runs one schedule's tasks immediately and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		fs := afero.NewOsFs()
		log, closer, err := logging.Open(fs, cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return err
		}
		defer closer.Close()

		if verbose {
			log.SetLevel(logrus.DebugLevel)
			log.SetOutput(io.MultiWriter(log.Out, os.Stderr))
		}

		d, err := daemon.New(fs, cfg, log)
		if err != nil {
			return err
		}

		if testSchedules {
			for _, job := range d.Scheduler().ListJobs(time.Now()) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %v (next run: %s)\n",
					job.Name, job.Schedule, job.Tasks, job.NextRun.Format(time.RFC1123))
			}
			return nil
		}

		if runJob != "" {
			return d.Scheduler().TriggerJob(runJob)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintln(cmd.OutOrStdout(), "Starting autho-archive daemon...")
		return d.Run(ctx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "autho-archive %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log debug output and echo the log to stderr")

	// Task selection
	rootCmd.Flags().BoolVar(&doOrganize, "organize", false, "sort files into category folders")
	rootCmd.Flags().BoolVar(&doDuplicates, "duplicates", false, "remove duplicate files, keeping the first found")
	rootCmd.Flags().BoolVar(&doBackup, "backup", false, "replace the backup directory with a copy of the folder")
	rootCmd.Flags().BoolVar(&doClean, "clean", false, "remove files older than the retention window")
	rootCmd.Flags().BoolVar(&doAll, "all", false, "run every task")

	// Reporting
	rootCmd.Flags().StringVar(&outputFmt, "output", "", "print a run report (summary, table, json, yaml)")
	rootCmd.Flags().StringVar(&reportFile, "report-file", "", "save the run report to a file")
	rootCmd.Flags().StringVar(&manifestFile, "manifest", "", "save the list of deleted files to a file")

	daemonCmd.Flags().BoolVar(&testSchedules, "test", false, "validate the schedules, print their next run and exit")
	daemonCmd.Flags().StringVar(&runJob, "run", "", "run the named schedule once and exit")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(versionCmd)
}

// selectedTasks maps the task flags to a selection. Repeating a task through
// --all does not run it twice.
func selectedTasks() maintenance.Tasks {
	if doAll {
		return maintenance.AllTasks()
	}
	return maintenance.Tasks{
		Organize:   doOrganize,
		Duplicates: doDuplicates,
		Backup:     doBackup,
		Clean:      doClean,
	}
}

// writeReport prints the report when --output is set and saves it when
// --report-file is set. A saved report defaults to JSON.
func writeReport(w io.Writer, fs afero.Fs, report *maintenance.Report, format reporter.OutputFormat) error {
	if format != "" {
		if err := reporter.New(w, format).Report(report); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
	}

	if reportFile != "" {
		if format == "" {
			format = reporter.FormatJSON
		}
		if err := reporter.SaveToFile(fs, report, reportFile, format); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
	}

	return nil
}

func showConfig(w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfgPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		fmt.Fprintf(w, "# %s does not exist; showing defaults\n", cfgPath)
	} else {
		fmt.Fprintf(w, "# %s\n", cfgPath)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(cfg)
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}

	info, err := platform.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get platform info: %w", err)
	}
	return config.GetConfigPath(info.ConfigDir), nil
}

func loadConfig() (*config.Config, error) {
	info, err := platform.GetInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get platform info: %w", err)
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.GetConfigPath(info.ConfigDir)
	}

	return config.Load(cfgPath, info)
}
