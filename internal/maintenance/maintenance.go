// Package maintenance runs the selected maintenance operations in order and
// collects their results into a report.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/Renanntj/autho-archive/internal/backup"
	"github.com/Renanntj/autho-archive/internal/cleaner"
	"github.com/Renanntj/autho-archive/internal/config"
	"github.com/Renanntj/autho-archive/internal/organizer"
	"github.com/Renanntj/autho-archive/internal/scanner"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Task names, in execution order
const (
	TaskOrganize   = "organize"
	TaskDuplicates = "duplicates"
	TaskBackup     = "backup"
	TaskClean      = "clean"
)

// Tasks selects which operations a run performs
type Tasks struct {
	Organize   bool
	Duplicates bool
	Backup     bool
	Clean      bool
}

// AllTasks selects every operation
func AllTasks() Tasks {
	return Tasks{Organize: true, Duplicates: true, Backup: true, Clean: true}
}

// ParseTasks builds a selection from task names. "all" selects every task.
func ParseTasks(names []string) (Tasks, error) {
	var tasks Tasks
	for _, name := range names {
		switch name {
		case TaskOrganize:
			tasks.Organize = true
		case TaskDuplicates:
			tasks.Duplicates = true
		case TaskBackup:
			tasks.Backup = true
		case TaskClean:
			tasks.Clean = true
		case "all":
			tasks = AllTasks()
		default:
			return Tasks{}, fmt.Errorf("unknown task %q", name)
		}
	}
	return tasks, nil
}

// Any reports whether at least one operation is selected
func (t Tasks) Any() bool {
	return t.Organize || t.Duplicates || t.Backup || t.Clean
}

// Names returns the selected task names in execution order
func (t Tasks) Names() []string {
	var names []string
	if t.Organize {
		names = append(names, TaskOrganize)
	}
	if t.Duplicates {
		names = append(names, TaskDuplicates)
	}
	if t.Backup {
		names = append(names, TaskBackup)
	}
	if t.Clean {
		names = append(names, TaskClean)
	}
	return names
}

// Report collects the outcome of one run. Results of tasks that did not run are nil.
type Report struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	RootDir    string    `json:"root_dir" yaml:"root_dir"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Tasks      []string  `json:"tasks" yaml:"tasks"`
	Completed  []string  `json:"completed" yaml:"completed"`
	Failed     string    `json:"failed,omitempty" yaml:"failed,omitempty"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`

	Organized  *organizer.Result    `json:"organized,omitempty" yaml:"organized,omitempty"`
	Duplicates *cleaner.CleanResult `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Backup     *backup.Result       `json:"backup,omitempty" yaml:"backup,omitempty"`
	OldFiles   *cleaner.CleanResult `json:"old_files,omitempty" yaml:"old_files,omitempty"`
	Cutoff     *time.Time           `json:"cutoff,omitempty" yaml:"cutoff,omitempty"`

	Manifest *cleaner.DeletionManifest `json:"-" yaml:"-"`
}

// Duration returns how long the run took
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Runner executes maintenance operations against one root directory
type Runner struct {
	fs     afero.Fs
	config *config.Config
	log    logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

// NewRunner creates a new Runner
func NewRunner(fs afero.Fs, cfg *config.Config, log logrus.FieldLogger) *Runner {
	return &Runner{
		fs:     fs,
		config: cfg,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// SetClock replaces the clock used for the retention cutoff and report times
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run performs the selected tasks once each, in the order organize,
// duplicates, backup, clean. The first failure stops the run; the returned
// report covers everything done up to that point.
func (r *Runner) Run(ctx context.Context, tasks Tasks) (*Report, error) {
	report := &Report{
		RunID:     r.newID(),
		RootDir:   r.config.RootDir,
		StartedAt: r.now(),
		Tasks:     tasks.Names(),
		Completed: []string{},
	}
	r.log.WithField("run", report.RunID).Debugf("Run started: %v", report.Tasks)

	c := cleaner.New(r.fs, r.log, report.RunID)
	report.Manifest = c.GetManifest()

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{TaskOrganize, func(ctx context.Context) (err error) {
			report.Organized, err = organizer.New(r.fs, r.config, r.log).Organize(ctx)
			return err
		}},
		{TaskDuplicates, func(ctx context.Context) (err error) {
			report.Duplicates, err = r.removeDuplicates(ctx, c)
			return err
		}},
		{TaskBackup, func(ctx context.Context) (err error) {
			report.Backup, err = backup.New(r.fs, r.config, r.log).Run(ctx)
			return err
		}},
		{TaskClean, func(ctx context.Context) (err error) {
			cutoff := r.now().Add(-r.config.Retention())
			report.Cutoff = &cutoff
			report.OldFiles, err = r.removeOldFiles(ctx, c, cutoff)
			return err
		}},
	}

	selected := map[string]bool{
		TaskOrganize:   tasks.Organize,
		TaskDuplicates: tasks.Duplicates,
		TaskBackup:     tasks.Backup,
		TaskClean:      tasks.Clean,
	}

	for _, step := range steps {
		if !selected[step.name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return r.fail(report, step.name, err)
		}
		if err := step.fn(ctx); err != nil {
			return r.fail(report, step.name, err)
		}
		report.Completed = append(report.Completed, step.name)
	}

	report.FinishedAt = r.now()
	return report, nil
}

func (r *Runner) fail(report *Report, task string, err error) (*Report, error) {
	report.FinishedAt = r.now()
	report.Failed = task
	report.Error = err.Error()
	r.log.WithField("run", report.RunID).Errorf("%s failed: %v", task, err)
	return report, err
}

func (r *Runner) removeDuplicates(ctx context.Context, c *cleaner.Cleaner) (*cleaner.CleanResult, error) {
	r.log.Info("Checking for duplicate files.")

	found, err := scanner.New(r.fs, r.config, r.log).ScanDuplicates(ctx)
	if err != nil {
		return nil, err
	}
	return c.Clean(ctx, found)
}

func (r *Runner) removeOldFiles(ctx context.Context, c *cleaner.Cleaner, cutoff time.Time) (*cleaner.CleanResult, error) {
	r.log.Info("Removing old files.")

	found, err := scanner.New(r.fs, r.config, r.log).ScanOldFiles(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	return c.Clean(ctx, found)
}
