// Package daemon runs maintenance tasks on cron schedules until stopped.
package daemon

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Renanntj/autho-archive/internal/config"
	"github.com/Renanntj/autho-archive/internal/maintenance"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// StopTimeout bounds how long shutdown waits for an in-flight run
const StopTimeout = time.Minute

// Daemon runs the configured schedules. Runs never overlap: a job that comes
// due while another is running waits for it.
type Daemon struct {
	fs        afero.Fs
	config    *config.Config
	log       logrus.FieldLogger
	runner    *maintenance.Runner
	scheduler *Scheduler

	runMu sync.Mutex

	mu      sync.RWMutex
	ctx     context.Context
	running bool
}

// New creates a daemon with one job per configured schedule
func New(fs afero.Fs, cfg *config.Config, log logrus.FieldLogger) (*Daemon, error) {
	if len(cfg.Daemon.Schedules) == 0 {
		return nil, fmt.Errorf("no schedules configured")
	}

	d := &Daemon{
		fs:     fs,
		config: cfg,
		log:    log,
		runner: maintenance.NewRunner(fs, cfg, log),
		ctx:    context.Background(),
	}
	d.scheduler = NewScheduler(log, func(job *Job) error {
		_, err := d.RunJob(job)
		return err
	})

	for _, schedule := range cfg.Daemon.Schedules {
		tasks, err := maintenance.ParseTasks(schedule.Tasks)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", schedule.Name, err)
		}

		job := &Job{Name: schedule.Name, Schedule: schedule.Schedule, Tasks: tasks}
		if err := d.scheduler.AddJob(job); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Scheduler returns the daemon's scheduler
func (d *Daemon) Scheduler() *Scheduler {
	return d.scheduler
}

// Run starts the scheduler and blocks until ctx is cancelled. Cancelling ctx
// also stops an in-flight run at the next file boundary.
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.ctx = ctx
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	if err := d.acquireLock(); err != nil {
		return err
	}
	defer d.releaseLock()

	if err := d.scheduler.Start(); err != nil {
		return err
	}

	d.log.Infof("Daemon started with %d schedules.", len(d.config.Daemon.Schedules))
	<-ctx.Done()

	d.log.Info("Daemon shutting down.")
	d.scheduler.Stop(StopTimeout)
	return nil
}

// RunJob executes one job's tasks and logs the outcome
func (d *Daemon) RunJob(job *Job) (*maintenance.Report, error) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.RLock()
	ctx := d.ctx
	d.mu.RUnlock()

	log := d.log.WithField("job", job.Name)
	log.Infof("Scheduled run started: %s", job.Name)

	report, err := d.runner.Run(ctx, job.Tasks)
	if err != nil {
		log.Errorf("Scheduled run failed: %s: %v", job.Name, err)
		return report, err
	}

	log.WithField("run", report.RunID).Infof("Scheduled run finished: %s in %v", job.Name, report.Duration().Round(time.Millisecond))
	return report, nil
}

// acquireLock creates the pid file, failing if another daemon holds it
func (d *Daemon) acquireLock() error {
	pidFile := d.config.Daemon.PidFile
	if pidFile == "" {
		return nil
	}

	file, err := d.fs.OpenFile(pidFile, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.Errorf("daemon already running (pid file %s exists)", pidFile)
		}
		return errors.Wrap(err, "creating pid file")
	}
	defer file.Close()

	_, err = fmt.Fprintf(file, "%d\n", os.Getpid())
	return errors.Wrap(err, "writing pid file")
}

func (d *Daemon) releaseLock() {
	pidFile := d.config.Daemon.PidFile
	if pidFile == "" {
		return
	}
	if err := d.fs.Remove(pidFile); err != nil {
		d.log.WithError(err).Warn("Failed to remove pid file")
	}
}
