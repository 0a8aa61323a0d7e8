package daemon

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Renanntj/autho-archive/internal/maintenance"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a named task selection run on a cron schedule
type Job struct {
	Name     string
	Schedule string
	Tasks    maintenance.Tasks
}

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name     string
	Schedule string
	Tasks    []string
	NextRun  time.Time
	PrevRun  time.Time
}

// Scheduler manages scheduled maintenance jobs
type Scheduler struct {
	cron    *cron.Cron
	parser  cron.Parser
	run     func(*Job) error
	log     logrus.FieldLogger
	jobs    map[string]cron.EntryID
	specs   map[string]*Job
	jobsMu  sync.RWMutex
	running bool
}

// NewScheduler creates a new scheduler that calls run for each due job.
// Errors from scheduled runs are left to run to report.
func NewScheduler(log logrus.FieldLogger, run func(*Job) error) *Scheduler {
	// Standard five fields plus descriptors such as @daily
	parser := cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	cronLog := cron.PrintfLogger(log)
	c := cron.New(cron.WithParser(parser), cron.WithLogger(cronLog), cron.WithChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	))

	return &Scheduler{
		cron:   c,
		parser: parser,
		run:    run,
		log:    log,
		jobs:   make(map[string]cron.EntryID),
		specs:  make(map[string]*Job),
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job *Job) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %s already exists", job.Name)
	}

	id, err := s.cron.AddFunc(job.Schedule, func() { _ = s.run(job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule, job.Name, err)
	}

	s.jobs[job.Name] = id
	s.specs[job.Name] = job
	s.log.WithField("schedule", job.Schedule).Debugf("Added job: %s", job.Name)
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.cron.Start()
	s.running = true
	return nil
}

// Stop stops the scheduler and waits up to timeout for a running job to finish
func (s *Scheduler) Stop(timeout time.Duration) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(timeout):
		s.log.Warn("Scheduler stop timed out")
	}

	s.running = false
}

// ListJobs returns the jobs sorted by name. Before the scheduler starts,
// NextRun is computed from now.
func (s *Scheduler) ListJobs(now time.Time) []JobInfo {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	jobs := make([]JobInfo, 0, len(s.jobs))
	for name, id := range s.jobs {
		entry := s.cron.Entry(id)
		next := entry.Next
		if next.IsZero() && entry.Schedule != nil {
			next = entry.Schedule.Next(now)
		}

		spec := s.specs[name]
		jobs = append(jobs, JobInfo{
			Name:     name,
			Schedule: spec.Schedule,
			Tasks:    spec.Tasks.Names(),
			NextRun:  next,
			PrevRun:  entry.Prev,
		})
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// TriggerJob runs a job immediately, outside its schedule, and returns the
// run's error
func (s *Scheduler) TriggerJob(name string) error {
	s.jobsMu.RLock()
	job, exists := s.specs[name]
	s.jobsMu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.log.Infof("Manually triggering job: %s", name)
	return s.run(job)
}
