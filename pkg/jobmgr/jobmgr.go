// Package jobmgr runs named background jobs with cancellation, status
// callbacks and in-memory tracking of what is running.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(ctx, func(msg string) {
//	    logger.Debug().Msg(msg)
//	})
//
//	err := jm.StartAsync("import:PL123", func(ctx context.Context) error {
//	    // do work until ctx is cancelled
//	    return nil
//	})
//
//	// later...
//	_ = jm.Stop("import:PL123")
//
// No retries, no worker pool, no persistence. Jobs are removed on completion.
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrJobRunning    = errors.New("job is already running")
	ErrJobNotRunning = errors.New("job is not running")
)

// Job represents a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:import:PL123
//	error:import:PL123:quota exceeded
//	done:import:PL123
type StatusReporter func(string)

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	parent   context.Context
	jobs     map[string]*Job
	wg       sync.WaitGroup
	Reporter StatusReporter
}

// NewManager creates a Manager whose jobs are cancelled with parent.
// The reporter callback may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	if parent == nil {
		parent = context.Background()
	}
	return &Manager{
		parent:   parent,
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartAsync runs a job in a separate goroutine and returns immediately.
// A job with the same name already running yields ErrJobRunning.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("job '%s': %w", name, ErrJobRunning)
	}
	ctx, cancel := context.WithCancel(m.parent)
	job := &Job{Name: name, Cancel: cancel}
	m.jobs[name] = job
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()

		m.report("running:" + name)

		err := runner(ctx)
		if err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		if m.jobs[name] == job {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s': %w", name, ErrJobNotRunning)
	}

	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// StopPrefix cancels every job whose name starts with prefix and returns
// how many were cancelled.
func (m *Manager) StopPrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for name, job := range m.jobs {
		if strings.HasPrefix(name, prefix) {
			job.Cancel()
			delete(m.jobs, name)
			n++
		}
	}
	return n
}

// StopAll cancels every running job.
func (m *Manager) StopAll() int {
	return m.StopPrefix("")
}

// Wait blocks until every started job has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// List returns the names of active jobs in sorted order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: import:PL1, import:PL2"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

// report delivers lifecycle messages to the reporter if present.
func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
