// Package task tracks in-flight dispatch requests so they can be listed and cancelled.
package task

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rafabd1/ceres/internal/types"
	"github.com/rafabd1/ceres/pkg/utils"
)

// TaskStatus represents the state of a task.
type TaskStatus string

const (
	StatusRunning   TaskStatus = "running"
	StatusSuccess   TaskStatus = "success"
	StatusFailed    TaskStatus = "failed"
	StatusCancelled TaskStatus = "cancelled"
)

const (
	defaultHistory = 100
	eventBuffer    = 64
)

// ErrStopped is returned by Run after Stop.
var ErrStopped = errors.New("task manager stopped")

// Task is one request handled by the dispatcher.
type Task struct {
	ID        string
	Input     string
	Source    string // "text" or "voice"
	Status    TaskStatus
	StartTime time.Time
	EndTime   time.Time
	Result    types.Envelope
	Error     error

	cancel context.CancelFunc
}

// TaskEvent is a notification about a task state change.
type TaskEvent struct {
	TaskID    string
	EventType string // "started" or "completed"
	Status    TaskStatus
	Error     error
}

// Func does the work of a task. It must return once ctx is cancelled.
type Func func(ctx context.Context) (types.Envelope, error)

// ExecutionManager defines the interface for tracking request execution.
type ExecutionManager interface {
	// Run registers a task for input, runs fn with a cancellable child of ctx
	// and blocks until fn returns.
	Run(ctx context.Context, source, input string, fn Func) (*Task, error)

	// Get returns a copy of the task.
	Get(taskID string) (*Task, error)

	// CancelTask cancels a running task.
	CancelTask(taskID string) error

	// Events returns a channel of task events. Events are dropped when nobody reads.
	Events() <-chan TaskEvent

	// RunningSummary describes the tasks currently running, or "" when idle.
	RunningSummary() string

	// Stop cancels every running task and closes the event channel.
	Stop() error
}

type manager struct {
	mu       sync.RWMutex
	tasks    map[string]*Task
	finished []string // IDs of finished tasks, oldest first
	history  int
	events   chan TaskEvent
	stopped  bool
}

// NewManager creates an ExecutionManager that keeps up to history finished tasks.
func NewManager(history int) ExecutionManager {
	if history <= 0 {
		history = defaultHistory
	}
	return &manager{
		tasks:   make(map[string]*Task),
		history: history,
		events:  make(chan TaskEvent, eventBuffer),
	}
}

func (m *manager) Run(ctx context.Context, source, input string, fn Func) (*Task, error) {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := &Task{
		ID:        uuid.New().String(),
		Input:     input,
		Source:    source,
		Status:    StatusRunning,
		StartTime: time.Now(),
		cancel:    cancel,
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil, ErrStopped
	}
	m.tasks[t.ID] = t
	m.mu.Unlock()
	m.sendEvent(TaskEvent{TaskID: t.ID, EventType: "started", Status: StatusRunning})

	result, err := fn(taskCtx)

	m.mu.Lock()
	t.EndTime = time.Now()
	t.Result = result
	t.Error = err
	switch {
	case taskCtx.Err() != nil:
		t.Status = StatusCancelled
	case err != nil:
		t.Status = StatusFailed
	default:
		t.Status = StatusSuccess
	}
	m.finished = append(m.finished, t.ID)
	m.pruneLocked()
	snapshot := t.copy()
	m.mu.Unlock()

	m.sendEvent(TaskEvent{TaskID: t.ID, EventType: "completed", Status: snapshot.Status, Error: err})
	return snapshot, nil
}

// pruneLocked drops the oldest finished tasks beyond the history limit.
func (m *manager) pruneLocked() {
	for len(m.finished) > m.history {
		delete(m.tasks, m.finished[0])
		m.finished = m.finished[1:]
	}
}

func (m *manager) Get(taskID string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return nil, errors.Errorf("task with ID '%s' not found", taskID)
	}
	return t.copy(), nil
}

func (m *manager) CancelTask(taskID string) error {
	m.mu.RLock()
	t, ok := m.tasks[taskID]
	var status TaskStatus
	if ok {
		status = t.Status
	}
	m.mu.RUnlock()

	if !ok {
		return errors.Errorf("task with ID '%s' not found", taskID)
	}
	if status != StatusRunning {
		return errors.Errorf("task '%s' is not in a cancellable state (%s)", taskID, status)
	}
	// The final status is recorded by Run once fn observes the cancellation.
	t.cancel()
	return nil
}

func (m *manager) Events() <-chan TaskEvent {
	return m.events
}

func (m *manager) RunningSummary() string {
	m.mu.RLock()
	var running []*Task
	for _, t := range m.tasks {
		if t.Status == StatusRunning {
			running = append(running, t.copy())
		}
	}
	m.mu.RUnlock()

	if len(running) == 0 {
		return ""
	}
	sort.Slice(running, func(i, j int) bool { return running[i].StartTime.Before(running[j].StartTime) })

	parts := make([]string, len(running))
	for i, t := range running {
		parts[i] = fmt.Sprintf("[%s: %s]", t.ID, utils.Truncate(t.Input, 40))
	}
	return fmt.Sprintf("Running Tasks: %s", strings.Join(parts, ", "))
}

func (m *manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return nil
	}
	m.stopped = true
	for _, t := range m.tasks {
		if t.Status == StatusRunning {
			t.cancel()
		}
	}
	close(m.events)
	return nil
}

// sendEvent delivers without blocking; it is a no-op after Stop.
func (m *manager) sendEvent(ev TaskEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped {
		return
	}
	select {
	case m.events <- ev:
	default:
	}
}

func (t *Task) copy() *Task {
	c := *t
	c.cancel = nil
	return &c
}
