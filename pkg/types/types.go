package types

import (
	"fmt"
	"strings"
	"time"
)

// AppID is the hierarchical path-like identifier of an application
// ("/prod/billing/api"). It is globally unique and used as the primary key
// for the app registry, task registry grouping, and launch queue entries.
type AppID string

// Validate checks that the identifier is a well-formed absolute path.
func (id AppID) Validate() error {
	s := string(id)
	if s == "" {
		return fmt.Errorf("app id must not be empty")
	}
	if !strings.HasPrefix(s, "/") {
		return fmt.Errorf("app id %q must start with '/'", s)
	}
	if s != "/" && strings.HasSuffix(s, "/") {
		return fmt.Errorf("app id %q must not end with '/'", s)
	}
	for _, seg := range strings.Split(strings.TrimPrefix(s, "/"), "/") {
		if seg == "" {
			return fmt.Errorf("app id %q contains an empty path segment", s)
		}
	}
	return nil
}

// Parent returns the identifier of the enclosing group ("/" for top-level apps).
func (id AppID) Parent() AppID {
	s := string(id)
	idx := strings.LastIndex(s, "/")
	if idx <= 0 {
		return AppID("/")
	}
	return AppID(s[:idx])
}

// Base returns the last path segment of the identifier.
func (id AppID) Base() string {
	s := string(id)
	return s[strings.LastIndex(s, "/")+1:]
}

func (id AppID) String() string {
	return string(id)
}

// App is an application definition. Definitions are immutable values: a new
// version replaces the old one, fields are never mutated in place.
type App struct {
	ID          AppID
	Image       string
	Cmd         []string
	Env         []string
	Instances   int
	Labels      map[string]string
	BackoffSeed time.Duration // initial launch backoff delay
	BackoffMax  time.Duration // upper bound for the backoff delay
	Version     time.Time
	CreatedAt   time.Time
}

// TaskState represents the last-known state of a task as reported by the
// cluster driver.
type TaskState string

const (
	TaskStateStaged   TaskState = "staged"
	TaskStateRunning  TaskState = "running"
	TaskStateKilled   TaskState = "killed"
	TaskStateFailed   TaskState = "failed"
	TaskStateFinished TaskState = "finished"
	TaskStateLost     TaskState = "lost"
	TaskStateError    TaskState = "error"
)

// Terminal reports whether the state is a final one.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateKilled, TaskStateFailed, TaskStateFinished, TaskStateLost, TaskStateError:
		return true
	}
	return false
}

// Task is one running (or recently running) instance of an application.
// Tasks are created and mutated by placement and status updates; the
// coordinator only reads them.
type Task struct {
	ID        string
	AppID     AppID
	State     TaskState
	AgentID   string // cluster node the task is placed on, empty until placement
	Host      string
	Version   time.Time
	StagedAt  time.Time
	StartedAt time.Time
}

// TaskStatus is a transient snapshot of a task used for reconciliation with
// the cluster driver. It is derived fresh each round and never persisted.
type TaskStatus struct {
	TaskID  string
	State   TaskState
	AgentID string // empty when the task has not been placed yet
}

// NewTaskStatus derives a status snapshot from the task's current fields.
func NewTaskStatus(t *Task) TaskStatus {
	return TaskStatus{
		TaskID:  t.ID,
		State:   t.State,
		AgentID: t.AgentID,
	}
}
