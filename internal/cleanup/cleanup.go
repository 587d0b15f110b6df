// Package cleanup records compensating actions while a project is generated
// and runs them if generation fails or is interrupted.
package cleanup

import (
	"errors"
	"fmt"
	"sync"

	"github.com/simonhull/create-v1-app/pkg/logger"
)

// Order is the order recorded tasks run in.
type Order int

const (
	// Reverse undoes the most recent side effect first.
	Reverse Order = iota
	// Forward runs tasks in the order they were recorded.
	Forward
)

// ParseOrder accepts "reverse" (or "") and "forward".
func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "reverse", "lifo":
		return Reverse, nil
	case "forward", "fifo":
		return Forward, nil
	default:
		return Reverse, fmt.Errorf("invalid cleanup order %q (want reverse or forward)", s)
	}
}

func (o Order) String() string {
	if o == Forward {
		return "forward"
	}
	return "reverse"
}

// Manager is an append-only log of compensating actions for one run.
// Record and Run are safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	tasks []Task
	order Order
	ran   bool
	log   logger.Logger
}

// NewManager creates an empty log. A nil logger is silent.
func NewManager(order Order, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Manager{order: order, log: log}
}

// Record appends t. Call it before performing the side effect t undoes.
// Tasks recorded after Run are ignored.
func (m *Manager) Record(t Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ran {
		m.log.Warn("Cleanup task recorded after cleanup ran", logger.F("task", t.String()))
		return
	}
	m.tasks = append(m.tasks, t)
}

// Tasks returns a copy of the recorded tasks in recording order.
func (m *Manager) Tasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Task(nil), m.tasks...)
}

// Len returns the number of recorded tasks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Run executes every recorded task once. A failing task does not stop the
// others; all failures are joined into the returned error. Later calls do
// nothing.
func (m *Manager) Run() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ran {
		return nil
	}
	m.ran = true

	m.log.Debug("Starting cleanup...", logger.F("tasks", len(m.tasks)), logger.F("order", m.order.String()))

	var errs []error
	for i := range m.tasks {
		t := m.tasks[i]
		if m.order == Reverse {
			t = m.tasks[len(m.tasks)-1-i]
		}

		var err error
		switch task := t.(type) {
		case RemoveDirectory:
			err = task.run(m.log)
		case RemoveService:
			err = task.run(m.log)
		default:
			err = fmt.Errorf("unknown cleanup task %T", t)
		}
		if err != nil {
			m.log.Error("Cleanup task failed", logger.F("task", t.String()), logger.F("error", err))
			errs = append(errs, err)
		}
	}

	m.log.Debug("Cleanup completed.")
	return errors.Join(errs...)
}
