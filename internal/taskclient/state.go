// Package taskclient keeps a client-side view of the task list in sync with
// the server. It is the state container the terminal UI renders from.
package taskclient

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo/internal/client"
	"github.com/idilsaglam/todo/internal/model"
)

// API is the subset of the task API the state needs.
type API interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, text string) (model.Task, error)
	SetCompleted(ctx context.Context, id int64, completed bool) (model.Task, error)
	Delete(ctx context.Context, id int64) error
}

var _ API = (*client.Client)(nil)

// State holds the local task list and the loading flag.
type State struct {
	api    API
	logger *log.Logger

	once sync.Once

	mu      sync.RWMutex
	tasks   []model.Task
	loading bool
}

// New returns a state with an empty list in the loading phase. Call Init to
// perform the initial fetch.
func New(api API, logger *log.Logger) *State {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &State{api: api, logger: logger, loading: true}
}

// Tasks returns a copy of the local list.
func (s *State) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Loading reports whether the initial fetch is still pending.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Init fetches the list once. Later calls are no-ops and return nil. A failed
// fetch is logged, leaves the list empty and still ends the loading phase.
func (s *State) Init(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		err = s.load(ctx)
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	})
	return err
}

// Reload replaces the local list with the server's.
func (s *State) Reload(ctx context.Context) error {
	return s.load(ctx)
}

func (s *State) load(ctx context.Context) error {
	tasks, err := s.api.List(ctx)
	if err != nil {
		s.logger.Error("fetch tasks", "err", err)
		return fmt.Errorf("fetch tasks: %w", err)
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

// AddTask creates a task and appends the server's record on success.
func (s *State) AddTask(ctx context.Context, text string) (model.Task, error) {
	t, err := s.api.Create(ctx, text)
	if err != nil {
		s.logger.Error("add task", "err", err)
		return model.Task{}, fmt.Errorf("add task: %w", err)
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return t, nil
}

// ToggleTask sends the inverse of the given completion flag and replaces the
// local record with the server's answer.
func (s *State) ToggleTask(ctx context.Context, id int64, completed bool) (model.Task, error) {
	t, err := s.api.SetCompleted(ctx, id, !completed)
	if err != nil {
		s.logger.Error("toggle task", "id", id, "err", err)
		return model.Task{}, fmt.Errorf("toggle task: %w", err)
	}
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
		}
	}
	s.mu.Unlock()
	return t, nil
}

// DeleteTask deletes a task on the server. The local record is removed when
// the server confirms the delete or reports the task already gone; on any
// other failure it stays and the error is returned.
func (s *State) DeleteTask(ctx context.Context, id int64) error {
	err := s.api.Delete(ctx, id)
	if err != nil && !client.IsNotFound(err) {
		s.logger.Error("delete task", "id", id, "err", err)
		return fmt.Errorf("delete task: %w", err)
	}
	if err != nil {
		s.logger.Warn("task already deleted on server", "id", id)
	}
	s.mu.Lock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.mu.Unlock()
	return nil
}
