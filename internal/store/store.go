// Package store holds the authoritative in-memory task collection.
package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/idilsaglam/todo/internal/model"
)

// Store errors.
var (
	ErrNotFound     = errors.New("todo not found")
	ErrTextRequired = errors.New("text is required")
)

// Seed is the collection a fresh process starts with.
var Seed = []model.Task{
	{ID: 1, Text: "laundry", Completed: false},
	{ID: 2, Text: "shopping", Completed: true},
	{ID: 3, Text: "cook dinner", Completed: false},
}

// Store is a process-wide task list plus the next-id counter. Every
// operation runs under one lock; the backing slice never leaves the package.
type Store struct {
	mu     sync.Mutex
	tasks  []model.Task
	nextID int64
}

// New returns a store seeded with Seed.
func New() *Store {
	s := &Store{nextID: 1}
	for _, t := range Seed {
		s.tasks = append(s.tasks, t)
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

// NewEmpty returns a store with no records. The first id issued is 1.
func NewEmpty() *Store {
	return &Store{nextID: 1}
}

// List returns a copy of all tasks in insertion order.
func (s *Store) List() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len reports the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Create appends a new incomplete task. The text is stored as given but must
// not be blank once trimmed.
func (s *Store) Create(text string) (model.Task, error) {
	if strings.TrimSpace(text) == "" {
		return model.Task{}, ErrTextRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := model.Task{ID: s.nextID, Text: text}
	s.nextID++
	s.tasks = append(s.tasks, t)
	return t, nil
}

// SetCompleted updates the completion flag of task id in place.
func (s *Store) SetCompleted(id int64, completed bool) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = completed
			return s.tasks[i], nil
		}
	}
	return model.Task{}, fmt.Errorf("update %d: %w", id, ErrNotFound)
}

// Delete removes task id.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete %d: %w", id, ErrNotFound)
}
