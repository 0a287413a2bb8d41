// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/idilsaglam/todo/internal/client"
	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/store"
)

// FakeAPI is an in-memory stand-in for the task API server. It answers the
// way the real handler does, including 404s as *client.Error.
type FakeAPI struct {
	mu    sync.Mutex
	store *store.Store
	calls []string

	// Error injection for testing
	ListErr         error
	CreateErr       error
	SetCompletedErr error
	DeleteErr       error
}

// NewFakeAPI returns a fake seeded with the default three tasks.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{store: store.New()}
}

// NewEmptyFakeAPI returns a fake with no tasks.
func NewEmptyFakeAPI() *FakeAPI {
	return &FakeAPI{store: store.NewEmpty()}
}

// Store exposes the backing store so tests can change server state behind
// the client's back.
func (f *FakeAPI) Store() *store.Store { return f.store }

// Calls returns the operation names invoked so far.
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeAPI) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
}

// List implements taskclient.API.
func (f *FakeAPI) List(ctx context.Context) ([]model.Task, error) {
	f.record("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.store.List(), nil
}

// Create implements taskclient.API.
func (f *FakeAPI) Create(ctx context.Context, text string) (model.Task, error) {
	f.record("create")
	if f.CreateErr != nil {
		return model.Task{}, f.CreateErr
	}
	t, err := f.store.Create(text)
	if err != nil {
		return model.Task{}, &client.Error{Status: http.StatusBadRequest, Message: "Text is required"}
	}
	return t, nil
}

// SetCompleted implements taskclient.API.
func (f *FakeAPI) SetCompleted(ctx context.Context, id int64, completed bool) (model.Task, error) {
	f.record("update")
	if f.SetCompletedErr != nil {
		return model.Task{}, f.SetCompletedErr
	}
	t, err := f.store.SetCompleted(id, completed)
	return t, mapErr(err)
}

// Delete implements taskclient.API.
func (f *FakeAPI) Delete(ctx context.Context, id int64) error {
	f.record("delete")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	return mapErr(f.store.Delete(id))
}

func mapErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &client.Error{Status: http.StatusNotFound, Message: "Todo not found"}
	}
	return err
}
