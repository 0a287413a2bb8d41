package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo/internal/taskclient"
	"github.com/idilsaglam/todo/internal/testutil"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds msg to m without running the returned command.
func press(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// step feeds msg to m, runs the action command it returns and feeds the
// result back.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, cmd := press(m, msg)
	if cmd == nil {
		t.Fatalf("expected a command for %v", msg)
	}
	out := cmd()
	switch out.(type) {
	case loadedMsg, actionMsg:
	default:
		t.Fatalf("unexpected message %T", out)
	}
	m, _ = press(m, out)
	return m
}

func newLoadedModel(t *testing.T) (Model, *testutil.FakeAPI) {
	t.Helper()
	fake := testutil.NewFakeAPI()
	m := NewModel(context.Background(), taskclient.New(fake, nil))
	next, _ := m.Update(m.Init()())
	return next.(Model), fake
}

func TestLoadingView(t *testing.T) {
	m := NewModel(context.Background(), taskclient.New(testutil.NewFakeAPI(), nil))
	if !strings.Contains(m.View(), "Loading...") {
		t.Errorf("expected loading view, got:\n%s", m.View())
	}
	// keys other than quit are ignored until loaded
	m, cmd := press(m, runes("a"))
	if cmd != nil || m.adding {
		t.Error("add must be ignored while loading")
	}
}

func TestInitShowsTasks(t *testing.T) {
	m, _ := newLoadedModel(t)
	if got := len(m.list.Items()); got != 3 {
		t.Fatalf("expected 3 items, got %d", got)
	}
	view := m.View()
	for _, want := range []string{"laundry", "shopping", "cook dinner"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestToggleSelected(t *testing.T) {
	m, fake := newLoadedModel(t)
	m = step(t, m, tea.KeyMsg{Type: tea.KeySpace})

	if got := fake.Store().List()[0]; !got.Completed {
		t.Errorf("expected task 1 completed on server, got %+v", got)
	}
	if it := m.list.Items()[0].(taskItem); !it.Completed {
		t.Error("expected list item refreshed")
	}
	if m.status != "updated" || m.failed {
		t.Errorf("unexpected status %q failed=%v", m.status, m.failed)
	}
}

func TestAddTask(t *testing.T) {
	m, fake := newLoadedModel(t)
	m, _ = press(m, runes("a"))
	if !m.adding {
		t.Fatal("expected add mode")
	}

	// blank input cannot be submitted
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || !m.adding {
		t.Fatal("enter must be disabled while input is blank")
	}

	m, _ = press(m, runes("  read "))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.adding {
		t.Error("expected add mode to end")
	}
	if fake.Store().Len() != 4 {
		t.Errorf("expected 4 tasks on server, got %d", fake.Store().Len())
	}
	if got := len(m.list.Items()); got != 4 {
		t.Errorf("expected 4 items, got %d", got)
	}
	if got := fake.Store().List()[3].Text; got != "read" {
		t.Errorf("expected trimmed text, got %q", got)
	}
}

func TestAddEscapeCancels(t *testing.T) {
	m, fake := newLoadedModel(t)
	m, _ = press(m, runes("a"))
	m, _ = press(m, runes("x"))
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.adding || m.ti.Value() != "" {
		t.Error("expected add mode cleared")
	}
	if fake.Store().Len() != 3 {
		t.Error("escape must not create a task")
	}
}

func TestDeleteFailureShowsStatus(t *testing.T) {
	m, fake := newLoadedModel(t)
	fake.DeleteErr = errors.New("connection reset")
	m = step(t, m, runes("d"))

	if got := len(m.list.Items()); got != 3 {
		t.Errorf("expected record kept, got %d items", got)
	}
	if !m.failed || !strings.Contains(m.View(), "connection reset") {
		t.Errorf("expected error in status line, got %q", m.status)
	}

	fake.DeleteErr = nil
	m = step(t, m, runes("d"))
	if got := len(m.list.Items()); got != 2 {
		t.Errorf("expected 2 items, got %d", got)
	}
}

func TestReloadPicksUpServerChanges(t *testing.T) {
	m, fake := newLoadedModel(t)
	if _, err := fake.Store().Create("from elsewhere"); err != nil {
		t.Fatal(err)
	}
	m = step(t, m, runes("r"))
	if got := len(m.list.Items()); got != 4 {
		t.Errorf("expected 4 items after reload, got %d", got)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newLoadedModel(t)
	_, cmd := press(m, runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestWindowSize(t *testing.T) {
	m, _ := newLoadedModel(t)
	m, _ = press(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.list.Width() != 116 || m.list.Height() != 35 {
		t.Errorf("unexpected list size %dx%d", m.list.Width(), m.list.Height())
	}
}
