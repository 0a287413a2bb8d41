// Package tui is the interactive terminal front end. It renders a
// taskclient.State and turns key presses into state actions.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo/internal/model"
	"github.com/idilsaglam/todo/internal/taskclient"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// taskItem adapts model.Task to list.Item.
type taskItem struct{ model.Task }

func (i taskItem) Title() string       { return i.Text }
func (i taskItem) Description() string { return "" }
func (i taskItem) FilterValue() string { return i.Text }

// itemDelegate renders one task per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := it.Text
	if it.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

// Messages produced by commands.
type (
	loadedMsg struct{ err error }
	actionMsg struct {
		verb string
		err  error
	}
)

type keyMap struct {
	Toggle, Add, Delete, Reload, Quit key.Binding
}

var keys = keyMap{
	Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the bubbletea model. Build it with NewModel.
type Model struct {
	ctx   context.Context
	state *taskclient.State

	list   list.Model
	ti     textinput.Model
	adding bool
	status string
	failed bool

	width, height int
}

// NewModel returns a model bound to state. Actions run with ctx.
func NewModel(ctx context.Context, state *taskclient.State) Model {
	l := list.New(nil, itemDelegate{}, defaultWidth-4, defaultHeight-4)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	extra := func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add, keys.Delete, keys.Reload}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra
	// q is handled here so it also works while the list is empty.
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 200

	m := Model{
		ctx:    ctx,
		state:  state,
		list:   l,
		ti:     ti,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.refresh()
	return m
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, state *taskclient.State, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewModel(ctx, state), opts...).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	ctx, state := m.ctx, m.state
	return func() tea.Msg {
		return loadedMsg{err: state.Init(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case loadedMsg:
		m.setResult("loaded", msg.err)
		m.refresh()
		return m, nil
	case actionMsg:
		m.setResult(msg.verb, msg.err)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		if m.state.Loading() {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Add):
			m.adding = true
			m.ti.SetValue("")
			m.resize()
			return m, m.ti.Focus()
		case key.Matches(msg, keys.Reload):
			return m, m.reload()
		case key.Matches(msg, keys.Toggle):
			if it, ok := m.list.SelectedItem().(taskItem); ok {
				return m, m.toggle(it.Task)
			}
			return m, nil
		case key.Matches(msg, keys.Delete):
			if it, ok := m.list.SelectedItem().(taskItem); ok {
				return m, m.remove(it.ID)
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.ti.Value())
		if text == "" {
			return m, nil
		}
		m.stopAdding()
		return m, m.add(text)
	case tea.KeyEsc:
		m.stopAdding()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) stopAdding() {
	m.adding = false
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m Model) add(text string) tea.Cmd {
	ctx, state := m.ctx, m.state
	return func() tea.Msg {
		_, err := state.AddTask(ctx, text)
		return actionMsg{verb: "added", err: err}
	}
}

func (m Model) toggle(t model.Task) tea.Cmd {
	ctx, state := m.ctx, m.state
	return func() tea.Msg {
		_, err := state.ToggleTask(ctx, t.ID, t.Completed)
		return actionMsg{verb: "updated", err: err}
	}
}

func (m Model) remove(id int64) tea.Cmd {
	ctx, state := m.ctx, m.state
	return func() tea.Msg {
		return actionMsg{verb: "deleted", err: state.DeleteTask(ctx, id)}
	}
}

func (m Model) reload() tea.Cmd {
	ctx, state := m.ctx, m.state
	return func() tea.Msg {
		return actionMsg{verb: "reloaded", err: state.Reload(ctx)}
	}
}

func (m *Model) setResult(verb string, err error) {
	if err != nil {
		m.status, m.failed = err.Error(), true
		return
	}
	m.status, m.failed = verb, false
}

// refresh rebuilds the list items and header from the state snapshot.
func (m *Model) refresh() {
	tasks := m.state.Tasks()
	items := make([]list.Item, len(tasks))
	done := 0
	for i, t := range tasks {
		items[i] = taskItem{t}
		if t.Completed {
			done++
		}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), len(tasks)-done,
		accentStyle.Render("Total"), len(tasks),
	)
}

func (m *Model) resize() {
	h := m.height - 5
	if m.adding {
		h -= 3
	}
	if h < 1 {
		h = 1
	}
	w := m.width - 4
	if w < 1 {
		w = 1
	}
	m.list.SetSize(w, h)
}

func (m Model) View() string {
	if m.state.Loading() {
		return frameStyle.Render("Loading...")
	}
	content := m.list.View()
	if m.adding {
		title := "Add task"
		if strings.TrimSpace(m.ti.Value()) == "" {
			title += " " + mutedStyle.Render("(type some text)")
		}
		content += "\n" + frameStyle.Render(title+"\n"+m.ti.View())
	}
	if m.status != "" {
		line := mutedStyle.Render(m.status)
		if m.failed {
			line = errorStyle.Render("✖ " + m.status)
		}
		content += "\n" + line
	}
	return frameStyle.Render(content)
}
