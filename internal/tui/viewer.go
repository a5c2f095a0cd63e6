package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/pdturney/spots-and-stripes/internal/life"
)

// ViewerModel displays one RLE pattern file and reloads it when the file
// changes on disk, so a viewer left open tracks an experiment writing
// photo files.
type ViewerModel struct {
	path    string
	pattern *life.Pattern
	err     error
	watcher *fsnotify.Watcher
}

type fileChangedMsg struct{}

type watchErrMsg struct{ err error }

// NewViewer loads path and starts watching its directory. Watching the
// directory rather than the file survives rename-style rewrites.
func NewViewer(path string) (*ViewerModel, error) {
	m := &ViewerModel{path: path}
	m.load()
	if m.err != nil {
		return nil, m.err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	m.watcher = w
	return m, nil
}

// Close releases the file watcher.
func (m *ViewerModel) Close() error {
	if m.watcher == nil {
		return nil
	}
	return m.watcher.Close()
}

// Pattern returns the currently loaded pattern.
func (m *ViewerModel) Pattern() *life.Pattern { return m.pattern }

func (m *ViewerModel) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		m.err = err
		return
	}
	p, err := life.DecodeRLE(string(data))
	if err != nil {
		m.err = fmt.Errorf("%s: %w", m.path, err)
		return
	}
	m.pattern = p
	m.err = nil
}

func (m *ViewerModel) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange blocks until the watched file is rewritten.
func (m *ViewerModel) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				if ev.Name != m.path {
					continue
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
					return fileChangedMsg{}
				}
			case err, ok := <-m.watcher.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

func (m *ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.load()
			return m, nil
		}
	case fileChangedMsg:
		m.load()
		return m, m.waitForChange()
	case watchErrMsg:
		m.err = msg.err
		return m, m.waitForChange()
	}
	return m, nil
}

func (m *ViewerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(filepath.Base(m.path)))
	b.WriteByte('\n')

	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteByte('\n')
		return b.String()
	}

	p := m.pattern
	multistate := strings.HasPrefix(strings.ToLower(p.Rule), "immigration")
	b.WriteString(statStyle.Render(fmt.Sprintf("rule %s   %dx%d   %d live",
		p.Rule, p.Grid.Width(), p.Grid.Height(), p.Grid.Live())))
	b.WriteString("\n\n")
	b.WriteString(RenderGrid(p.Grid, multistate))
	b.WriteString(statStyle.Render("q quit   r reload"))
	b.WriteByte('\n')
	return b.String()
}
