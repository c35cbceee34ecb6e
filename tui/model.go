// Package tui renders the poll view in a terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kamen/domain"
	"kamen/usecases"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Vote   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Vote, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "вверх")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "вниз")),
	Vote:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "голосовать")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "обновить")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "выход")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A8A29E"))
	questionStyle = lipgloss.NewStyle().Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

// loadedMsg and votedMsg only signal completion. Errors are logged by the
// poll view and the data is re-read from it, so whichever response lands
// last is what gets shown.
type loadedMsg struct{}

type votedMsg struct{}

// Model is the terminal counterpart of the voting section.
type Model struct {
	ctx     context.Context
	view    usecases.PollView
	polls   []domain.Poll
	loading bool
	cursor  int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	bar     progress.Model
}

func New(ctx context.Context, view usecases.PollView) Model {
	return Model{
		ctx:     ctx,
		view:    view,
		loading: true,
		keys:    defaultKeys,
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(false))
}

func (m Model) load(force bool) tea.Cmd {
	return func() tea.Msg {
		if force {
			_ = m.view.Reload(m.ctx)
		} else {
			_ = m.view.Load(m.ctx)
		}
		return loadedMsg{}
	}
}

func (m Model) vote(pollID, optionID int) tea.Cmd {
	return func() tea.Msg {
		_ = m.view.CastVote(m.ctx, pollID, optionID)
		return votedMsg{}
	}
}

// selected maps the flat cursor to a poll and option.
func (m Model) selected() (domain.Poll, domain.Option, bool) {
	i := m.cursor
	for _, p := range m.polls {
		if i < len(p.Options) {
			return p, p.Options[i], true
		}
		i -= len(p.Options)
	}
	return domain.Poll{}, domain.Option{}, false
}

func (m Model) optionCount() int {
	n := 0
	for _, p := range m.polls {
		n += len(p.Options)
	}
	return n
}

func (m *Model) sync() {
	m.polls = m.view.Polls()
	m.loading = m.view.Loading()
	if n := m.optionCount(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.sync()
		return m, nil

	case votedMsg:
		m.sync()
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.bar.Width = min(max(msg.Width/3, 10), 40)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < m.optionCount()-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Reload):
			m.loading = true
			return m, m.load(true)
		case key.Matches(msg, m.keys.Vote):
			// no in-flight guard: repeated presses send overlapping votes
			if p, o, ok := m.selected(); ok {
				return m, m.vote(p.ID, o.ID)
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Мнение Камня · Голосование"))
	sb.WriteString("\n\n")

	if m.loading {
		sb.WriteString(m.spinner.View() + " Загрузка...\n\n")
	} else if len(m.polls) == 0 {
		sb.WriteString(metaStyle.Render("Сейчас нет активных опросов") + "\n\n")
	}

	i := 0
	for _, p := range m.polls {
		sb.WriteString(questionStyle.Render(p.Question) + "\n")
		sb.WriteString(metaStyle.Render(fmt.Sprintf("до %s · Всего голосов: %d", p.EndDate, p.TotalVotes)) + "\n")
		for _, o := range p.Options {
			marker, text := "  ", o.Text
			if i == m.cursor {
				marker, text = "> ", selectedStyle.Render(o.Text)
			}
			sb.WriteString(fmt.Sprintf("%s%s\n  %s %s%% · %d голосов\n",
				marker, text,
				m.bar.ViewAs(p.Percent(o)/100),
				domain.FormatPercent(o.Votes, p.TotalVotes), o.Votes))
			i++
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}
