// Package tui renders run progress: the authorization prompt while the
// device flow polls, then one confirmation line per created issue.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/willbl/issuesheet/internal/auth"
	"github.com/willbl/issuesheet/internal/domain"
)

// GrantMsg is sent when the device-code request completes.
// It is exported so that tests can inject it directly into Model.Update.
type GrantMsg struct {
	Grant auth.DeviceGrant
	Err   error
}

// AuthenticatedMsg is sent when polling finishes, successfully or not.
type AuthenticatedMsg struct {
	Err error
}

// ResolvedMsg carries the collection issues will be created in.
type ResolvedMsg struct {
	Target domain.TargetCollection
	Err    error
}

// ResultMsg carries one creation outcome as soon as it is known.
type ResultMsg struct {
	Result domain.CreationResult
}

// DoneMsg signals that the run finished; Err is nil only if every record
// was created.
type DoneMsg struct {
	Err error
}

type phase int

const (
	phaseRequesting phase = iota
	phaseAwaitingUser
	phaseResolving
	phasePublishing
	phaseDone
)

var (
	codeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	summaryStyle = lipgloss.NewStyle().Bold(true)
)

// Model is the root bubbletea model for an issuesheet run.
type Model struct {
	spinner spinner.Model
	phase   phase
	grant   auth.DeviceGrant
	target  domain.TargetCollection
	total   int
	results []domain.CreationResult
	err     error

	// OpenBrowser is called with the verification URI once the grant
	// arrives. Best-effort: its error is ignored. Set by the caller.
	OpenBrowser func(url string) error
}

// NewModel creates the root model for a run over total records.
func NewModel(total int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{spinner: s, total: total}
}

// Err returns the fatal error of the run, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = fmt.Errorf("interrupted")
			m.phase = phaseDone
			return m, tea.Quit
		}
		return m, nil

	case GrantMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.phase = phaseDone
			return m, tea.Quit
		}
		m.grant = msg.Grant
		m.phase = phaseAwaitingUser
		if open := m.OpenBrowser; open != nil {
			uri := msg.Grant.VerificationURI
			return m, func() tea.Msg {
				open(uri) // best-effort, failure must not abort the flow
				return nil
			}
		}
		return m, nil

	case AuthenticatedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.phase = phaseDone
			return m, tea.Quit
		}
		m.phase = phaseResolving
		return m, nil

	case ResolvedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.phase = phaseDone
			return m, tea.Quit
		}
		m.target = msg.Target
		m.phase = phasePublishing
		return m, nil

	case ResultMsg:
		m.results = append(m.results, msg.Result)
		return m, nil

	case DoneMsg:
		m.err = msg.Err
		m.phase = phaseDone
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.phase {
	case phaseRequesting:
		return fmt.Sprintf("%s Requesting device code...\n", m.spinner.View())
	case phaseAwaitingUser:
		return fmt.Sprintf("%s Waiting for authorization...\n\n  Enter code: %s\n  Visit:      %s\n",
			m.spinner.View(),
			codeStyle.Render(m.grant.UserCode),
			dimStyle.Render(m.grant.VerificationURI))
	case phaseResolving:
		return fmt.Sprintf("%s Authenticated. Resolving target repository...\n", m.spinner.View())
	case phasePublishing:
		var b strings.Builder
		fmt.Fprintf(&b, "%s Creating issues in %s (%d/%d)\n", m.spinner.View(), m.target, len(m.results), m.total)
		for _, r := range m.results {
			b.WriteString(resultLine(r))
		}
		return b.String()
	default:
		return ""
	}
}

// Summary renders the final report, printed after the program exits.
func (m Model) Summary() string {
	var b strings.Builder
	for _, r := range m.results {
		b.WriteString(resultLine(r))
	}
	created := 0
	for _, r := range m.results {
		if r.OK() {
			created++
		}
	}
	switch {
	case m.err == nil:
		fmt.Fprintf(&b, "%s\n", summaryStyle.Render(fmt.Sprintf("Created %d issues in %s.", created, m.target)))
	case created > 0:
		fmt.Fprintf(&b, "%s\n", failStyle.Render(fmt.Sprintf("Failed: %v. The %d issues already created remain.", m.err, created)))
	default:
		fmt.Fprintf(&b, "%s\n", failStyle.Render(fmt.Sprintf("Failed: %v", m.err)))
	}
	return b.String()
}

func resultLine(r domain.CreationResult) string {
	if r.OK() {
		return fmt.Sprintf("  %s #%d %s\n", okStyle.Render("created"), r.Number, r.Record.Title)
	}
	return fmt.Sprintf("  %s row %d: %v\n", failStyle.Render("failed"), r.Index+1, r.Err)
}

// Run drives the model while start feeds pipeline messages into the
// program from a background goroutine. It returns the final model so the
// caller can print the summary and inspect the run error.
func Run(m Model, start func(send func(tea.Msg))) (Model, error) {
	p := tea.NewProgram(m)
	go start(p.Send)
	final, err := p.Run()
	if err != nil {
		return m, err
	}
	return final.(Model), nil
}
