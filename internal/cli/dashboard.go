package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/worktally/internal/core"
	"github.com/valter-silva-au/worktally/internal/observability"
)

// Dashboard panel indices.
const (
	panelTasks = iota
	panelTimer
	panelMetrics
	panelAlerts
	panelCount
)

type dashboardModel struct {
	ws          core.Workspace
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
	tick        time.Duration

	activePanel int
	width       int
	height      int

	// Data.
	stats       core.Stats
	timer       timerSnapshot
	metricsData *metricsSnapshot
	alerts      []alertSnapshot

	// State.
	loading bool
	err     error
}

type timerSnapshot struct {
	running  bool
	taskID   string
	taskName string
	elapsed  string
}

type metricsSnapshot struct {
	tasksCreated  int
	tasksDeleted  int
	timerSessions int
	timeLogged    string
	eventCount    int
}

type alertSnapshot struct {
	severity string
	message  string
	time     string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	stats   core.Stats
	timer   timerSnapshot
	metrics *metricsSnapshot
	alerts  []alertSnapshot
	err     error
}

// tickMsg refreshes the running timer.
type tickMsg time.Time

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusDone       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusOverdue    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusToday      = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))

	timerRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	timerIdleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(ws core.Workspace, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, tick time.Duration) dashboardModel {
	if tick <= 0 {
		tick = time.Second
	}
	return dashboardModel{
		ws:          ws,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
		tick:        tick,
		activePanel: panelTasks,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadData, m.tickCmd())
}

func (m dashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, m.loadData
		case "s":
			if m.ws == nil {
				return m, nil
			}
			if _, err := m.ws.StopTimer(); err != nil {
				m.err = err
				return m, nil
			}
			m.timer = readTimer(m.ws)
			return m, m.loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.ws != nil {
			m.timer = readTimer(m.ws)
		}
		return m, m.tickCmd()

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.stats = msg.stats
		m.timer = msg.timer
		m.metricsData = msg.metrics
		m.alerts = msg.alerts
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" worktally ")
	help := helpStyle.Render("tab: switch panel | s: stop timer | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	panels := []string{
		m.renderTasksPanel(),
		m.renderTimerPanel(),
		m.renderMetricsPanel(),
		m.renderAlertsPanel(),
	}

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		colWidth := availableWidth / 2
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], colWidth-4)
		}
		top := lipgloss.JoinHorizontal(lipgloss.Top, panels[panelTasks], panels[panelTimer])
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, panels[panelMetrics], panels[panelAlerts])
		body = lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], panelWidth)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, panels...)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderTasksPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Tasks"))
	b.WriteString("\n")

	s := m.stats
	if s.Total == 0 {
		b.WriteString("  No tasks found.")
		return b.String()
	}

	lines := []struct {
		label string
		value int
		style lipgloss.Style
	}{
		{"In progress", s.InProgress, statusInProgress},
		{"Due today", s.DueToday, statusToday},
		{"Overdue", s.Overdue, statusOverdue},
		{"Completed", s.Completed, statusDone},
	}
	for _, l := range lines {
		b.WriteString(l.style.Render(fmt.Sprintf("  %-14s %d", l.label, l.value)))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n  Total: %d, %s logged", s.Total, core.FormatDuration(s.TimeLogged)))

	if len(s.Workload) > 0 {
		b.WriteString("\n\n  Workload:\n")
		for _, u := range s.Workload {
			b.WriteString(fmt.Sprintf("    %-14s %d / %d\n", u.Name, u.ToDo, u.InProgress))
		}
	}

	return b.String()
}

func (m dashboardModel) renderTimerPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Timer"))
	b.WriteString("\n")

	if !m.timer.running {
		b.WriteString(timerIdleStyle.Render("  Idle"))
		return b.String()
	}
	b.WriteString(timerRunningStyle.Render("  " + m.timer.elapsed))
	b.WriteString(fmt.Sprintf("\n  %s", m.timer.taskName))
	return b.String()
}

func (m dashboardModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Metrics (7d)"))
	b.WriteString("\n")

	if m.metricsData == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metricsData
	lines := []struct {
		label string
		value string
	}{
		{"Events", fmt.Sprint(md.eventCount)},
		{"Created", fmt.Sprint(md.tasksCreated)},
		{"Deleted", fmt.Sprint(md.tasksDeleted)},
		{"Sessions", fmt.Sprint(md.timerSessions)},
		{"Logged", md.timeLogged},
	}

	for _, l := range lines {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", l.label, l.value))
	}

	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d alert(s)", len(m.alerts)))

	return b.String()
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func readTimer(ws core.Workspace) timerSnapshot {
	active, running := ws.ActiveTimer()
	if !running {
		return timerSnapshot{}
	}
	snap := timerSnapshot{
		running:  true,
		taskID:   active.TaskID,
		taskName: active.TaskID,
		elapsed:  core.FormatTimer(ws.Elapsed()),
	}
	if t, err := ws.Task(active.TaskID); err == nil {
		snap.taskName = t.Name
	}
	return snap
}

func (m dashboardModel) loadData() tea.Msg {
	var result dataLoadedMsg

	if m.ws != nil {
		result.stats = m.ws.Stats()
		result.timer = readTimer(m.ws)
	}

	if m.metricsCalc != nil {
		since := time.Now().UTC().AddDate(0, 0, -7)
		metrics, err := m.metricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.metrics = &metricsSnapshot{
			tasksCreated:  metrics.TasksCreated,
			tasksDeleted:  metrics.TasksDeleted,
			timerSessions: metrics.TimerSessions,
			timeLogged:    core.FormatDuration(metrics.TimeLogged),
			eventCount:    metrics.EventCount,
		}
	}

	// Alerts arrive sorted by severity.
	if m.alertEngine != nil {
		alerts, err := m.alertEngine.Evaluate()
		if err != nil {
			result.err = fmt.Errorf("loading alerts: %w", err)
			return result
		}
		result.alerts = make([]alertSnapshot, 0, len(alerts))
		for _, a := range alerts {
			result.alerts = append(result.alerts, alertSnapshot{
				severity: string(a.Severity),
				message:  a.Message,
				time:     a.TriggeredAt.Format("2006-01-02 15:04 UTC"),
			})
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard with a live timer",
	Long: `Launch an interactive terminal dashboard showing task counts, workload,
the running timer, metrics and alerts.

Navigate between panels with Tab, stop the timer with s, refresh with r,
quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireWorkspace(); err != nil {
			return err
		}
		tick := time.Second
		if Config != nil {
			tick = Config.Tick
		}
		p := tea.NewProgram(newDashboardModel(Workspace, MetricsCalc, AlertEngine, tick), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
