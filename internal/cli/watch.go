package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/sockboard/internal/core"
	"github.com/valter-silva-au/sockboard/pkg/models"
)

// Watch screen styles.
var (
	watchTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	watchColumnStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)

	watchHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62"))

	watchSyncIdleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	watchSyncBusyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	watchSyncErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	watchHelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	watchDeadlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	watchRevisedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	watchEmptyColumnDot = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("-")
)

// watchColumns is the board layout, one column per workflow state.
var watchColumns = []models.TaskStatus{
	models.StatusPreparing,
	models.StatusConnecting,
	models.StatusMaterialPrep,
	models.StatusSampling,
	models.StatusPostProcessing,
	models.StatusCompleted,
	models.StatusRevision,
}

type watchModel struct {
	engine *core.Engine

	width  int
	height int

	tasks      []models.Task
	syncStatus core.SyncStatus
	realtime   bool

	// activity delivers collection and sync events from the engine's
	// callbacks into the bubbletea loop.
	activity chan tea.Msg
}

type boardChangedMsg struct{}

type syncStatusMsg core.SyncStatus

func newWatchModel(engine *core.Engine, realtime bool) watchModel {
	m := watchModel{
		engine:   engine,
		tasks:    engine.Tasks(),
		realtime: realtime,
		activity: make(chan tea.Msg, 16),
	}

	engine.OnCollectionChanged(func() {
		select {
		case m.activity <- boardChangedMsg{}:
		default:
		}
	})
	engine.OnSyncStatusChanged(func(s core.SyncStatus) {
		select {
		case m.activity <- syncStatusMsg(s):
		default:
		}
	})

	return m
}

func (m watchModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		return <-m.activity
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.waitForActivity()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.tasks = m.engine.Tasks()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardChangedMsg:
		m.tasks = m.engine.Tasks()
		return m, m.waitForActivity()

	case syncStatusMsg:
		m.syncStatus = core.SyncStatus(msg)
		return m, m.waitForActivity()
	}

	return m, nil
}

func (m watchModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(watchTitleStyle.Render("sockboard"))
	b.WriteString("  ")
	b.WriteString(m.syncLine())
	b.WriteString("\n\n")

	columns := make([]string, 0, len(watchColumns))
	for _, status := range watchColumns {
		columns = append(columns, m.renderColumn(status))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))

	b.WriteString("\n")
	b.WriteString(watchHelpStyle.Render("r refresh · q quit"))
	return b.String()
}

func (m watchModel) syncLine() string {
	if !m.engine.Configured() {
		return watchHelpStyle.Render("local-only")
	}

	mode := "manual sync"
	if m.realtime {
		mode = "live"
	}
	switch m.syncStatus.State {
	case core.SyncSyncing:
		return watchSyncBusyStyle.Render(mode + " · syncing")
	case core.SyncError:
		return watchSyncErrStyle.Render(fmt.Sprintf("%s · sync failed: %v", mode, m.syncStatus.Err))
	default:
		if last := m.engine.LastSync(); !last.IsZero() {
			return watchSyncIdleStyle.Render(mode + " · synced " + last.Format("15:04:05"))
		}
		return watchSyncIdleStyle.Render(mode)
	}
}

func (m watchModel) renderColumn(status models.TaskStatus) string {
	var rows []string
	rows = append(rows, watchHeaderStyle.Render(string(status)))

	count := 0
	for _, t := range m.tasks {
		if t.Status != status {
			continue
		}
		count++
		line := t.ID
		if t.HasBeenRevised {
			line += watchRevisedStyle.Render("*")
		}
		rows = append(rows, line)
		if !t.Deadline.IsZero() {
			rows = append(rows, watchDeadlineStyle.Render("  due "+t.Deadline.Format("01-02")))
		}
	}
	if count == 0 {
		rows = append(rows, watchEmptyColumnDot)
	}

	return watchColumnStyle.Render(strings.Join(rows, "\n"))
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live board view",
	Long: `Show the board as live pipeline columns. With a remote table configured
the view subscribes to change notifications and refreshes as other devices
push edits; local edits from other terminals appear on the next sync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		realtime := false
		if Engine.Configured() {
			if err := Engine.EnableRealtimeSync(); err == nil {
				realtime = true
				defer Engine.DisableRealtimeSync()
			}
		}

		program := tea.NewProgram(newWatchModel(Engine, realtime), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("running board view: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
