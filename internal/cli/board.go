package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/pkg/models"
)

type boardModel struct {
	ctx   context.Context
	store *core.TaskStore
	now   func() time.Time

	columns []core.BoardColumn
	col     int
	rows    []int
	width   int
	height  int

	loading bool
	status  string
}

// boardLoadedMsg carries a fresh snapshot of the store.
type boardLoadedMsg struct {
	columns []core.BoardColumn
	status  string
}

var (
	boardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeColumnStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62")).
				MarginBottom(1)

	selectedStyle    = lipgloss.NewStyle().Reverse(true)
	completedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	overdueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dueTodayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	approachingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	boardHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBoardModel(ctx context.Context, store *core.TaskStore, now func() time.Time) boardModel {
	return boardModel{
		ctx:     ctx,
		store:   store,
		now:     now,
		rows:    make([]int, len(models.Statuses)),
		loading: true,
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.load("")
}

// load snapshots the store into columns.
func (m boardModel) load(status string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		return boardLoadedMsg{columns: core.BoardColumns(store.Tasks()), status: status}
	}
}

// selected returns the highlighted task, if the active column has one.
func (m boardModel) selected() (models.Task, bool) {
	if m.col >= len(m.columns) {
		return models.Task{}, false
	}
	tasks := m.columns[m.col].Tasks
	if len(tasks) == 0 {
		return models.Task{}, false
	}
	return tasks[m.rows[m.col]], true
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.col = (m.col - 1 + len(m.rows)) % len(m.rows)
		case "right", "l", "tab":
			m.col = (m.col + 1) % len(m.rows)
		case "up", "k":
			if m.rows[m.col] > 0 {
				m.rows[m.col]--
			}
		case "down", "j":
			if m.col < len(m.columns) && m.rows[m.col] < len(m.columns[m.col].Tasks)-1 {
				m.rows[m.col]++
			}
		case "<", "H", "shift+left":
			return m.moveSelected(-1)
		case ">", "L", "shift+right":
			return m.moveSelected(1)
		case " ", "enter":
			if task, ok := m.selected(); ok {
				m.store.CompleteTask(m.ctx, task.ID, !task.Completed)
				verb := "Completed"
				if task.Completed {
					verb = "Reopened"
				}
				return m, m.load(fmt.Sprintf("%s %q", verb, task.Title))
			}
		case "x":
			if task, ok := m.selected(); ok {
				m.store.DeleteTask(m.ctx, task.ID)
				return m, m.load(fmt.Sprintf("Deleted %q", task.Title))
			}
		case "r":
			m.loading = true
			return m, m.load("")
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		m.columns = msg.columns
		m.status = msg.status
		for i := range m.rows {
			n := 0
			if i < len(m.columns) {
				n = len(m.columns[i].Tasks)
			}
			if m.rows[i] >= n {
				m.rows[i] = max(n-1, 0)
			}
		}
		return m, nil
	}

	return m, nil
}

// moveSelected moves the highlighted task one column left or right and
// keeps it selected in its new column.
func (m boardModel) moveSelected(delta int) (tea.Model, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	target := m.col + delta
	if target < 0 || target >= len(models.Statuses) {
		return m, nil
	}
	to := models.Statuses[target]
	m.store.MoveTask(m.ctx, task.ID, to)
	m.col = target
	m.rows[target] = 0
	for i, t := range core.GroupByStatus(m.store.Tasks())[to] {
		if t.ID == task.ID {
			m.rows[target] = i
			break
		}
	}
	return m, m.load(fmt.Sprintf("Moved %q to %s", task.Title, to.Label()))
}

func (m boardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := boardTitleStyle.Render(" Task Board ")
	help := boardHelpStyle.Render("←/→: column | ↑/↓: task | </>: move | space: toggle done | x: delete | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading tasks...\n\n%s", title, help)
	}

	availableWidth := m.width - 2
	rendered := make([]string, len(m.columns))
	var body string
	if availableWidth > 90 {
		colWidth := availableWidth/len(m.columns) - 4
		for i := range m.columns {
			rendered[i] = m.renderColumn(i, colWidth)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	} else {
		colWidth := max(availableWidth-4, 20)
		for i := range m.columns {
			rendered[i] = m.renderColumn(i, colWidth)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, rendered...)
	}

	footer := help
	if m.status != "" {
		footer = dimStyle.Render(m.status) + "\n" + help
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, footer)
}

func (m boardModel) renderColumn(i, width int) string {
	column := m.columns[i]
	var b strings.Builder
	b.WriteString(columnHeaderStyle.Render(fmt.Sprintf("%s (%d)", column.Status.Label(), len(column.Tasks))))
	b.WriteString("\n")

	if len(column.Tasks) == 0 {
		b.WriteString(dimStyle.Render("No tasks"))
	}
	now := m.now()
	for j, t := range column.Tasks {
		line := fmt.Sprintf("%s %s", checkbox(t.Completed), t.Title)
		if t.Completed {
			line = completedStyle.Render(line)
		}
		if i == m.col && j == m.rows[i] {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n    ")
		b.WriteString(deadlineStyle(t, now).Render(deadlineText(t, now)))
		b.WriteString("\n")
	}

	style := columnStyle
	if i == m.col {
		style = activeColumnStyle
	}
	return style.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func deadlineText(t models.Task, now time.Time) string {
	text := formatDate(t.Deadline)
	if t.Completed {
		return text
	}
	if label := deadlineLabel(core.ClassifyDeadline(t.Deadline, now)); label != "" {
		text += " · " + label
	}
	return text
}

func deadlineStyle(t models.Task, now time.Time) lipgloss.Style {
	if t.Completed {
		return dimStyle
	}
	switch core.ClassifyDeadline(t.Deadline, now) {
	case models.DeadlineOverdue:
		return overdueStyle
	case models.DeadlineToday:
		return dueTodayStyle
	case models.DeadlineApproaching:
		return approachingStyle
	}
	return dimStyle
}

// printBoard writes the columns as plain text.
func printBoard(out io.Writer, columns []core.BoardColumn, now time.Time) {
	for i, column := range columns {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "== %s (%d) ==\n", strings.ToUpper(column.Status.Label()), len(column.Tasks))
		for _, t := range column.Tasks {
			fmt.Fprintf(out, "  %s %-8s %s  (%s)\n", checkbox(t.Completed), shortID(t.ID), t.Title, deadlineText(t, now))
		}
	}
}

var boardPlain bool

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show tasks on the Kanban board",
	Long: `Show tasks in To Do, In Progress and Done columns.

The interactive board selects a column with ←/→ and a task with ↑/↓.
< and > move the selected task to the neighbouring column, space toggles
completion and x deletes it. Use --plain to print the columns instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := requireStore()
		if err != nil {
			return err
		}
		if boardPlain {
			printBoard(cmd.OutOrStdout(), core.BoardColumns(store.Tasks()), nowFunc())
			return nil
		}
		p := tea.NewProgram(newBoardModel(cmdContext(cmd), store, nowFunc), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	boardCmd.Flags().BoolVar(&boardPlain, "plain", false, "Print the columns without the interactive board")
	rootCmd.AddCommand(boardCmd)
}
