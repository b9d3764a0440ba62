package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"wgsmaster/internal/driver"
)

type progressModel struct {
	title      string
	events     <-chan driver.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	stageLabel string
	records    int
	width      int
	done       bool
}

type fileItem struct {
	path    string
	status  string
	records int
	share   float64
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders run progress.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = fmt.Sprintf("done: %s, %d records", header, m.records)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	countWidth := 8
	nameWidth := max(m.width-statusWidth-countWidth-6, 20)

	for _, item := range m.items {
		name := truncate(item.path, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		count := ""
		if item.records > 0 {
			count = fmt.Sprintf("%*d rec", countWidth-4, item.records)
		}
		fmt.Fprintf(&b, "  %s %s %s\n", statusStyled, padRight(name, nameWidth), count)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		if label := runLabel(ev.Stage, ev.Status); label != "" {
			m.stageLabel = label
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		item.status = label
	}
	if share := progressFromEvent(ev.Stage, ev.Status); share > item.share {
		item.share = share
	}
	if ev.Stage == driver.StageProcess && ev.Records > 0 {
		item.records = ev.Records
		m.records += ev.Records
	}
	m.stageLabel = stageLabel(ev.Stage)

	total := 0.0
	for _, it := range m.items {
		total += it.share
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

// progressFromEvent maps a file event to its share of the work: the scan
// pass is the first third, processing the rest.
func progressFromEvent(stage driver.Stage, status driver.Status) float64 {
	switch stage {
	case driver.StageScan:
		switch status {
		case driver.StatusWorking:
			return 0.1
		case driver.StatusDone, driver.StatusError:
			return 0.33
		}
	case driver.StageProcess:
		switch status {
		case driver.StatusWorking:
			return 0.5
		case driver.StatusDone, driver.StatusRejected, driver.StatusError:
			return 1.0
		}
	case driver.StageMaster:
		return 1.0
	}
	return 0.0
}

func statusLabel(stage driver.Stage, status driver.Status) string {
	switch status {
	case driver.StatusQueued:
		if stage == driver.StageScan {
			return "queued"
		}
		return ""
	case driver.StatusDone:
		if stage == driver.StageScan {
			return "scanned"
		}
		return "done"
	case driver.StatusRejected:
		return "rejected"
	case driver.StatusError:
		return "error"
	case driver.StatusWorking:
		if stage == driver.StageScan {
			return "scanning"
		}
		return "processing"
	default:
		return ""
	}
}

func stageLabel(stage driver.Stage) string {
	switch stage {
	case driver.StageScan:
		return "scanning"
	case driver.StageProcess:
		return "processing"
	case driver.StageMaster:
		return "building master"
	default:
		return ""
	}
}

func runLabel(stage driver.Stage, status driver.Status) string {
	if status == driver.StatusDone && stage == driver.StageMaster {
		return "master written"
	}
	return stageLabel(stage)
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done", "scanned":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "rejected":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case "scanning", "processing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

func padRight(value string, width int) string {
	return runewidth.FillRight(value, width)
}
