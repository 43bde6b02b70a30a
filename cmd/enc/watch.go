package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	cl "encore/internal/cli"
	"encore/internal/sim"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	watchHelpStyle  = lipgloss.NewStyle().Faint(true)
	watchErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func newWatchCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live chart view: advance weeks and watch positions move",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			m := newWatchModel(newClient(apiBase), sess.SaveID)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

type chartMsg struct {
	snap sim.ChartSnapshot
	err  error
}

type advancedMsg struct {
	res sim.CommandResult
	err error
}

type watchModel struct {
	client *cl.Client
	saveID string
	kind   string
	table  table.Model
	date   sim.GameDate
	status string
	errMsg string
}

func newWatchModel(client *cl.Client, saveID string) watchModel {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "LW", Width: 4},
		{Title: "PEAK", Width: 4},
		{Title: "WKS", Width: 4},
		{Title: "TITLE", Width: 32},
		{Title: "ARTIST", Width: 20},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(20),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)
	return watchModel{client: client, saveID: saveID, kind: "hot", table: t}
}

func (m watchModel) Init() tea.Cmd {
	return m.fetchChart()
}

func (m watchModel) fetchChart() tea.Cmd {
	client, saveID, kind := m.client, m.saveID, m.kind
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		snap, err := client.Chart(ctx, saveID, kind, "")
		return chartMsg{snap: snap, err: err}
	}
}

func (m watchModel) advanceWeek() tea.Cmd {
	client, saveID := m.client, m.saveID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		res, err := client.Advance(ctx, saveID, 1)
		return advancedMsg{res: res, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "w":
			m.status = "advancing week..."
			return m, m.advanceWeek()
		case "r":
			return m, m.fetchChart()
		case "tab":
			if m.kind == "hot" {
				m.kind = "albums"
			} else {
				m.kind = "hot"
			}
			return m, m.fetchChart()
		}
	case chartMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.date = msg.snap.Date
		m.table.SetRows(chartRows(msg.snap))
		return m, nil
	case advancedMsg:
		if msg.err != nil {
			m.status = ""
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("advanced to %s (%d emails)", msg.res.Date, len(msg.res.Emails))
		m.errMsg = ""
		return m, m.fetchChart()
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func chartRows(snap sim.ChartSnapshot) []table.Row {
	rows := make([]table.Row, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		lw := "NEW"
		if e.LastWeek != nil {
			lw = strconv.Itoa(*e.LastWeek)
		}
		title := e.Title
		if e.Player {
			title = "* " + title
		}
		rows = append(rows, table.Row{
			strconv.Itoa(e.Rank), lw, strconv.Itoa(e.Peak), strconv.Itoa(e.WeeksOn), title, e.Artist,
		})
	}
	return rows
}

func (m watchModel) View() string {
	header := watchTitleStyle.Render(fmt.Sprintf("%s chart - %s", m.kind, m.date))
	body := m.table.View()
	footer := watchHelpStyle.Render("w advance | tab hot/albums | r refresh | q quit")
	if m.status != "" {
		footer = m.status + "\n" + footer
	}
	if m.errMsg != "" {
		footer = watchErrStyle.Render(m.errMsg) + "\n" + footer
	}
	return header + "\n" + body + "\n" + footer
}
