package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/adityakqumar/RemoteScreen/internal/session"
)

func styledTable(headers []string, rows [][]string) string {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})

	return tbl.Render()
}

// ActivityTableView renders the session's audit trail.
func ActivityTableView(entries []session.Entry) string {
	if len(entries) == 0 {
		return MutedStyle.Render("No activity recorded")
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.At.Format("15:04:05.000"), e.Kind, e.Detail}
	}

	return styledTable([]string{"Time", "Kind", "Detail"}, rows)
}

// RenderActivityTable outputs the activity log directly to stdout.
func RenderActivityTable(entries []session.Entry) {
	fmt.Println(ActivityTableView(entries))
}

// SessionSummaryView renders the closing state of a session.
func SessionSummaryView(s session.Session) string {
	rows := [][]string{
		{"Session", s.ID},
		{"Code", s.PairingCode},
		{"Role", string(s.Role)},
		{"Status", string(s.Status)},
		{"Created", s.CreatedAt.Format("15:04:05")},
	}
	if s.PartnerID != "" {
		rows = append(rows, []string{"Partner", s.PartnerID})
	}
	if s.ConnectedAt != nil {
		rows = append(rows, []string{"Connected", s.ConnectedAt.Format("15:04:05")})
	}
	if s.EndedAt != nil {
		rows = append(rows, []string{"Ended", s.EndedAt.Format("15:04:05")})
	}

	return styledTable([]string{"Field", "Value"}, rows)
}

// RenderSessionSummary outputs the session summary directly to stdout.
func RenderSessionSummary(s session.Session) {
	fmt.Println(SessionSummaryView(s))
}

// CodeInfoView renders the pairing code box shown to the host.
func CodeInfoView(code string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Success).
		Padding(1, 2)

	content := fmt.Sprintf("%s\n%s Pairing Code:  %s\n\nShare this code with the controller.",
		TitleStyle.Render(IconSuccess+" Session Ready!"),
		IconCode, BoldStyle.Foreground(Primary).Render(code),
	)

	return boxStyle.Render(content)
}

// RenderCodeInfo outputs the pairing code box directly to stdout.
func RenderCodeInfo(code string) {
	fmt.Println(CodeInfoView(code))
}
