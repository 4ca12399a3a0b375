package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"labserve/config"
)

// LabStatus is one row of the lab listing.
type LabStatus struct {
	Lab     config.LabEntry
	Path    string
	Present bool
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderLabTable renders the lab table with a presence column.
func RenderLabTable(rows []LabStatus) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "PORT", "DIRECTORY", "STATUS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		status := "ok"
		if !r.Present {
			status = "missing"
		}
		t.Row(r.Lab.Name, strconv.Itoa(r.Lab.Port), r.Lab.Dir, status)
	}
	return t.String()
}
