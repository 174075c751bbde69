package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/tslabel/internal/models"
)

const tableHeight = 7

func newAnnotationTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Start", Width: 10},
			{Title: "End", Width: 10},
			{Title: "Length", Width: 10},
		}),
		table.WithHeight(tableHeight),
		table.WithFocused(true),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#7D56F4"))
	t.SetStyles(s)
	return t
}

// annotationRows converts exported annotations to [table.Row] values.
func annotationRows(list []models.ExportedAnnotation) []table.Row {
	rows := make([]table.Row, len(list))
	for i, a := range list {
		rows[i] = table.Row{
			strconv.Itoa(a.ID),
			strconv.Itoa(a.Start),
			strconv.Itoa(a.End),
			strconv.Itoa(a.Length),
		}
	}
	return rows
}

// selectedRow returns the annotation id under the table cursor.
func (m *Model) selectedRow() (int, bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(row[0])
	return id, err == nil
}

// selectRow moves the table cursor to annotation id.
func (m *Model) selectRow(id int) {
	want := strconv.Itoa(id)
	m.table.SetRows(annotationRows(m.session.Store().ExportAll()))
	for i, row := range m.table.Rows() {
		if row[0] == want {
			m.table.SetCursor(i)
			return
		}
	}
}
