package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/fonbook/internal/phonebook"
)

// RenderPhonebook renders contacts as a table: one row per contact, numbers
// stacked in their cell, sorted by name.
func RenderPhonebook(book phonebook.Phonebook, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	rows := make([][]string, 0, len(book))
	for _, c := range book.Sorted() {
		numbers := strings.Join(c.Numbers, "\n")
		if numbers == "" {
			numbers = "-"
		}
		image := "-"
		if c.ImageHTTPURL != "" {
			image = c.ImageHTTPURL
		}
		rows = append(rows, []string{c.Name, numbers, image})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		BorderRow(true).
		Width(width).
		Headers("NAME", "NUMBERS", "IMAGE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case col == 2:
				return TableMutedCellStyle
			default:
				return TableCellStyle
			}
		})

	summary := StepNoteStyle.Render(fmt.Sprintf("  %s", book.Summary()))
	return lipgloss.JoinVertical(lipgloss.Left, t.Render(), summary)
}

// RenderList renders a two-column table, used for phonebook ids, profiles
// and discovered boxes.
func RenderList(headers [2]string, rows [][2]string, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		data = append(data, []string{r[0], r[1]})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		Width(width).
		Headers(headers[0], headers[1]).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Render()
}
