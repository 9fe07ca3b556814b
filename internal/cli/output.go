package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/jira-bridge/internal/model"
	"github.com/nhle/jira-bridge/internal/theme"
)

var (
	successStyle = theme.SuccessStyle
	errorStyle   = theme.ErrorStyle
	mutedStyle   = theme.MutedStyle
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printRawJSON re-indents a JSON document produced by the service.
func printRawJSON(w io.Writer, doc string) error {
	var v interface{}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		_, err = fmt.Fprintln(w, doc)
		return err
	}
	return printJSON(w, v)
}

// Columns of the issue listing.
const (
	colKey = iota
	colStatus
	colPriority
	colAssignee
	colSummary
)

// printIssueTable writes the issues as a bordered listing with colored
// status and priority cells.
func printIssueTable(w io.Writer, issues []model.Issue) error {
	if len(issues) == 0 {
		printNote(w, "no issues")
		return nil
	}

	rows := make([][]string, 0, len(issues))
	for _, is := range issues {
		assignee := is.Assignee
		if assignee == "" {
			assignee = "unassigned"
		}
		rows = append(rows, []string{is.JiraKey, is.Status, is.Priority, assignee, is.Summary})
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("KEY", "STATUS", "PRIORITY", "ASSIGNEE", "SUMMARY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.HeaderStyle.Padding(0, 1)
			}
			is := issues[row]
			switch col {
			case colKey:
				return theme.KeyStyle.Padding(0, 1)
			case colStatus:
				return theme.StatusStyle(is.Status).Padding(0, 1)
			case colPriority:
				return theme.PriorityStyle(is.Priority).Padding(0, 1)
			case colAssignee:
				if is.Assignee == "" {
					return mutedStyle.Padding(0, 1)
				}
			}
			return cell
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(msg))
}

func printNote(w io.Writer, msg string) {
	fmt.Fprintln(w, mutedStyle.Render(msg))
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
