package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// PrintPlan writes a render plan as a plain table: breadcrumb, rows, pager.
func PrintPlan(w io.Writer, plan RenderPlan) error {
	crumbs := make([]string, 0, len(plan.Breadcrumb))
	for _, c := range plan.Breadcrumb {
		if c.Active {
			crumbs = append(crumbs, "["+c.Label+"]")
		} else {
			crumbs = append(crumbs, c.Label)
		}
	}
	if _, err := fmt.Fprintln(w, strings.Join(crumbs, " / ")); err != nil {
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Name", "Last Modified", "Size")
	for _, row := range VisibleRows(plan.Rows) {
		t.Row(row.Icon+" "+row.Name, row.Modified, row.Size)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	if plan.Pager.Visible {
		if _, err := fmt.Fprintln(w, plan.Pager.Label); err != nil {
			return err
		}
	}
	return nil
}
