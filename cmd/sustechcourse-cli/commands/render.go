package commands

import (
	"fmt"
	"io"
	"sustechcourse-backend/lib/scrapers/sustech"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderCourses(out io.Writer, courses []sustech.Course) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Term", "Code", "Name", "Grade", "Score", "Credits", "Hours", "Assessment", "Type", "Category"})
	for _, c := range courses {
		t.AppendRow(table.Row{
			c.Term, c.Code, c.Name, c.Grade, c.Score, c.Point,
			c.Hours, c.EvalMethod, c.CourseType, c.Category,
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d courses", len(courses))})
	t.Render()
}
