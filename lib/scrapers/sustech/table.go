package sustech

import (
	"iter"
	"sustechcourse-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const resultsTableSelector = "#dataList"

// Course is a single row of the grade table. Every field is display text,
// scores can be things like "A", "P" or "--".
type Course struct {
	Code       string `json:"code"`
	Term       string `json:"term"`
	Name       string `json:"name"`
	Grade      string `json:"grade"`
	Score      string `json:"score"`
	Point      string `json:"point"`
	Hours      string `json:"hours"`
	EvalMethod string `json:"eval_method"`
	CourseType string `json:"course_type"`
	Category   string `json:"category"`
}

func hasResultsTable(doc *goquery.Document) bool {
	return doc.Find(resultsTableSelector).Length() > 0
}

// Courses lazily yields the rows of the grade table in document order. The
// header row is skipped, as are rows without a term and a code (pagination
// and "no data" rows). It does not modify doc so it can be ranged over again.
func Courses(doc *goquery.Document) iter.Seq[Course] {
	return func(yield func(Course) bool) {
		rows := doc.Find(resultsTableSelector).Find("tr")
		for i := 1; i < rows.Length(); i++ {
			cells := rows.Eq(i).Find("td").Nodes
			course, ok := courseFromCells(cells)
			if !ok {
				continue
			}
			if !yield(course) {
				return
			}
		}
	}
}

// cells[0] is the row number, cells[1] and cells[2] (term and code) are
// required, everything after that may be missing in older terms.
func courseFromCells(cells []*html.Node) (Course, bool) {
	if len(cells) < 3 {
		return Course{}, false
	}
	cell := func(i int) string {
		if i >= len(cells) {
			return ""
		}
		return htmlutil.NodeText(cells[i])
	}
	return Course{
		Term:       cell(1),
		Code:       cell(2),
		Name:       cell(3),
		Grade:      cell(4),
		Score:      cell(5),
		Point:      cell(6),
		Hours:      cell(7),
		EvalMethod: cell(8),
		CourseType: cell(9),
		Category:   cell(10),
	}, true
}
