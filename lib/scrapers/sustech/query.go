package sustech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	queryFormSelector = "#kscjQueryForm"
	// the form field of the academic term selector
	termField = "kksj"
)

// Term identifies a half-year teaching period, Year is the calendar year the
// academic year starts in.
type Term struct {
	Year int `json:"year"`
	Term int `json:"term"`
}

var ErrInvalidTerm = errors.New("invalid term")

// Key returns the portal's identifier for the term.
func (t Term) Key() string {
	return TermKey(t.Year, t.Term)
}

func (t Term) Validate() error {
	if t.Year < 1000 || t.Year > 9999 {
		return fmt.Errorf("year %d is not four digits: %w", t.Year, ErrInvalidTerm)
	}
	if t.Term < 1 || t.Term > 3 {
		return fmt.Errorf("term %d is not 1, 2 or 3: %w", t.Term, ErrInvalidTerm)
	}
	return nil
}

// TermKey formats a term the way the portal identifies it, ex. year=2018,
// term=1 becomes "2018-2019-1".
func TermKey(year, term int) string {
	return fmt.Sprintf("%d-%d-%d", year, year+1, term)
}

// ParseTerm accepts either "<year>-<term>" or a full term key
// "<year>-<year+1>-<term>".
func ParseTerm(s string) (Term, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	numbers := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Term{}, fmt.Errorf("parse %q: %w", s, ErrInvalidTerm)
		}
		numbers[i] = n
	}

	var t Term
	switch len(numbers) {
	case 2:
		t = Term{Year: numbers[0], Term: numbers[1]}
	case 3:
		if numbers[1] != numbers[0]+1 {
			return Term{}, fmt.Errorf("parse %q: end year must follow start year: %w", s, ErrInvalidTerm)
		}
		t = Term{Year: numbers[0], Term: numbers[2]}
	default:
		return Term{}, fmt.Errorf("parse %q: %w", s, ErrInvalidTerm)
	}
	return t, t.Validate()
}

// QueryTerm fetches the grades of a single term.
func (s *AuthenticatedSession) QueryTerm(ctx context.Context, year, term int) ([]Course, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.queryTerm(ctx, Term{Year: year, Term: term})
}

// QueryTerms fetches each term in order and concatenates the results, the
// first failure aborts the whole call.
func (s *AuthenticatedSession) QueryTerms(ctx context.Context, terms []Term) ([]Course, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := []Course{}
	for _, t := range terms {
		courses, err := s.queryTerm(ctx, t)
		if err != nil {
			return nil, err
		}
		result = append(result, courses...)
	}
	return result, nil
}

func (s *AuthenticatedSession) queryTerm(ctx context.Context, t Term) ([]Course, error) {
	key := t.Key()
	s.tel.ReportDebug("query term", key)

	res, err := s.http.R().
		SetContext(ctx).
		Get(s.endpoints.queryForm)
	err = checkResponse("fetch query form", s.endpoints.queryForm, res, err)
	if err != nil {
		s.tel.ReportBroken(report_client_query_term, err, key)
		return nil, err
	}
	doc, err := parseDocument(res)
	if err != nil {
		s.tel.ReportBroken(
			report_client_query_term,
			fmt.Errorf("parse query form: %w", err),
			key,
		)
		return nil, err
	}

	form := ExtractForm(doc, queryFormSelector)
	if len(form) == 0 {
		err := fmt.Errorf("query page has no %s form: %w", queryFormSelector, ErrUnexpectedPage)
		s.tel.ReportBroken(report_client_query_term, err, key)
		return nil, err
	}
	form[termField] = key

	res, err = s.http.R().
		SetContext(ctx).
		SetHeader("referer", s.endpoints.queryForm).
		SetFormData(form).
		Post(s.endpoints.queryList)
	err = checkResponse("post query form", s.endpoints.queryList, res, err)
	if err != nil {
		s.tel.ReportBroken(report_client_query_term, err, key)
		return nil, err
	}

	return s.collectCourses(res.Body(), report_client_query_term)
}

// QueryAll fetches the grades of every term. The result list shows the full
// history when no term filter was submitted earlier in the session.
func (s *AuthenticatedSession) QueryAll(ctx context.Context) ([]Course, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tel.ReportDebug("query all terms")

	res, err := s.http.R().
		SetContext(ctx).
		Get(s.endpoints.queryList)
	err = checkResponse("fetch result list", s.endpoints.queryList, res, err)
	if err != nil {
		s.tel.ReportBroken(report_client_query_all, err)
		return nil, err
	}

	return s.collectCourses(res.Body(), report_client_query_all)
}

func (s *AuthenticatedSession) collectCourses(body []byte, reportId string) ([]Course, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.tel.ReportBroken(reportId, fmt.Errorf("parse result list: %w", err))
		return nil, err
	}
	if !hasResultsTable(doc) {
		err := fmt.Errorf("result list has no %s table: %w", resultsTableSelector, ErrUnexpectedPage)
		s.tel.ReportBroken(reportId, err)
		return nil, err
	}

	courses := slices.Collect(Courses(doc))
	if courses == nil {
		courses = []Course{}
	}
	s.tel.ReportCount(report_client_course_rows, int64(len(courses)))
	return courses, nil
}
