package textutil

import (
	"regexp"
	"strings"
	"sustechcourse-backend/lib/scrapers/sustech"

	"github.com/antzucaro/matchr"
)

// MatchThreshold is the minimum Jaro-Winkler similarity for two names to be
// considered the same.
const MatchThreshold = 0.85

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchName reports whether query names the same thing as name, either as a
// substring or by being similar enough to it. An empty query matches
// everything.
func MatchName(name, query string) bool {
	query = NormalizeName(query)
	if query == "" {
		return true
	}
	name = NormalizeName(name)
	if strings.Contains(name, query) {
		return true
	}
	return matchr.JaroWinkler(name, query, false) >= MatchThreshold
}

// FilterCourses keeps the courses whose name or code matches query, in order.
func FilterCourses(courses []sustech.Course, query string) []sustech.Course {
	result := []sustech.Course{}
	for _, c := range courses {
		if MatchName(c.Name, query) || MatchName(c.Code, query) {
			result = append(result, c)
		}
	}
	return result
}
