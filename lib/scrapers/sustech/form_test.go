package sustech

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, body []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestExtractForm(t *testing.T) {
	testCases := []struct {
		name     string
		page     []byte
		selector string
		expected FormFields
	}{
		{
			name:     "login page",
			page:     loginPageHtml,
			selector: loginFormSelector,
			expected: FormFields{
				"lt":        "LT-1",
				"execution": "e1s1",
				"_eventId":  "submit",
			},
		},
		{
			name:     "query form keeps empty values and ignores selects",
			page:     queryFormHtml,
			selector: queryFormSelector,
			expected: FormFields{
				"kcmc":  "",
				"kcxz":  "",
				"xsfs":  "all",
				"token": "tok-42",
			},
		},
		{
			name:     "missing form",
			page:     maintenanceHtml,
			selector: loginFormSelector,
			expected: FormFields{},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			fields := ExtractForm(mustParse(t, test.page), test.selector)
			if diff := cmp.Diff(test.expected, fields); diff != "" {
				t.Fatalf("form fields differ (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractFormScopedToSelector(t *testing.T) {
	doc := mustParse(t, loginPageHtml)

	fields := ExtractForm(doc, "#search")
	require.Equal(t, FormFields{"unrelated": "1"}, fields)

	fields = ExtractForm(doc, loginFormSelector)
	require.NotContains(t, fields, "unrelated")
}

func TestExtractFormDuplicateNames(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<form id="f">
			<input name="a" value="first">
			<input name="a" value="second">
		</form>`,
	))
	require.NoError(t, err)

	// the last input in document order wins
	require.Equal(t, FormFields{"a": "second"}, ExtractForm(doc, "#f"))
}
