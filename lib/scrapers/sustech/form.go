package sustech

import (
	"github.com/PuerkitoBio/goquery"
)

// FormFields maps the name of an <input> to its value, it is sent back as a
// form-encoded body.
type FormFields = map[string]string

// ExtractForm collects every <input> under the elements matching
// formSelector that has both a name and a value. Inputs missing either are
// skipped (submit buttons, empty text boxes), a missing form yields an empty map.
func ExtractForm(doc *goquery.Document, formSelector string) FormFields {
	fields := FormFields{}
	doc.Find(formSelector).Find("input").Each(func(_ int, input *goquery.Selection) {
		name, hasName := input.Attr("name")
		value, hasValue := input.Attr("value")
		if !hasName || !hasValue {
			return
		}
		fields[name] = value
	})
	return fields
}
