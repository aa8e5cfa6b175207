package format

import (
	"bytes"
	"text/template"
)

// Tprintf renders the given template string with the provided values, returning the original
// string on any rendering failure.
func Tprintf(tmpl string, data map[string]interface{}) string {
	t := template.Must(template.New("tprintf").Parse(tmpl))
	buf := &bytes.Buffer{}
	if err := t.Execute(buf, data); err != nil {
		return tmpl
	}
	return buf.String()
}
