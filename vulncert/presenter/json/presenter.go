// Package json renders a match result as an indented JSON document.
package json

import (
	"encoding/json"
	"io"

	"github.com/vulncert/vulncert/vulncert"
)

type Presenter struct {
	result vulncert.Result
}

func NewPresenter(result vulncert.Result) *Presenter {
	return &Presenter{
		result: result,
	}
}

// Present writes the full result document to output.
func (pres *Presenter) Present(output io.Writer) error {
	enc := json.NewEncoder(output)
	// the report is for humans and shell pipelines, not browsers
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	return enc.Encode(&pres.result)
}
