package presenter

import (
	"io"

	"github.com/vulncert/vulncert/vulncert"
	"github.com/vulncert/vulncert/vulncert/presenter/json"
	"github.com/vulncert/vulncert/vulncert/presenter/table"
)

// Presenter is the main interface other Presenters need to implement
type Presenter interface {
	Present(io.Writer) error
}

// GetPresenter retrieves a Presenter that matches a CLI option
func GetPresenter(option Option, result vulncert.Result) Presenter {
	switch option {
	case JSONPresenter:
		return json.NewPresenter(result)
	case TablePresenter:
		return table.NewPresenter(result)
	default:
		return nil
	}
}
