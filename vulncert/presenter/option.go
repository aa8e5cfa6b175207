package presenter

import "strings"

// Option selects one of the supported report formats.
type Option int

const (
	UnknownPresenter Option = iota
	JSONPresenter
	TablePresenter
)

// Options enumerates every format a user can ask for.
var Options = []Option{
	JSONPresenter,
	TablePresenter,
}

// ParseOption maps a user-supplied format name to an Option, returning
// UnknownPresenter when the name matches nothing.
func ParseOption(userStr string) Option {
	switch strings.ToLower(userStr) {
	case "json":
		return JSONPresenter
	case "table":
		return TablePresenter
	default:
		return UnknownPresenter
	}
}

func (o Option) String() string {
	switch o {
	case JSONPresenter:
		return "json"
	case TablePresenter:
		return "table"
	default:
		return "UnknownPresenter"
	}
}
