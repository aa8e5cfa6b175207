package vulncerterr

import "fmt"

// ExpectedErr marks error conditions that are legitimate outcomes of a run rather than
// failures, such as tripping the --fail-on severity gate. They surface to the user as
// results, not as crashes or stack traces.
type ExpectedErr struct {
	Err error
}

func NewExpectedErr(msgFormat string, args ...interface{}) ExpectedErr {
	return ExpectedErr{
		Err: fmt.Errorf(msgFormat, args...),
	}
}

func (e ExpectedErr) Error() string {
	return e.Err.Error()
}

func (e ExpectedErr) Unwrap() error {
	return e.Err
}
