package sales

import "fmt"

// ParameterError reports an invalid argument from an API caller, such as a
// non-positive record count or an unknown aggregation granularity. It is
// fatal to the call that received the parameter, not to the run.
type ParameterError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}
