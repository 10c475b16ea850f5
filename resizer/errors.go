package resizer

import "fmt"

// ConfigurationError is spec.md §7's missing-input error class: no wire RC
// block, no corner, no resize library, a nil buffer cell. Raised before any
// mutation.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "CONFIGURATION_ERROR: " + e.Msg
}

// InternalError is spec.md §7's internal-invariant-violation class: an
// unreachable branch, e.g. in segment-length accounting. Not recoverable.
type InternalError struct {
	Site string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("INTERNAL_ERROR[%s]", e.Site)
}
