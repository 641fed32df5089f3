package particle

import "fmt"

// TransportError wraps a module failure with trajectory context.
type TransportError struct {
	Step    int
	Time    float64
	Module  string
	Wrapped error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: step %d (t=%.4g s): %v", e.Module, e.Step, e.Time, e.Wrapped)
}

func (e *TransportError) Unwrap() error {
	return e.Wrapped
}
