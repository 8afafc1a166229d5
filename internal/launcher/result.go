package launcher

import (
	"fmt"
	"time"
)

// Result is the immutable outcome of one child invocation. Set once at
// completion, never updated.
type Result struct {
	PID       int           `json:"pid"`
	ExitCode  int           `json:"exit_code"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// Success reports whether the child exited cleanly.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// ExitError carries a child's non-zero exit status up through the cobra
// error path so main can relay it verbatim as the launcher's own status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("child exited with code %d", e.Code)
}
