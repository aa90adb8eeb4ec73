package browser

import (
	"errors"
	"fmt"
)

// ErrPageClosed is returned by page operations once the page (or its browser) is gone.
var ErrPageClosed = errors.New("page is closed")

// LaunchError reports that no browser could be started or connected to.
// It is fatal for the whole run.
type LaunchError struct {
	Op  string // locate, profile, launch, connect
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("browser launch failed (%s): %v", e.Op, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// DriverError reports a failed page or browser level operation. Callers abort the
// current publisher on it instead of retrying.
type DriverError struct {
	Op     string
	Target string // selector, URL or script name
	Err    error
}

func (e *DriverError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Target, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

func driverErr(op, target string, err error) error {
	if err == nil {
		return nil
	}
	return &DriverError{Op: op, Target: target, Err: err}
}

// IsPageClosed reports whether err means the page can no longer be driven.
func IsPageClosed(err error) bool {
	return errors.Is(err, ErrPageClosed)
}
