package report

import "errors"

// ErrInvalidLimit signals a ranking limit <= 0. The call fails as a
// whole: clamping would mask caller bugs in a top-N report.
var ErrInvalidLimit = errors.New("report: limit must be positive")

// ErrNoPeriods signals a query without any selected period.
var ErrNoPeriods = errors.New("report: at least one period required")

// ErrTooManyPeriods signals a query exceeding the period cap.
var ErrTooManyPeriods = errors.New("report: too many periods selected")
