package syncpolicy

import "errors"

// ErrInvalidTimeRange is returned when a TimeRange strategy's From is after
// its To.
var ErrInvalidTimeRange = errors.New("syncpolicy: invalid time range")
