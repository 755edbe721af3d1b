package detect

import "errors"

// ErrThresholdOrder is returned when the continue threshold exceeds the
// start threshold. Hysteresis requires continue <= start.
var ErrThresholdOrder = errors.New("continue threshold must not exceed start threshold")
