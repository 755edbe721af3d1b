// Package source produces timestamped magnitude samples, either from a
// live device speaking the line protocol or from a deterministic
// synthetic generator used for testing and fallback.
package source

import (
	"context"

	"github.com/okian/tsuki/internal/domain/model"
)

// Default source configuration constants.
const (
	defaultScaleFactor = 9.8 // kilograms-force -> newtons
)

// Emit hands one sample to the ingestion pipe. A false return tells
// the source to stop producing.
type Emit func(ctx context.Context, s model.Sample) bool

// Source yields samples until ctx is cancelled or the stream ends.
type Source interface {
	// Run reads the source and emits samples in order. It returns
	// only after the read loop has exited and the underlying handle
	// is released.
	Run(ctx context.Context, emit Emit) error

	// Malformed returns the count of dropped unparseable records.
	Malformed() uint64
}
