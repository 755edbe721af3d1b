package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/tsuki/internal/domain/model"
	"github.com/okian/tsuki/pkg/logger"
	"github.com/okian/tsuki/pkg/metrics"
)

// Line protocol constants.
const (
	fieldCount         = 2
	millisPerSecond    = 1000.0
	defaultReadTimeout = time.Second
)

// deadliner covers both *os.File and net.Conn.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// LineOption applies a configuration option to the LineSource.
type LineOption func(*LineSource)

// WithScaleFactor sets the multiplier applied to raw magnitudes.
func WithScaleFactor(f float64) LineOption {
	return func(s *LineSource) {
		if f > 0 {
			s.scale = f
		}
	}
}

// WithReadTimeout bounds a single blocking read so a stop request is
// observed promptly.
func WithReadTimeout(d time.Duration) LineOption {
	return func(s *LineSource) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// LineSource reads the device line protocol: one ASCII record per
// line, `<timestamp_ms>,<raw_magnitude>`. Malformed or partial lines
// are dropped and counted, never surfaced as errors.
type LineSource struct {
	handle      io.ReadCloser
	endpoint    string
	scale       float64
	readTimeout time.Duration
	malformed   atomic.Uint64
	log         logger.Logger
}

// OpenLine connects to endpoint: a `host:port` address is dialed over
// TCP, anything else is opened as a device file. ErrUnavailable wraps
// open failures so callers can fall back to the synthetic generator.
func OpenLine(endpoint string, opts ...LineOption) (*LineSource, error) {
	s := &LineSource{
		endpoint:    endpoint,
		scale:       defaultScaleFactor,
		readTimeout: defaultReadTimeout,
		log:         logger.Get().Named("source"),
	}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if strings.Contains(endpoint, ":") {
		var conn net.Conn
		conn, err = net.DialTimeout("tcp", endpoint, s.readTimeout)
		if err == nil {
			s.handle = conn
		}
	} else {
		var f *os.File
		f, err = os.Open(endpoint)
		if err == nil {
			s.handle = f
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, endpoint, err)
	}
	return s, nil
}

// Run reads lines until ctx is cancelled or the stream ends, emitting
// parsed samples in arrival order. The handle is released before Run
// returns, so the consumer sees end-of-stream only after the producer
// has let go of the device.
func (s *LineSource) Run(ctx context.Context, emit Emit) error {
	defer s.handle.Close()

	reader := bufio.NewReader(s.handle)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if d, ok := s.handle.(deadliner); ok {
			_ = d.SetReadDeadline(time.Now().Add(s.readTimeout))
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if isTimeout(err) {
				// A record truncated by the deadline is dropped like
				// any other partial line.
				if line != "" {
					s.drop(line)
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				if line != "" {
					s.observe(ctx, line, emit)
				}
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn(ctx, "read failed", logger.Error(err))
			return err
		}

		if !s.observe(ctx, line, emit) {
			return nil
		}
	}
}

// observe parses one line and emits the sample; malformed input is
// dropped and counted. Returns false when the emitter refuses.
func (s *LineSource) observe(ctx context.Context, line string, emit Emit) bool {
	sample, err := s.parse(line)
	if err != nil {
		s.drop(line)
		return true
	}
	return emit(ctx, sample)
}

// parse decodes `<timestamp_ms>,<raw_magnitude>`, converting to
// seconds and applying the scale factor.
func (s *LineSource) parse(line string) (model.Sample, error) {
	line = strings.TrimSpace(line)
	parts := strings.SplitN(line, ",", fieldCount)
	if len(parts) != fieldCount {
		return model.Sample{}, fmt.Errorf("want %d fields, got %d", fieldCount, len(parts))
	}
	ts, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return model.Sample{}, fmt.Errorf("bad timestamp: %w", err)
	}
	mag, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return model.Sample{}, fmt.Errorf("bad magnitude: %w", err)
	}
	return model.Sample{
		TS:        ts / millisPerSecond,
		Magnitude: mag * s.scale,
	}, nil
}

func (s *LineSource) drop(string) {
	s.malformed.Add(1)
	metrics.RecordSampleMalformed()
}

// Malformed returns the count of dropped unparseable records.
func (s *LineSource) Malformed() uint64 {
	return s.malformed.Load()
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
