// Command feedgen serves a synthetic sensor feed over TCP in the line
// protocol the engine ingests. Point TSUKI_SOURCE_ENDPOINT at it to
// exercise a full live-source pipeline without hardware.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/tsuki/internal/feedgen"
	"github.com/okian/tsuki/pkg/logger"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7777", "listen address for the feed")
	amplitude := flag.Float64("amplitude", 2500, "raw peak magnitude of each pulse")
	period := flag.Float64("period", 5.0, "seconds between pulses")
	interval := flag.Duration("interval", 10*time.Millisecond, "spacing between samples")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Get().Error(ctx, "listen failed", logger.String("addr", *addr), logger.Error(err))
		return
	}

	logger.Get().Info(ctx, "feed listening",
		logger.String("addr", *addr),
		logger.Float64("amplitude", *amplitude),
		logger.Float64("period", *period),
	)

	s := feedgen.New(
		feedgen.WithAmplitude(*amplitude),
		feedgen.WithPeriod(*period),
		feedgen.WithInterval(*interval),
	)
	if err := s.Serve(ctx, ln); err != nil {
		logger.Get().Error(ctx, "feed server failed", logger.Error(err))
	}
}
