package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/squad/internal/seed"
	"github.com/okian/squad/pkg/logger"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 2 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait    = flag.Duration("wait", defaultTimeout, "How long to wait for ratings to be applied")
		format  = flag.String("log-format", logger.FormatText, "Log format: text or json")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("seed")

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	rep, err := seed.Run(ctx, seed.NewClient(*baseURL, *timeout),
		seed.WithWaitTimeout(*wait),
		seed.WithLogger(log),
	)
	if err != nil {
		log.Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "seeding complete",
		logger.Int("players", len(rep.PlayerIDs)),
		logger.Int("teams", len(rep.Teams)),
		logger.String("winner", string(rep.Match.Winner)),
	)
}
