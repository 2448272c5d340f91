// daybook-agenda lists upcoming calendar events from the terminal. It is a
// thin consumer of the broker package: tokens are minted through the daybook
// backend, cached locally (optionally in redis) and refreshed only when
// stale.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/daybook-app/daybook/internal/calendar/broker"
	"github.com/daybook-app/daybook/internal/calendar/domain"
	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/logger"
)

func main() {
	cfg := config.Load()

	var (
		identityToken = flag.String("token", os.Getenv("DAYBOOK_TOKEN"), "identity token issued by the daybook backend")
		uid           = flag.String("uid", "me", "cache key for the local token store")
		mode          = flag.String("mode", cfg.Broker.Mode, "fetch mode: direct or proxy")
		backend       = flag.String("backend", cfg.Broker.BackendBaseURL, "daybook backend base URL")
		days          = flag.Int("days", 7, "window size in days, starting now")
		maxResults    = flag.Int("max", 20, "maximum events to list")
	)
	flag.Parse()

	if *identityToken == "" {
		fmt.Fprintln(os.Stderr, "missing identity token: pass -token or set DAYBOOK_TOKEN")
		os.Exit(2)
	}

	log, err := logger.New(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := newTokenStore(cfg, log)
	minter := broker.NewHTTPMinter(*backend, *identityToken)
	tokens := broker.NewTokenCache(minter, store, log)
	orchestrator := broker.NewOrchestrator(broker.Config{
		Mode:            *mode,
		ProviderBaseURL: cfg.Google.CalendarBaseURL,
		BackendBaseURL:  *backend,
		IdentityToken:   *identityToken,
	}, tokens, log)

	now := time.Now()
	payload, err := orchestrator.ListEvents(ctx, *uid, domain.ListEventsRequest{
		TimeMin:    now.Format(time.RFC3339),
		TimeMax:    now.AddDate(0, 0, *days).Format(time.RFC3339),
		MaxResults: *maxResults,
	})
	if err != nil {
		switch err {
		case domain.ErrNotConnected:
			fmt.Fprintln(os.Stderr, "calendar is not connected; visit the daybook app to connect it")
		case domain.ErrProviderAuth:
			fmt.Fprintln(os.Stderr, "authorization failed; sign in again")
		default:
			fmt.Fprintf(os.Stderr, "list events: %v\n", err)
		}
		os.Exit(1)
	}

	printAgenda(payload)
}

func newTokenStore(cfg config.Config, log *zap.Logger) broker.TokenStore {
	if cfg.RedisAddr == "" {
		return broker.NewMemoryTokenStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	log.Debug("using redis token store", zap.String("addr", cfg.RedisAddr))
	return broker.NewRedisTokenStore(client, cfg.Broker.Namespace)
}

type agendaEvent struct {
	Summary string `json:"summary"`
	Start   struct {
		DateTime string `json:"dateTime"`
		Date     string `json:"date"`
	} `json:"start"`
}

func printAgenda(payload json.RawMessage) {
	var listing struct {
		Items []agendaEvent `json:"items"`
	}
	if err := json.Unmarshal(payload, &listing); err != nil {
		fmt.Fprintf(os.Stderr, "decode events: %v\n", err)
		os.Exit(1)
	}

	if len(listing.Items) == 0 {
		fmt.Println("no upcoming events")
		return
	}
	for _, event := range listing.Items {
		when := event.Start.DateTime
		if when == "" {
			when = event.Start.Date + " (all day)"
		}
		fmt.Printf("%-28s %s\n", when, event.Summary)
	}
}
