package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chandrasekhar-cherukuru/wep-checkout/internal/storage/postgres"
)

// options — аргументы запуска мигратора.
type options struct {
	direction string
	steps     int
	dsn       string
	timeout   time.Duration
}

func parseOptions() options {
	var opts options
	flag.StringVar(&opts.direction, "direction", "up", "migration direction: up|down|status")
	flag.IntVar(&opts.steps, "steps", 0, "number of revisions to apply/rollback (0=all for up, 1 for down)")
	flag.StringVar(&opts.dsn, "dsn", "", "PostgreSQL DSN (fallback: WEP_POSTGRES_DSN)")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall deadline for the run")
	flag.Parse()

	if strings.TrimSpace(opts.dsn) == "" {
		opts.dsn = strings.TrimSpace(os.Getenv("WEP_POSTGRES_DSN"))
	}
	opts.direction = strings.ToLower(strings.TrimSpace(opts.direction))
	return opts
}

func main() {
	if err := run(parseOptions()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.dsn == "" {
		return fmt.Errorf("WEP_POSTGRES_DSN (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	store, err := postgres.Open(ctx, opts.dsn)
	if err != nil {
		return fmt.Errorf("open postgres store: %w", err)
	}
	defer store.Close()

	switch opts.direction {
	case "up":
		if err := store.MigrateUp(ctx, opts.steps); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	case "down":
		if err := store.MigrateDown(ctx, opts.steps); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	case "status":
		// Только печать статуса ниже.
	default:
		return fmt.Errorf("unsupported direction %q (use up|down|status)", opts.direction)
	}

	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	fmt.Printf("%s ok: schema version %d, %d revision(s) applied\n", opts.direction, version, count)
	return nil
}
