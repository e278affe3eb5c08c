package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"scenesmith/internal/infra"
	"scenesmith/internal/infra/settings"
)

func main() {
	var (
		keyFlag   string
		delayFlag int
	)
	flag.StringVar(&keyFlag, "key", "", "generation API key (falls back to GENERATION_API_KEY)")
	flag.IntVar(&delayFlag, "delay-ms", -1, "inter-request delay override in milliseconds (optional)")
	flag.Parse()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("GENERATION_API_KEY"))
	}
	if key == "" && delayFlag < 0 {
		fmt.Fprintln(os.Stderr, "nothing to store: pass -key (or GENERATION_API_KEY) and/or -delay-ms")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "apikey").Logger()
	store := settings.NewStore(infra.NewSQLRunner(pool, logger), "", 0)

	execCtx, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()

	if key != "" {
		if err := store.SetAPIKey(execCtx, key); err != nil {
			fmt.Fprintf(os.Stderr, "failed to persist api key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("generation api key stored")
	}
	if delayFlag >= 0 {
		delay := time.Duration(delayFlag) * time.Millisecond
		if err := store.SetRequestDelay(execCtx, delay); err != nil {
			fmt.Fprintf(os.Stderr, "failed to persist delay: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("inter-request delay stored: %dms\n", delayFlag)
	}
}
