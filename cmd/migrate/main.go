package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"storekd-sms/internal/adapters/db/postgres"
	"storekd-sms/internal/config"
)

func main() {
	conf := config.Load()
	if conf.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	fmt.Println("Connecting to database...")
	store, err := postgres.New(conf.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("Running migrations...")
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Seed the env-configured texters so the table reflects the running config.
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		for name, t := range conf.SMS.Texters {
			if err := store.SaveTexter(ctx, name, t); err != nil {
				log.Fatalf("Seed texter %s: %v", name, err)
			}
			fmt.Printf("  - seeded texter %s (driver %s)\n", name, t.Driver)
		}
	}

	texters, err := store.LoadTexters(ctx)
	if err != nil {
		log.Fatalf("Load texters: %v", err)
	}
	fmt.Printf("Migration complete, %d texter(s) configured\n", len(texters))
}
