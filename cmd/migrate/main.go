// Command migrate applies or rolls back the embedded job_seekers and identities migrations.
//
//	go run ./cmd/migrate                       # apply all pending
//	go run ./cmd/migrate -direction=down -steps=1
package main

import (
	"flag"
	"log"

	"jobseeker-bot/internal/config"
	"jobseeker-bot/internal/db/migrate"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("migrate: ")

	var (
		direction = flag.String("direction", string(migrate.Up), "up or down")
		steps     = flag.Int("steps", 0, "with -direction=down, how many migrations to roll back (0 = all)")
	)
	flag.Parse()

	cfg, err := config.Read()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; export it or put it in .env")
	}
	if err := migrate.Run(cfg.DatabaseURL, migrate.Direction(*direction), *steps); err != nil {
		log.Fatal(err)
	}
	log.Printf("%s complete", *direction)
}
