// Command migrate applies the embedded control-database migrations. It is an
// operator tool: the server creates the session table on demand regardless.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/techind/novalink-admin/internal/config"
	"github.com/techind/novalink-admin/internal/db"
	"github.com/techind/novalink-admin/internal/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, true, "")

	target := flag.String("database", cfg.ControlDB, "database to migrate")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall migration timeout")
	flag.Parse()

	pools := db.NewPoolCache(db.PoolConfig{
		BaseURL:        cfg.DatabaseURL,
		ConnectTimeout: cfg.ConnectTimeout,
	})
	defer pools.Close()

	handle, err := pools.GetOrCreate(*target)
	if err != nil {
		log.Fatal().Err(err).Str("database", *target).Msg("could not open database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := db.Migrate(ctx, handle.DB); err != nil {
		log.Fatal().Err(err).Str("database", *target).Msg("migration failed")
	}
	log.Info().Str("database", *target).Msg("migrations applied")
}
