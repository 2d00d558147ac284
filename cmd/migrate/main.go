package main

import (
	"flag"
	"os"

	"github.com/noah-isme/toko-ledger/internal/app"
	"github.com/noah-isme/toko-ledger/internal/config"
	"github.com/noah-isme/toko-ledger/internal/db"
)

func main() {
	steps := flag.Int("steps", 1, "number of migrations to roll back with -down")
	down := flag.Bool("down", false, "roll back instead of applying")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := app.Logger(cfg, "migrate")

	m, err := db.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise migrator")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Error().AnErr("source", srcErr).AnErr("database", dbErr).Msg("close migrator")
		}
	}()

	if *down {
		err = db.Down(m, *steps)
	} else {
		err = db.Up(m)
	}
	if err != nil {
		logger.Error().Err(err).Bool("down", *down).Msg("migration failed")
		os.Exit(1)
	}

	version, dirty, verr := m.Version()
	logger.Info().Uint("version", version).Bool("dirty", dirty).AnErr("version_err", verr).Msg("migrations complete")
}
