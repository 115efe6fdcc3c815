// Command migrate applies the SQL files under migrations/ to the ledger
// database.
//
//	migrate [-path migrations] up|down|reset
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/eaglebank/ledger/shared/config"
	"github.com/eaglebank/ledger/shared/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	path := flag.String("path", "migrations", "directory holding the migration files")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: migrate [-path dir] up|down|reset")
		os.Exit(2)
	}

	cfg, _ := config.Load("migrate", "")
	log, err := logger.New(cfg.Service, cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("failed to create migration driver", zap.Error(err))
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+*path, "postgres", driver)
	if err != nil {
		log.Fatal("failed to load migrations", zap.String("path", *path), zap.Error(err))
	}

	cmd := flag.Arg(0)
	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "reset":
		err = m.Drop()
	default:
		log.Fatal("unknown command", zap.String("command", cmd))
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("migration failed", zap.String("command", cmd), zap.Error(err))
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Warn("could not read schema version", zap.Error(verr))
		return
	}
	log.Info("migration complete", zap.String("command", cmd), zap.Uint("version", version), zap.Bool("dirty", dirty))
}
