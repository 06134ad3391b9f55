package main

import (
	"log"

	"github.com/worklens/dashgate/migrate"
	"github.com/worklens/dashgate/reports"
	"github.com/worklens/dashgate/server"
	"github.com/worklens/dashgate/store"
)

func main() {
	cfg := server.GetConfig()

	if err := migrate.RunFromEnv(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	srv := server.NewServer(cfg, st, nil)

	if cfg.Database.DSN != "" {
		rs, err := reports.Open(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("reports: %v", err)
		}
		srv.WithReports(rs)
	} else {
		log.Printf("main: no report database configured, data APIs disabled")
	}

	// Capture identity before the first navigation resolves. With no
	// launch URL configured this seeds the assisted identity (assisted
	// mode only) or does nothing.
	srv.Sequencer().Run(cfg.LaunchURL)

	log.Printf("main: listening on %s (env %s)", cfg.Listen, cfg.Env)
	if err := srv.Engine().Run(cfg.Listen); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func openStore(cfg *server.AppConfig) (store.IdentityStore, error) {
	opts := cfg.StoreOptions()
	if cfg.Store.Backend == "valkey" {
		return store.NewValkeyStore(cfg.Store.ValkeyAddr, cfg.Store.Prefix, opts)
	}
	path := cfg.Store.Path
	if path == "" {
		path = "dashgate.db"
	}
	return store.NewBuntStore(path, opts)
}
