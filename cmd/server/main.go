package main

import (
	"boardsync/internal/config"
	"boardsync/internal/db"
	clog "boardsync/internal/log"
	"boardsync/internal/presence"
	"boardsync/internal/server"
	"boardsync/internal/store"
	"boardsync/internal/ws"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	clog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validate")
	}

	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	registry := presence.NewRegistry()
	hub := ws.NewHub()
	router := ws.NewRouter(hub, registry, store.NewBoardStore(gdb), store.NewMessageStore(gdb))

	cleaner := presence.NewCleaner(registry, cfg.PresenceSweepInterval, cfg.PresenceTimeout, router.EvictPresence)
	go cleaner.Run()
	defer cleaner.Stop()

	r := server.SetupRouter(cfg, gdb, hub, router, registry)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
