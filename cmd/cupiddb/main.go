// Command cupiddb runs the CupidDB server: loads configuration from the
// environment, constructs the sharded store and the TCP frontend, and
// serves until SIGINT/SIGTERM.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package main

import (
	"context"
	"log"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/cupiddb/cupiddb/cache"
	"github.com/cupiddb/cupiddb/internal/config"
	"github.com/cupiddb/cupiddb/internal/nlog"
	"github.com/cupiddb/cupiddb/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	nlog.SetLevel(nlog.ParseLevel(cfg.LogLevel))
	if cfg.WorkerThreads > 0 {
		runtime.GOMAXPROCS(cfg.WorkerThreads)
	}
	nlog.Infof("cupiddb: starting (shards=%d, initial_capacity=%d, worker_threads=%d)",
		cfg.CacheShards, cfg.InitialCapacity, cfg.WorkerThreads)

	store := cache.NewStore(cfg.CacheShards, cfg.InitialCapacity)
	srv := server.New(cfg, store)

	return srv.Run(ctx)
}
