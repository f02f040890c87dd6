// Package config loads CupidDB's process configuration from the flat
// CUPID_* environment variables.
/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package config

import (
	"fmt"
	"math/bits"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/cupiddb/cupiddb/internal/nlog"
)

type Config struct {
	LogLevel         string
	WorkerThreads    int
	InitialCapacity  int
	CacheShards      int
	GracefulTimeout  time.Duration
	BindAddress      string
	Port             int
	MetricsAddress   string // empty = metrics endpoint disabled
}

const (
	defaultInitialCapacity = 64
	defaultCacheShards     = 64
	defaultGracefulTimeout = 30 * time.Second
	defaultBindAddress     = "0.0.0.0"
	defaultPort            = 5995
)

// Load reads every CUPID_* variable, applying spec-documented defaults for
// anything unset or unparsable.
func Load() *Config {
	c := &Config{
		LogLevel:        getEnv("CUPID_LOG_LEVEL", "INFO"),
		WorkerThreads:   getEnvInt("CUPID_WORKER_THREADS", runtime.GOMAXPROCS(0)),
		InitialCapacity: getEnvInt("CUPID_INITIAL_CAPACITY", defaultInitialCapacity),
		CacheShards:     getEnvInt("CUPID_CACHE_SHARDS", defaultCacheShards),
		GracefulTimeout: time.Duration(getEnvInt("CUPID_GRACEFUL_TIMEOUT", int(defaultGracefulTimeout/time.Second))) * time.Second,
		BindAddress:     getEnv("CUPID_BIND_ADDRESS", defaultBindAddress),
		Port:            getEnvInt("CUPID_PORT", defaultPort),
		MetricsAddress:  getEnv("CUPID_METRICS_ADDRESS", ""),
	}
	c.CacheShards = nextPowerOfTwo(c.CacheShards)
	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	if n&(n-1) == 0 {
		return n
	}
	rounded := 1 << bits.Len(uint(n))
	nlog.Warnf("CUPID_CACHE_SHARDS=%d is not a power of two, rounding up to %d", n, rounded)
	return rounded
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		nlog.Warnf("invalid integer for %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
