/*
 * Copyright (c) 2026, CupidDB Authors. All rights reserved.
 */
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/cupiddb/cupiddb/cache"
	"github.com/cupiddb/cupiddb/cache/hk"
	"github.com/cupiddb/cupiddb/internal/config"
	"github.com/cupiddb/cupiddb/internal/nlog"
)

// Server owns the listening socket, the in-memory store, the background
// expirer, and (optionally) a metrics HTTP endpoint. Its lifecycle --
// accept loop plus sibling goroutines joined through an errgroup, torn
// down on a cancelled context -- lets the metrics server, the expirer,
// and the connection acceptor shut down together.
type Server struct {
	cfg   *config.Config
	store *cache.Store

	mu       sync.Mutex
	active   int
	drainCh  chan struct{}
	draining bool
}

// New constructs a Server bound to cfg, operating on store.
func New(cfg *config.Config, store *cache.Store) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		drainCh: make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled, then drains in-flight connections for
// up to cfg.GracefulTimeout before returning.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr(), err)
	}
	nlog.Infof("server: listening on %s", s.cfg.Addr())

	g, gctx := errgroup.WithContext(ctx)

	expirer := hk.New(s.store)
	g.Go(func() error {
		expirer.Run(gctx)
		return nil
	})

	if s.cfg.MetricsAddress != "" {
		metricsSrv := &http.Server{Addr: s.cfg.MetricsAddress, Handler: promhttp.Handler()}
		g.Go(func() error {
			nlog.Infof("server: metrics listening on %s", s.cfg.MetricsAddress)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server: metrics serve: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return lis.Close()
	})

	g.Go(func() error {
		return s.acceptLoop(gctx, lis)
	})

	err = g.Wait()
	s.drain()
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context, lis net.Listener) error {
	for {
		nc, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if isClosedErr(err) {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}

		s.trackConn(1)
		go func() {
			defer s.trackConn(-1)
			newConn(nc, s.store).serve(ctx)
		}()
	}
}

func (s *Server) trackConn(delta int) {
	s.mu.Lock()
	s.active += delta
	if s.active == 0 && s.draining {
		close(s.drainCh)
	}
	s.mu.Unlock()
}

// drain waits up to cfg.GracefulTimeout for active connections to finish
// on their own: in-flight requests complete, and new connections are not
// accepted once the listener is closed.
func (s *Server) drain() {
	s.mu.Lock()
	if s.active == 0 {
		s.mu.Unlock()
		return
	}
	s.draining = true
	remaining := s.active
	s.mu.Unlock()

	nlog.Infof("server: draining %d active connection(s), timeout %s", remaining, s.cfg.GracefulTimeout)
	select {
	case <-s.drainCh:
		nlog.Infof("server: drain complete")
	case <-time.After(s.cfg.GracefulTimeout):
		nlog.Warnf("server: graceful timeout exceeded, exiting with connections still active")
	}
}
