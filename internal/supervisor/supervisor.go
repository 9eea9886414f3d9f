// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package supervisor wires every long-lived task — cache loader,
// request acceptor, dispatcher, executor pool, control listener — into
// one process, and carries the shutdown sequence the control protocol
// triggers.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"pricefeed/internal/artifact"
	"pricefeed/internal/catalog"
	"pricefeed/internal/catalog/source"
	"pricefeed/internal/config"
	"pricefeed/internal/control"
	"pricefeed/internal/dispatch"
	"pricefeed/internal/fatal"
	"pricefeed/internal/loader"
	"pricefeed/internal/queue"
	"pricefeed/internal/telemetry"
)

// readyPollInterval paces the wait on the cache's first-ready latch.
const readyPollInterval = time.Millisecond

// Supervisor owns every long-lived task and the single wiring point
// between them.
type Supervisor struct {
	cfg       config.Config
	log       *slog.Logger
	cache     *catalog.Cache
	handles   *source.Handles
	loader    *loader.Loader
	queue     *queue.Queue
	pool      *dispatch.Pool
	dispatch  *dispatch.Dispatcher
	artifacts *artifact.Cache
	control   *control.Listener

	ctx    context.Context
	cancel context.CancelFunc

	accept   net.Listener
	acceptWg sync.WaitGroup

	stopOnce sync.Once
	stopped  chan struct{}
}

// New wires every component from cfg but starts nothing. cacheDir is
// the artifact directory root, normally {workingDir}/cache.
func New(cfg config.Config, cacheDir string, log *slog.Logger) (*Supervisor, error) {
	if log == nil {
		log = slog.Default()
	}
	fatal.SetLogger(log)

	handles, err := source.Open(cfg.DBB2B.DSN(), cfg.DBLocal.DSN())
	if err != nil {
		return nil, fmt.Errorf("supervisor: opening database handles: %w", err)
	}

	artifacts, err := artifact.New(cacheDir, artifact.TTL)
	if err != nil {
		handles.Close()
		return nil, fmt.Errorf("supervisor: %w", err)
	}

	cache := catalog.New()
	ld := loader.New(handles, cache, loader.DefaultInterval, log)

	q := queue.New(queue.DefaultCapacity)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Supervisor{
		cfg:       cfg,
		log:       log,
		cache:     cache,
		handles:   handles,
		loader:    ld,
		queue:     q,
		artifacts: artifacts,
		ctx:       ctx,
		cancel:    cancel,
		stopped:   make(chan struct{}),
	}
	s.pool = dispatch.NewPool(cfg.MaxThread, s.handle)
	s.dispatch = dispatch.NewDispatcher(q, s.pool)

	ctrl, err := control.Listen(fmt.Sprintf("127.0.0.1:%d", cfg.IRC))
	if err != nil {
		cancel()
		handles.Close()
		fatal.Exit(fatal.CodeControlBindFailed, err.Error())
	}
	s.control = ctrl

	return s, nil
}

// Run starts every long-lived task and blocks serving the control
// protocol until a "stop" turn completes the shutdown sequence. It
// never returns an error for a clean stop; a bind failure during Run
// is fatal.
func (s *Supervisor) Run() error {
	telemetry.ExecutorsMax.Set(float64(s.pool.Max()))

	s.loader.Start(s.ctx)
	s.waitReady()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		fatal.Exit(fatal.CodeServiceBindFailed, err.Error())
	}
	s.accept = ln

	s.pool.Start()
	s.dispatch.Start()
	s.startAcceptor()

	go s.reportQueueDepth()

	return s.control.Serve(s.shutdown)
}

// waitReady blocks until the cache's first completed refresh pass
// flips the ready latch; request acceptance never starts against an
// empty catalog.
func (s *Supervisor) waitReady() {
	for !s.cache.Ready() {
		time.Sleep(readyPollInterval)
	}
}

// startAcceptor launches the request-acceptance loop: a single-
// threaded blocking Accept guarded by closing the listener, pushing
// every accepted connection onto the bounded queue.
func (s *Supervisor) startAcceptor() {
	s.acceptWg.Add(1)
	go func() {
		defer s.acceptWg.Done()
		for {
			conn, err := s.accept.Accept()
			if err != nil {
				return
			}
			if !s.queue.Push(conn) {
				conn.Close()
			}
		}
	}()
}

// reportQueueDepth periodically mirrors the queue/pool state into the
// Prometheus gauges; it exits once the supervisor's context is
// cancelled during shutdown.
func (s *Supervisor) reportQueueDepth() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			telemetry.QueueDepth.Set(float64(s.queue.Len()))
			telemetry.ExecutorsInUse.Set(float64(s.pool.InUse()))
		case <-s.ctx.Done():
			return
		}
	}
}

// shutdown runs the cooperative stop sequence: stop accepting new
// connections, join the acceptor, dispatcher, executor pool, and
// loader in turn, then close the database handles and the control
// listener, which lets Serve (and so Run) return. It's invoked
// synchronously by control.Listener.Serve before the process id is
// written back to the caller.
func (s *Supervisor) shutdown() {
	s.stopOnce.Do(func() {
		defer close(s.stopped)

		if s.accept != nil {
			s.accept.Close()
		}
		s.acceptWg.Wait()

		s.dispatch.Stop()
		s.pool.Stop()
		s.loader.Stop()
		s.cancel()

		s.handles.Close()
		s.control.Close()
		s.log.Info("shutdown complete")
	})
}
