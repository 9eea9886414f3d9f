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

package dispatch

import (
	"sync"
	"sync/atomic"
	"time"

	"pricefeed/internal/queue"
)

// pollInterval is the cadence for both the empty-queue retry and the
// pool-full wait.
const pollInterval = time.Millisecond

// Dispatcher polls q and hands each connection to the first free
// executor in pool, blocking (via short sleeps, never channel waits)
// while the pool is saturated.
type Dispatcher struct {
	queue *queue.Queue
	pool  *Pool

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// NewDispatcher builds a Dispatcher over q and pool.
func NewDispatcher(q *queue.Queue, pool *Pool) *Dispatcher {
	return &Dispatcher{queue: q, pool: pool, stopChan: make(chan struct{})}
}

// Start launches the dispatch loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run()
	}()
}

// Stop signals the dispatch loop to exit and waits for it to finish.
func (d *Dispatcher) Stop() {
	if !d.stopped.CompareAndSwap(false, true) {
		return
	}
	close(d.stopChan)
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			// Drain everything queued since the last tick so a burst
			// isn't metered out one connection per interval.
			for d.dispatchNext() {
			}
		}
	}
}

// dispatchNext polls the queue, waits for a free pool slot, then hands
// the connection to the first free executor (scanned low to high). It
// reports whether a connection was dispatched.
func (d *Dispatcher) dispatchNext() bool {
	conn, ok := d.queue.Take()
	if !ok {
		return false
	}

	for {
		if d.stopped.Load() {
			conn.Close()
			return false
		}
		if d.pool.inUse.Load() >= int64(d.pool.max) {
			time.Sleep(pollInterval)
			continue
		}
		break
	}
	d.pool.inUse.Add(1)

	exec := d.pool.firstFree()
	if exec == nil {
		// The inUse gate guarantees a free executor exists; this would
		// only trip under a concurrency bug.
		d.pool.inUse.Add(-1)
		conn.Close()
		return false
	}
	exec.inbox <- message{conn: conn}
	return true
}
