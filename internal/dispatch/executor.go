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

// Package dispatch implements the fixed-size executor pool and the
// dispatcher that hands accepted connections to a free executor: a
// per-executor mailbox channel, a CAS-guarded busy flag, and a
// WaitGroup joined on shutdown.
package dispatch

import (
	"net"
	"sync"
	"sync/atomic"
)

// Handler processes one accepted connection end to end.
type Handler func(net.Conn)

type message struct {
	terminate bool
	conn      net.Conn
}

// Executor owns one inbound mailbox and runs Handler for every job it
// receives. start is set by the dispatcher before handing off a job and
// cleared by the executor itself once the handler returns.
type Executor struct {
	id      int
	pool    *Pool
	inbox   chan message
	start   atomic.Bool
	handler Handler
	wg      sync.WaitGroup
}

func newExecutor(id int, pool *Pool, handler Handler) *Executor {
	return &Executor{id: id, pool: pool, inbox: make(chan message, 1), handler: handler}
}

// tryClaim atomically transitions the executor from free to busy,
// reporting whether the claim succeeded.
func (e *Executor) tryClaim() bool {
	return e.start.CompareAndSwap(false, true)
}

func (e *Executor) run() {
	defer e.wg.Done()
	for msg := range e.inbox {
		if msg.terminate {
			return
		}
		e.handler(msg.conn)
		e.start.Store(false)
		e.pool.inUse.Add(-1)
	}
}
