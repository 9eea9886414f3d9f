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

// Package control implements the control protocol: one bidirectional
// TCP turn on the `irc` port. The caller writes the literal bytes
// "stop"; the listener runs the process's shutdown sequence and writes
// its process id back in ASCII decimal.
//
// The listener uses a blocking Accept guarded by closing the listener
// itself: Close unblocks Accept with a "use of closed network
// connection" error the serve loop treats as its exit signal.
package control

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// readTimeout is the control-socket read timeout.
const readTimeout = time.Second

// clientTimeout is the client-side read timeout for the stop ack,
// used by SendStop (the CLI `stop` subcommand).
const clientTimeout = 30 * time.Second

// stopCommand is the literal input the protocol expects.
const stopCommand = "stop"

// Listener accepts the single control-protocol connection type.
type Listener struct {
	ln net.Listener
}

// Listen binds the control port ("irc" in the config).
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("control: listen %s: %w", addr, err)
	}
	return &Listener{ln: ln}, nil
}

// Close unblocks a running Serve loop by closing the underlying
// listener.
func (l *Listener) Close() error { return l.ln.Close() }

// Serve blocks accepting control connections until the listener is
// closed. onStop is invoked synchronously for every "stop" turn,
// before the process id is written back; it is the supervisor's
// shutdown sequence (signal executors, join loader/acceptor/
// dispatcher).
func (l *Listener) Serve(onStop func()) error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("control: accept: %w", err)
		}
		l.handle(conn, onStop)
	}
}

func (l *Listener) handle(conn net.Conn, onStop func()) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(readTimeout))

	buf := make([]byte, len(stopCommand))
	n, _ := conn.Read(buf)
	if n < len(stopCommand) || string(buf[:n]) != stopCommand {
		return
	}

	onStop()

	fmt.Fprintf(conn, "%d", os.Getpid())
}

// SendStop implements the CLI `stop` subcommand: dial 127.0.0.1:{irc},
// write "stop", read back the child's decimal pid.
func SendStop(addr string) (pid int, err error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("control: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(stopCommand)); err != nil {
		return 0, fmt.Errorf("control: write stop: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(clientTimeout))
	buf := make([]byte, 32)
	n, err := conn.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("control: reading pid: %w", err)
	}

	pid, err = strconv.Atoi(string(buf[:n]))
	if err != nil {
		return 0, fmt.Errorf("control: parsing pid %q: %w", buf[:n], err)
	}
	return pid, nil
}
