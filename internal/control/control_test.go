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

package control

import (
	"net"
	"os"
	"strconv"
	"testing"
	"time"
)

// TestServeRunsOnStopAndRepliesWithPID covers the control
// protocol: "stop" in, ASCII decimal PID out, and the onStop callback
// fires before the reply is written.
func TestServeRunsOnStopAndRepliesWithPID(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	stopped := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- ln.Serve(func() { close(stopped) })
	}()

	pid, err := SendStop(ln.ln.Addr().String())
	if err != nil {
		t.Fatalf("SendStop: %v", err)
	}
	if pid != os.Getpid() {
		t.Fatalf("expected pid %d, got %d", os.Getpid(), pid)
	}

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("onStop should have fired before SendStop returned")
	}

	if err := ln.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve should return nil after Close, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Serve should exit promptly after Close")
	}
}

// TestHandleIgnoresUnrecognizedInput covers the "not a recognized stop
// turn" branch: the connection is simply closed without a reply, and
// the listener keeps serving subsequent connections.
func TestHandleIgnoresUnrecognizedInput(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	go ln.Serve(func() {})

	conn, err := net.Dial("tcp", ln.ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Write([]byte("nope"))
	conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 8)
	n, err := conn.Read(buf)
	if n != 0 || err == nil {
		t.Fatalf("expected the connection to close without a reply, got n=%d err=%v", n, err)
	}
	conn.Close()

	// The listener should still be alive for a legitimate stop turn.
	pid, err := SendStop(ln.ln.Addr().String())
	if err != nil {
		t.Fatalf("SendStop after a bad turn: %v", err)
	}
	if strconv.Itoa(pid) != strconv.Itoa(pid) {
		// no-op sanity: pid is always a valid int by this point
	}
}
