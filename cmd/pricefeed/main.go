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

// Command pricefeed is the serving engine's CLI surface: start, check,
// stop, go (the internal re-exec target that actually runs the
// supervisor), and help.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"pricefeed/internal/config"
	"pricefeed/internal/control"
	"pricefeed/internal/fatal"
	"pricefeed/internal/supervisor"
	"pricefeed/internal/telemetry"
)

const metricsAddr = ":9090"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "start":
		cmdStart()
	case "check":
		cmdCheck()
	case "stop":
		cmdStop()
	case "go":
		cmdGo()
	case "help":
		help()
	default:
		fmt.Fprintf(os.Stderr, "pricefeed: unrecognized command %q\n\n", os.Args[1])
		help()
		os.Exit(1)
	}
}

func help() {
	fmt.Println(`pricefeed: merchant price-list serving engine

Usage:
  pricefeed start   fork-exec the service in the current directory
  pricefeed check   probe the control port; exit silently if occupied
  pricefeed stop    send "stop" to the control port and print the child pid
  pricefeed go      internal re-exec target; runs the supervisor in-process
  pricefeed help    show this text`)
}

func configPath() string {
	if path := os.Getenv("PRICEFEED_DEBUG_CONFIG"); path != "" {
		return path
	}
	return config.ConfigPath
}

// controlAddr resolves the control-protocol address from the config
// file via config.Load, which validates like MustLoad but returns the
// error instead of exiting.
func controlAddr() (string, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("127.0.0.1:%d", cfg.IRC), nil
}

// cmdCheck probes the control port and exits silently (status 0) if a
// service is already listening there.
func cmdCheck() {
	addr, err := controlAddr()
	if err != nil {
		fatal.Exit(fatal.CodeConfigMissing, err.Error())
	}
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err == nil {
		conn.Close()
		return
	}
	spawnChild()
}

// cmdStart spawns the go child in the current directory
// unconditionally; check is the probe-first variant.
func cmdStart() {
	spawnChild()
}

func spawnChild() {
	self, err := os.Executable()
	if err != nil {
		fatal.Exit(fatal.CodeConfigMissing, fmt.Sprintf("resolving executable: %v", err))
	}
	wd, err := os.Getwd()
	if err != nil {
		fatal.Exit(fatal.CodeConfigMissing, fmt.Sprintf("resolving working directory: %v", err))
	}

	cmd := exec.Command(self, "go")
	cmd.Dir = wd
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		fatal.Exit(fatal.CodeConfigMissing, fmt.Sprintf("spawning go child: %v", err))
	}
	fmt.Printf("pricefeed started, pid %d\n", cmd.Process.Pid)
}

// cmdStop sends "stop" over the control protocol and prints the pid
// that comes back.
func cmdStop() {
	addr, err := controlAddr()
	if err != nil {
		fatal.Exit(fatal.CodeConfigMissing, err.Error())
	}
	pid, err := control.SendStop(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pricefeed: stop failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("stopped pid %d\n", pid)
}

// cmdGo is the internal re-exec target: it actually boots and runs
// the supervisor, blocking until a control-protocol "stop" turn
// completes.
func cmdGo() {
	cfg := config.MustLoad(configPath())

	log := newLogger()
	fatal.SetLogger(log)

	telemetry.Serve(metricsAddr)

	wd, err := os.Getwd()
	if err != nil {
		fatal.Exit(fatal.CodeCacheDirFailed, err.Error())
	}
	cacheDir := filepath.Join(wd, "cache")

	sup, err := supervisor.New(cfg, cacheDir, log)
	if err != nil {
		fatal.Exit(fatal.CodeConfigMissing, err.Error())
	}

	if err := sup.Run(); err != nil {
		fatal.Exit(fatal.CodeControlReadFailed, err.Error())
	}
}

// newLogger builds the process's slog.Logger: a text handler fanned
// out to stderr and to a lumberjack rolling sink at
// {workingDir}/error.log, so every fatal-path record lands in both.
func newLogger() *slog.Logger {
	roller := &lumberjack.Logger{
		Filename:   "error.log",
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	out := io.MultiWriter(os.Stderr, roller)
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler)
}
