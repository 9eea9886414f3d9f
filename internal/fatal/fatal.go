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

// Package fatal implements the server-side error catalog: config
// errors (100-141), control-protocol errors (200-208), bind errors
// (300-404), coordination errors (500-503), and database errors
// (600-603). Exit is the single fail-fast primitive; every
// 100/300/400/500-series failure in this repo funnels through it.
// 600-series errors are recoverable and never call Exit —
// internal/loader retries them directly.
package fatal

import (
	"fmt"
	"log/slog"
	"os"
)

// Code is one entry of the server-side catalog.
type Code int

const (
	// Config errors, 100-141.
	CodeConfigMissing     Code = 100
	CodeConfigMalformed   Code = 101
	CodeConfigBadDBTriple Code = 110

	// Control-protocol errors, 200-208.
	CodeControlBindFailed Code = 200
	CodeControlReadFailed Code = 201

	// Bind errors, 300-404.
	CodeServiceBindFailed Code = 300
	CodeCacheDirFailed    Code = 400

	// Coordination errors, 500-503.
	CodeLoaderJoinFailed     Code = 500
	CodeDispatcherJoinFailed Code = 501

	// Database errors, 600-603: recoverable, handled by internal/loader.
	CodeDBConnectFailed Code = 600
	CodeDBQueryFailed   Code = 601
	CodeDBScanFailed    Code = 602
	CodeDBIterateFailed Code = 603
)

// Recoverable reports whether code is a 600-series database error,
// which internal/loader retries rather than routes through Exit.
func (c Code) Recoverable() bool { return c >= 600 && c <= 603 }

// logger is the process-wide fatal-path logger; supervisors set it
// once at boot via SetLogger so the error.log line shares a handler
// with the rest of the process's structured logging.
var logger = slog.Default()

// SetLogger replaces the logger Exit writes through.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// Exit formats code and text, logs it to error.log and stderr, and
// terminates the process with status 1. It never returns.
func Exit(code Code, text string) {
	logger.Error("fatal", "code", int(code), "text", text)
	fmt.Fprintf(os.Stderr, "fatal error %d: %s\n", code, text)
	os.Exit(1)
}

// Exitf is Exit with fmt.Sprintf-style formatting.
func Exitf(code Code, format string, args ...any) {
	Exit(code, fmt.Sprintf(format, args...))
}
