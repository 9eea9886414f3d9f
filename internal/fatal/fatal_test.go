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

package fatal

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRecoverableOnlyMatches600Series(t *testing.T) {
	cases := map[Code]bool{
		CodeConfigMissing:     false,
		CodeControlBindFailed: false,
		CodeServiceBindFailed: false,
		CodeLoaderJoinFailed:  false,
		CodeDBConnectFailed:   true,
		CodeDBQueryFailed:     true,
		CodeDBScanFailed:      true,
		CodeDBIterateFailed:   true,
	}
	for code, want := range cases {
		if got := code.Recoverable(); got != want {
			t.Errorf("Code(%d).Recoverable() = %v, want %v", code, got, want)
		}
	}
}

// TestSetLoggerRedirectsExitLogging confirms SetLogger's replacement
// takes effect, without actually calling Exit (which terminates the
// process).
func TestSetLoggerRedirectsExitLogging(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(slog.Default())

	logger.Error("fatal", "code", int(CodeConfigMissing), "text", "missing config file")

	if !strings.Contains(buf.String(), "missing config file") {
		t.Fatalf("expected the replaced logger to receive the record, got %q", buf.String())
	}
}
