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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `{
	"port": 9000,
	"irc": 9001,
	"time_zone": "Europe/Kyiv",
	"max_thread": 8,
	"salt": "process-secret",
	"db_log":   {"host": "10.0.0.1", "port": 3306, "user": "log",  "pwd": "p1", "name": "logs"},
	"db_b2b":   {"host": "10.0.0.2", "port": 3306, "user": "b2b",  "pwd": "p2", "name": "b2b"},
	"db_local": {"host": "10.0.0.3", "port": 3306, "user": "locl", "pwd": "p3", "name": "local"}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "init.config")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadParsesFullDocument(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 || cfg.IRC != 9001 || cfg.MaxThread != 8 {
		t.Fatalf("numeric keys decoded wrong: %+v", cfg)
	}
	if cfg.Salt != "process-secret" {
		t.Fatalf("salt = %q", cfg.Salt)
	}
	if cfg.DBB2B.Host != "10.0.0.2" || cfg.DBB2B.Name != "b2b" {
		t.Fatalf("db_b2b triple decoded wrong: %+v", cfg.DBB2B)
	}
	if cfg.DBLocal.User != "locl" {
		t.Fatalf("db_local triple decoded wrong: %+v", cfg.DBLocal)
	}
}

func TestLoadRejectsIncompleteDocuments(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing salt", `{"port": 1, "irc": 2, "max_thread": 3, "db_b2b": {"host": "h", "name": "n"}, "db_local": {"host": "h", "name": "n"}}`},
		{"missing port", `{"irc": 2, "salt": "s", "max_thread": 3, "db_b2b": {"host": "h", "name": "n"}, "db_local": {"host": "h", "name": "n"}}`},
		{"incomplete db triple", `{"port": 1, "irc": 2, "salt": "s", "max_thread": 3, "db_b2b": {"host": "h"}, "db_local": {"host": "h", "name": "n"}}`},
		{"not json", `port = 9000`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Fatalf("Load should reject this document")
			}
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.config")); err == nil {
		t.Fatalf("Load should fail for a missing file")
	}
}
