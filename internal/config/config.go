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

// Package config loads the service's JSON configuration document
// (init.config by default) into a typed Config via koanf's file
// provider and JSON parser.
package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"pricefeed/internal/catalog/source"
	"pricefeed/internal/fatal"
)

// DBTriple is one {host, port, user, pwd, name} connection block.
type DBTriple struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	User string `koanf:"user"`
	Pwd  string `koanf:"pwd"`
	Name string `koanf:"name"`
}

// DSN converts a DBTriple into the catalog/source.DSN shape the MySQL
// loaders expect.
func (t DBTriple) DSN() source.DSN {
	return source.DSN{Host: t.Host, Port: t.Port, User: t.User, Pwd: t.Pwd, Name: t.Name}
}

// Config is the init.config document. DBLog/DBB2B/DBLocal are the
// three configured triplets; the cache loader's two upstream handles
// are wired as Catalog <- DBB2B (the primary merchant/catalog store)
// and Logistics <- DBLocal (warehouse/target data). DBLog is carried
// for parity with the full config file but has no sub-load of its own
// here.
type Config struct {
	Port      int    `koanf:"port"`
	IRC       int    `koanf:"irc"`
	TimeZone  string `koanf:"time_zone"`
	MaxThread int    `koanf:"max_thread"`
	Salt      string `koanf:"salt"`

	DBLog   DBTriple `koanf:"db_log"`
	DBB2B   DBTriple `koanf:"db_b2b"`
	DBLocal DBTriple `koanf:"db_local"`
}

// ConfigPath and DebugConfigPath are the two conventional file names.
// cmd/pricefeed reads ConfigPath unless the PRICEFEED_DEBUG_CONFIG
// environment variable names another file; no build tag selects
// DebugConfigPath, and nothing in the repository reads it by itself.
const (
	ConfigPath      = "init.config"
	DebugConfigPath = "init_debug.config"
)

// Load parses path into a Config. Any parse or missing-key failure is
// a 100-series config error; callers in cmd/pricefeed route the
// returned error through fatal.Exit rather than handling it inline,
// since a bad config is never recoverable.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return Config{}, fmt.Errorf("config: loading %s: %w", path, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad is Load, routing any failure through fatal.Exit.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		fatal.Exit(fatal.CodeConfigMalformed, err.Error())
	}
	return cfg
}

func (c Config) validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("config: missing or invalid \"port\"")
	}
	if c.IRC <= 0 {
		return fmt.Errorf("config: missing or invalid \"irc\"")
	}
	if c.Salt == "" {
		return fmt.Errorf("config: missing \"salt\"")
	}
	if c.MaxThread <= 0 {
		return fmt.Errorf("config: missing or invalid \"max_thread\"")
	}
	for name, triple := range map[string]DBTriple{"db_b2b": c.DBB2B, "db_local": c.DBLocal} {
		if triple.Host == "" || triple.Name == "" {
			return fmt.Errorf("config: incomplete %q triple", name)
		}
	}
	return nil
}
