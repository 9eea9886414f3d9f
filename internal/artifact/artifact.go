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

// Package artifact implements the filename-based artifact cache: a
// deterministic filename per request shape, a 30-minute reuse window,
// keep-first/delete-rest sweeping of stale or duplicate survivors, and
// an atomic .tmp-then-rename write protocol. There's no cross-executor
// lock: the filesystem itself is the serialization point, since
// filenames already carry every field that distinguishes one request
// from another except the timestamp.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TTL is the default artifact reuse window.
const TTL = 30 * time.Minute

// timestampLayout matches the embedded "YYYYMMDD_HHMMSS" segment,
// decoded as local time.
const timestampLayout = "20060102_150405"

// Key identifies the artifact for one request shape. It deliberately
// excludes the timestamp, which is appended separately by Filename.
type Key struct {
	CompanyID uint32
	UserID    uint32
	TargetID  uint32
	Lang      string
	Volume    int
	PCVinga   bool
	Format    string
}

func (k Key) pcvingaInt() int {
	if k.PCVinga {
		return 1
	}
	return 0
}

// prefix is the filename prefix shared by every artifact matching this
// key, up to but excluding the embedded timestamp.
func (k Key) prefix() string {
	return fmt.Sprintf("price_%d_%d_%d_%s_%d_%d_", k.CompanyID, k.UserID, k.TargetID, k.Lang, k.Volume, k.pcvingaInt())
}

// globPattern matches every artifact for this key: prefix + any
// timestamp + the format extension.
func (k Key) globPattern() string {
	return k.prefix() + "*." + k.Format
}

// Cache roots the artifact directory, normally {workingDir}/cache.
type Cache struct {
	dir string
	ttl time.Duration
}

// New returns a Cache rooted at dir, auto-creating it if missing.
// ttl <= 0 uses TTL.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = TTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: creating cache dir: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Filename builds the full path for key stamped with ts.
func (c *Cache) Filename(key Key, ts time.Time) string {
	name := key.prefix() + ts.Format(timestampLayout) + "." + key.Format
	return filepath.Join(c.dir, name)
}

// decodeTimestamp extracts and parses the embedded timestamp from a
// bare filename (no directory component): split into at most eight
// '_'-separated fields, take the last, parse its first 15 chars.
func decodeTimestamp(base string) (time.Time, error) {
	parts := splitN(base, '_', 8)
	if len(parts) < 8 {
		return time.Time{}, fmt.Errorf("artifact: filename %q has too few fields", base)
	}
	last := parts[len(parts)-1]
	if len(last) < len(timestampLayout) {
		return time.Time{}, fmt.Errorf("artifact: filename %q has a short timestamp field", base)
	}
	return time.ParseInLocation(timestampLayout, last[:len(timestampLayout)], time.Local)
}

// splitN splits s on sep into at most n pieces with strings.SplitN
// semantics: the final piece carries the remainder unsplit.
func splitN(s string, sep byte, n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for len(out) < n-1 {
		idx := -1
		for i := 0; i < len(s); i++ {
			if s[i] == sep {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		out = append(out, s[:idx])
		s = s[idx+1:]
	}
	out = append(out, s)
	return out
}

// Resolve finds or names the artifact for key. now is the caller's
// idea of the current time (local), used both to judge staleness and,
// on a miss, to stamp a fresh filename. It returns the path to use (an
// existing survivor on a hit, a not-yet-created path on a miss) and
// whether that path already holds valid content. Stale files and
// duplicate survivors are deleted along the way.
func (c *Cache) Resolve(key Key, now time.Time) (path string, hit bool, err error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, key.globPattern()))
	if err != nil {
		return "", false, fmt.Errorf("artifact: glob: %w", err)
	}

	var survivor string
	for _, m := range matches {
		ts, err := decodeTimestamp(filepath.Base(m))
		if err != nil {
			// An undecodable name can never be reused; treat it like a
			// stale file.
			os.Remove(m)
			continue
		}
		fresh := now.Sub(ts) <= c.ttl
		switch {
		case !fresh:
			os.Remove(m)
		case survivor == "":
			survivor = m
		default:
			// Keep the first seen survivor only.
			os.Remove(m)
		}
	}

	if survivor != "" {
		return survivor, true, nil
	}
	return c.Filename(key, now), false, nil
}

// Read returns the bytes of an existing artifact, verbatim.
func (c *Cache) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: reading %s: %w", path, err)
	}
	return data, nil
}

// Write generates a fresh artifact at path: data is written to
// "{path}.tmp" and atomically renamed into place. A rename failure
// fails the request.
func (c *Cache) Write(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("artifact: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("artifact: renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}
