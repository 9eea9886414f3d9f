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

package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testKey() Key {
	return Key{CompanyID: 100, UserID: 1, TargetID: 10, Lang: "ua", Volume: 1, PCVinga: false, Format: "json"}
}

// TestResolveMissReturnsFreshNameThenHitsOnSecondCall exercises the
// artifact-reuse path: two requests for the same shape, one second
// apart, reuse the first's file.
func TestResolveMissReturnsFreshNameThenHitsOnSecondCall(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	path, hit, err := c.Resolve(testKey(), now)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if hit {
		t.Fatalf("first Resolve on an empty cache dir should miss")
	}

	if err := c.Write(path, []byte(`{"1":{"price":1}}`)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	path2, hit2, err := c.Resolve(testKey(), now.Add(time.Second))
	if err != nil {
		t.Fatalf("Resolve (second): %v", err)
	}
	if !hit2 {
		t.Fatalf("second Resolve one second later should hit the just-written artifact")
	}
	if path2 != path {
		t.Fatalf("hit should return the same path, got %q want %q", path2, path)
	}

	body, err := c.Read(path2)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(body) != `{"1":{"price":1}}` {
		t.Fatalf("Read returned unexpected body %q", body)
	}
}

// TestResolveExpiresArtifactsOlderThanTTL covers the 30-minute reuse
// window.
func TestResolveExpiresArtifactsOlderThanTTL(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 30*time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := testKey()
	stale := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	stalePath := c.Filename(key, stale)
	if err := os.WriteFile(stalePath, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seeding stale file: %v", err)
	}

	_, hit, err := c.Resolve(key, stale.Add(31*time.Minute))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if hit {
		t.Fatalf("an artifact older than the TTL should not be reused")
	}
	if _, err := os.Stat(stalePath); !os.IsNotExist(err) {
		t.Fatalf("the stale artifact should have been deleted during Resolve")
	}
}

// TestResolveKeepsFirstSurvivorAmongDuplicates checks that
// "if more than one survives, keep the first seen and delete the rest."
func TestResolveKeepsFirstSurvivorAmongDuplicates(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 30*time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := testKey()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	p1 := c.Filename(key, now)
	p2 := c.Filename(key, now.Add(5*time.Second))
	if err := os.WriteFile(p1, []byte("first"), 0o644); err != nil {
		t.Fatalf("seed p1: %v", err)
	}
	if err := os.WriteFile(p2, []byte("second"), 0o644); err != nil {
		t.Fatalf("seed p2: %v", err)
	}

	path, hit, err := c.Resolve(key, now.Add(10*time.Second))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !hit {
		t.Fatalf("one of the two duplicates should survive as a hit")
	}

	survivors, err := filepath.Glob(filepath.Join(dir, key.globPattern()))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(survivors) != 1 {
		t.Fatalf("expected exactly one survivor after Resolve, got %v", survivors)
	}
	if survivors[0] != path {
		t.Fatalf("surviving file %q should match the returned path %q", survivors[0], path)
	}
}

// TestResolveDeletesUndecodableMatches checks that a glob match whose
// embedded timestamp doesn't parse is removed rather than left on disk
// forever.
func TestResolveDeletesUndecodableMatches(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 30*time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := testKey()
	junk := filepath.Join(dir, key.prefix()+"garbage.json")
	if err := os.WriteFile(junk, []byte("junk"), 0o644); err != nil {
		t.Fatalf("seeding junk file: %v", err)
	}

	_, hit, err := c.Resolve(key, time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if hit {
		t.Fatalf("an undecodable file should never count as a hit")
	}
	if _, err := os.Stat(junk); !os.IsNotExist(err) {
		t.Fatalf("the undecodable file should have been deleted during Resolve")
	}
}

func TestWriteIsAtomicViaTmpRename(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path := filepath.Join(dir, "price_1_1_1_ua_0_0_20260101_120000.json")
	if err := c.Write(path, []byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("the .tmp file should be gone after a successful rename")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading final file: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("final file has unexpected contents %q", data)
	}
}
