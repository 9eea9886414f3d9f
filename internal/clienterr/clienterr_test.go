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

package clienterr

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

// TestPageRendersFixedShape checks that every client-side error
// renders as <!DOCTYPE HTML><html>…<body>Помилка N: <text>…, using
// the token-mismatch code (16).
func TestPageRendersFixedShape(t *testing.T) {
	e := New(TokenMismatch)
	page := string(e.Page())

	if !strings.HasPrefix(page, "<!DOCTYPE HTML><html>") {
		t.Fatalf("page should start with the fixed doctype/html prefix, got %q", page)
	}
	if !strings.Contains(page, "Помилка 16:") {
		t.Fatalf("page should contain %q, got %q", "Помилка 16:", page)
	}
	if !strings.Contains(page, messages[TokenMismatch]) {
		t.Fatalf("page should contain the catalog text for code 16")
	}
}

func TestNewPanicsOnUnknownCode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("New should panic for an unmapped code")
		}
	}()
	New(Code(9999))
}

func TestWriteHTTPWritesContentLengthMatchingBody(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTTP(&buf, New(UnknownUser)); err != nil {
		t.Fatalf("WriteHTTP: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 401") {
		t.Fatalf("response should start with a 401 status line, got %q", out[:40])
	}

	idx := strings.Index(out, "\r\n\r\n")
	if idx < 0 {
		t.Fatalf("response should have a header/body separator")
	}
	body := out[idx+4:]
	if !strings.Contains(out, "Content-Length: "+strconv.Itoa(len(body))) {
		t.Fatalf("Content-Length should equal the body length (%d), got headers %q", len(body), out[:idx])
	}
}
