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

package fcgi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func nvPair(name, val string) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(name)))
	buf.WriteByte(byte(len(val)))
	buf.WriteString(name)
	buf.WriteString(val)
	return buf.Bytes()
}

func writeRaw(t *testing.T, w *bytes.Buffer, typ RecordType, reqID uint16, content []byte) {
	t.Helper()
	if err := WriteRecord(w, &Record{Type: typ, RequestID: reqID, Content: content}); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
}

func beginRequestBody(role Role, keepConn bool) []byte {
	body := make([]byte, 8)
	binary.BigEndian.PutUint16(body[0:2], uint16(role))
	if keepConn {
		body[2] = 1
	}
	return body
}

func TestReadRequestHappyPath(t *testing.T) {
	var wire bytes.Buffer
	writeRaw(t, &wire, TypeBeginRequest, 1, beginRequestBody(RoleResponder, false))
	params := append(nvPair("REQUEST_METHOD", "GET"), nvPair("QUERY_STRING", "a=1")...)
	writeRaw(t, &wire, TypeParams, 1, params)
	writeRaw(t, &wire, TypeParams, 1, nil) // ParamEnd
	writeRaw(t, &wire, TypeStdin, 1, []byte("body-bytes"))
	writeRaw(t, &wire, TypeStdin, 1, nil) // empty Stdin -> Work

	req, err := ReadRequest(&wire)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.State() != StateWork {
		t.Fatalf("state = %s, want Work", req.State())
	}
	if req.Params["REQUEST_METHOD"] != "GET" || req.Params["QUERY_STRING"] != "a=1" {
		t.Fatalf("params decoded wrong: %+v", req.Params)
	}
	if req.Stdin.String() != "body-bytes" {
		t.Fatalf("stdin = %q", req.Stdin.String())
	}
}

func TestReadRequestDuplicateParamKeyLastWins(t *testing.T) {
	var wire bytes.Buffer
	writeRaw(t, &wire, TypeBeginRequest, 1, beginRequestBody(RoleResponder, false))
	params := append(nvPair("X", "first"), nvPair("X", "second")...)
	writeRaw(t, &wire, TypeParams, 1, params)
	writeRaw(t, &wire, TypeParams, 1, nil)
	writeRaw(t, &wire, TypeStdin, 1, nil)

	req, err := ReadRequest(&wire)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if req.Params["X"] != "second" {
		t.Fatalf("X = %q, want last value to win", req.Params["X"])
	}
}

func TestReadRequestAbort(t *testing.T) {
	var wire bytes.Buffer
	writeRaw(t, &wire, TypeBeginRequest, 1, beginRequestBody(RoleResponder, false))
	writeRaw(t, &wire, TypeAbortRequest, 1, nil)

	_, err := ReadRequest(&wire)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("err = %v, want ErrAborted", err)
	}
}

func TestReadRequestIllegalTransition(t *testing.T) {
	var wire bytes.Buffer
	// Stdin before Params closed is illegal.
	writeRaw(t, &wire, TypeBeginRequest, 1, beginRequestBody(RoleResponder, false))
	writeRaw(t, &wire, TypeStdin, 1, []byte("oops"))

	_, err := ReadRequest(&wire)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("err = %v, want ErrIllegalTransition", err)
	}
}

func TestWriteResponseRoundTrip(t *testing.T) {
	var wire bytes.Buffer
	body := []byte("Status: 200 OK\r\n\r\nhello world")
	if err := WriteResponse(&wire, 7, body, 0, StatusRequestComplete); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}

	var got []byte
	for {
		rec, err := ReadRecord(&wire)
		if err != nil {
			t.Fatalf("ReadRecord: %v", err)
		}
		if rec.Type == TypeEndRequest {
			break
		}
		if rec.Type != TypeStdout {
			t.Fatalf("unexpected record type %d", rec.Type)
		}
		got = append(got, rec.Content...)
	}
	if string(got) != string(body) {
		t.Fatalf("round-tripped body = %q, want %q", got, body)
	}
}

func TestWriteResponseSplitsOversizedBody(t *testing.T) {
	body := make([]byte, MaxContentLen+100)
	for i := range body {
		body[i] = byte(i)
	}
	var wire bytes.Buffer
	if err := WriteResponse(&wire, 1, body, 0, StatusRequestComplete); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}

	var stdoutRecords int
	var got []byte
	for {
		rec, err := ReadRecord(&wire)
		if err != nil {
			t.Fatalf("ReadRecord: %v", err)
		}
		if rec.Type == TypeEndRequest {
			break
		}
		stdoutRecords++
		got = append(got, rec.Content...)
	}
	if stdoutRecords < 2 {
		t.Fatalf("expected body to split across multiple Stdout records, got %d", stdoutRecords)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("reassembled body does not match original")
	}
}
