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
	"errors"
	"fmt"
)

// State is one node of the request state machine:
// None -> Begin -> (Param|ParamEnd)* -> (Stdin*) -> Work -> End.
type State int

const (
	StateNone State = iota
	StateBegin
	StateParams
	StateStdin
	StateWork
	StateEnd
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateBegin:
		return "Begin"
	case StateParams:
		return "Params"
	case StateStdin:
		return "Stdin"
	case StateWork:
		return "Work"
	case StateEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// ErrIllegalTransition is returned when a record arrives that the
// current state does not accept. This terminates the connection;
// callers should close it rather than try to recover.
var ErrIllegalTransition = errors.New("fcgi: illegal state transition")

// ErrAborted signals that an AbortRequest record arrived; the caller
// must write the abort response and terminate.
var ErrAborted = errors.New("fcgi: request aborted")

// Request accumulates one FastCGI request as records are fed into it.
type Request struct {
	ID       uint16
	Role     Role
	KeepConn bool
	Params   map[string]string
	Stdin    bytes.Buffer

	state State
}

// NewRequest returns a Request ready to accept its BeginRequest record.
func NewRequest(id uint16) *Request {
	return &Request{ID: id, Params: make(map[string]string), state: StateNone}
}

// State reports the request's current state-machine node.
func (r *Request) State() State { return r.state }

// Feed advances the state machine by one record. It returns true once
// the Stdin stream has reached its empty-record terminator and the
// request is ready for work.
func (r *Request) Feed(rec *Record) (ready bool, err error) {
	switch rec.Type {
	case TypeAbortRequest:
		r.state = StateEnd
		return false, ErrAborted

	case TypeBeginRequest:
		if r.state != StateNone {
			return false, fmt.Errorf("%w: BeginRequest in state %s", ErrIllegalTransition, r.state)
		}
		body, err := ParseBeginRequestBody(rec.Content)
		if err != nil {
			return false, err
		}
		r.Role = body.Role
		r.KeepConn = body.KeepConn
		r.state = StateParams
		return false, nil

	case TypeParams:
		if r.state != StateParams {
			return false, fmt.Errorf("%w: Params in state %s", ErrIllegalTransition, r.state)
		}
		if len(rec.Content) == 0 {
			// ParamEnd: zero-length Params record closes the stream.
			r.state = StateStdin
			return false, nil
		}
		if err := ParseParams(rec.Content, r.Params); err != nil {
			return false, err
		}
		return false, nil

	case TypeStdin:
		if r.state != StateStdin {
			return false, fmt.Errorf("%w: Stdin in state %s", ErrIllegalTransition, r.state)
		}
		if len(rec.Content) == 0 {
			r.state = StateWork
			return true, nil
		}
		r.Stdin.Write(rec.Content)
		return false, nil

	default:
		return false, fmt.Errorf("%w: unexpected record type %d in state %s", ErrIllegalTransition, rec.Type, r.state)
	}
}
