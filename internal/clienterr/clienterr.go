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

// Package clienterr implements the client-side error catalog (codes
// 1-32): missing/invalid parameters, authorization failures,
// artifact-cache failures, domain failures, and emitter failures.
// Every code renders as a fixed Ukrainian HTML page and is returned to
// the caller as an HTTP 401; none of these terminate the process
// (that's internal/fatal's job).
package clienterr

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Code is one entry of the client-side catalog.
type Code int

const (
	// Missing/invalid parameters, 1-16.
	MissingFormat    Code = 1
	InvalidFormat    Code = 2
	MissingVolume    Code = 3
	InvalidVolume    Code = 4
	MissingCompanyID Code = 5
	InvalidCompanyID Code = 6
	MissingTargetID  Code = 7
	InvalidTargetID  Code = 8
	MissingUserID    Code = 9
	InvalidUserID    Code = 10
	MissingTime      Code = 11
	InvalidTime      Code = 12
	MissingLang      Code = 13
	InvalidLang      Code = 14
	MissingToken     Code = 15
	TokenMismatch    Code = 16

	// Authorization failures, 17-19.
	UnknownCompany   Code = 17
	UnknownUser      Code = 18
	UserUnauthorized Code = 19

	// Artifact-cache failures, 20-22.
	ArtifactReadFailed   Code = 20
	ArtifactWriteFailed  Code = 21
	ArtifactRenameFailed Code = 22

	// Domain failures, 23-28.
	UnknownTarget     Code = 23
	TargetStockMissing Code = 24
	NoItemsAfterFilter Code = 25
	PricingQueryFailed Code = 26
	CurrencyUnavailable Code = 27
	LocksUnresolved    Code = 28

	// Emitter failures, 29-32.
	JSONEmitFailed Code = 29
	XMLEmitFailed  Code = 30
	PHPEmitFailed  Code = 31
	XLSXEmitFailed Code = 32
)

// messages holds the Ukrainian text for every catalog entry.
var messages = map[Code]string{
	MissingFormat:    "не вказано формат",
	InvalidFormat:    "невідомий формат",
	MissingVolume:    "не вказано обсяг прайс-листа",
	InvalidVolume:    "невірний обсяг прайс-листа",
	MissingCompanyID: "не вказано ідентифікатор компанії",
	InvalidCompanyID: "невірний ідентифікатор компанії",
	MissingTargetID:  "не вказано ідентифікатор цілі доставки",
	InvalidTargetID:  "невірний ідентифікатор цілі доставки",
	MissingUserID:    "не вказано ідентифікатор користувача",
	InvalidUserID:    "невірний ідентифікатор користувача",
	MissingTime:      "не вказано мітку часу",
	InvalidTime:      "невірна мітка часу",
	MissingLang:      "не вказано мову",
	InvalidLang:      "невідома мова",
	MissingToken:     "не вказано токен",
	TokenMismatch:    "токен не співпадає",

	UnknownCompany:   "невідома компанія",
	UnknownUser:      "невідомий користувач",
	UserUnauthorized: "користувач не авторизований",

	ArtifactReadFailed:   "не вдалося прочитати файл прайс-листа",
	ArtifactWriteFailed:  "не вдалося записати файл прайс-листа",
	ArtifactRenameFailed: "не вдалося перейменувати файл прайс-листа",

	UnknownTarget:       "невідома ціль доставки",
	TargetStockMissing:  "для цілі доставки не визначено склад",
	NoItemsAfterFilter:  "жодної позиції не залишилось після фільтрації",
	PricingQueryFailed:  "не вдалося отримати ціни",
	CurrencyUnavailable: "курс валюти недоступний",
	LocksUnresolved:     "не вдалося визначити блокування товарів",

	JSONEmitFailed: "не вдалося сформувати JSON",
	XMLEmitFailed:  "не вдалося сформувати XML",
	PHPEmitFailed:  "не вдалося сформувати PHP-serialized файл",
	XLSXEmitFailed: "не вдалося сформувати XLSX",
}

// Error is a client-side failure carrying its catalog code.
type Error struct {
	Code Code
}

// New returns an *Error for code. Panics if code isn't in the catalog,
// since that would mean a caller mistyped a constant.
func New(code Code) *Error {
	if _, ok := messages[code]; !ok {
		panic(fmt.Sprintf("clienterr: unknown code %d", code))
	}
	return &Error{Code: code}
}

// Message returns the Ukrainian catalog text for this error's code.
func (e *Error) Message() string { return messages[e.Code] }

func (e *Error) Error() string {
	return fmt.Sprintf("clienterr %d: %s", e.Code, e.Message())
}

// Page renders the fixed error-page shape:
// <!DOCTYPE HTML><html>…<body>Помилка N: <text></body></html>
func (e *Error) Page() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE HTML><html><head><meta charset=\"utf-8\"></head><body>Помилка %d: %s</body></html>", e.Code, e.Message())
	return buf.Bytes()
}

// WriteHTTP writes the full HTTP/1.1 401 response for a client-side
// failure: status line, text/html content type, content-length, and
// the rendered body.
func WriteHTTP(w io.Writer, e *Error) error {
	body := e.Page()
	header := fmt.Sprintf("HTTP/1.1 401 %s\r\nContent-Type: text/html; charset=utf-8\r\nContent-Length: %d\r\n\r\n",
		http.StatusText(http.StatusUnauthorized), len(body))
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	_, err := w.Write(body)
	return err
}
