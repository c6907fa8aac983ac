// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package jsonx extracts JSON values from raw model output.
//
// Language models that are instructed to "return JSON only" still wrap
// their output in markdown fences, preambles, or trailing commentary
// often enough that downstream code needs a recovery path. This package
// exposes the two failure behaviors as distinct functions so callers
// choose explicitly:
//
//   - Strict: the entire (trimmed) input must be a single JSON value.
//     Use where the contract requires clean JSON and a violation should
//     trigger a retry or an eviction.
//   - Loose: best-effort extraction of the first JSON value embedded in
//     surrounding prose. Use where a salvageable answer is better than
//     none.
//
// The two modes are never silently merged; Strict never falls back to
// Loose.
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"
)

// Sentinel errors for JSON extraction.
var (
	// ErrEmptyInput is returned when the input is empty or whitespace.
	ErrEmptyInput = errors.New("expected JSON but got empty output")

	// ErrNoJSONValue is returned when no JSON object or array can be
	// located in the input.
	ErrNoJSONValue = errors.New("could not find JSON object/array in model output")

	// ErrUnbalancedJSON is returned when an opening brace/bracket is
	// found but no decodable value follows it.
	ErrUnbalancedJSON = errors.New("could not isolate JSON from model output")
)

// Strict decodes text as exactly one JSON value.
//
// The whole trimmed input must parse; trailing garbage is an error.
// Returns ErrEmptyInput for blank input.
func Strict(text string) (any, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, ErrEmptyInput
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Loose decodes the first JSON value found in text.
//
// Fast path is a strict decode of the whole input. Failing that, Loose
// decodes one value starting at the first '{' or '[', ignoring anything
// after it. As a last resort it slices to the final matching close
// character and decodes the slice, which recovers outputs where a
// stray brace inside a string confused the forward decode.
func Loose(text string) (any, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, ErrEmptyInput
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v, nil
	}

	firstObj := strings.IndexByte(s, '{')
	firstArr := strings.IndexByte(s, '[')
	start := firstObj
	if start == -1 || (firstArr != -1 && firstArr < start) {
		start = firstArr
	}
	if start == -1 {
		return nil, ErrNoJSONValue
	}

	dec := json.NewDecoder(strings.NewReader(s[start:]))
	if err := dec.Decode(&v); err == nil {
		return v, nil
	}

	closer := byte('}')
	if start == firstArr && start != firstObj {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return nil, ErrUnbalancedJSON
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &v); err != nil {
		return nil, ErrUnbalancedJSON
	}
	return v, nil
}

// SafeParse decodes text with Loose and never fails.
//
// Unparsable input degrades to map[string]any{"raw": <trimmed text>} so
// an adjudicating persona still sees the critic's words even when the
// critic broke the JSON contract.
func SafeParse(text string) any {
	v, err := Loose(text)
	if err != nil {
		return map[string]any{"raw": strings.TrimSpace(text)}
	}
	return v
}
