// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package views slices an exhibit's text into bounded views.
//
// Each persona in the pipeline receives a view sized to its role: the
// extractor usually sees the full document while cost-sensitive
// personas see only the head or a fixed window. BuildViews is a pure
// function; views carry their character offsets so extraction output
// can cite provenance back into the full text.
//
// Offsets are rune offsets, matching how the rest of the pipeline
// counts "characters" in multi-byte documents.
package views

import "fmt"

// Mode selects how an exhibit is sliced into views.
type Mode string

const (
	// ModeFull returns the entire text as one view.
	ModeFull Mode = "full"

	// ModeHead returns one view truncated to MaxChars from the start.
	ModeHead Mode = "head"

	// ModeTail returns one view truncated to MaxChars from the end.
	ModeTail Mode = "tail"

	// ModeWindow returns one view per (start, end) pair in Windows,
	// clamped to the text bounds.
	ModeWindow Mode = "window"
)

// Window is a half-open [Start, End) rune range into the full text.
type Window struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Spec describes how to build views for one persona.
type Spec struct {
	Mode     Mode     `yaml:"mode" json:"mode"`
	MaxChars int      `yaml:"max_chars" json:"max_chars"`
	Windows  []Window `yaml:"windows" json:"windows"`
}

// View is one bounded slice of the exhibit text.
type View struct {
	// Label identifies the view within its bundle ("full", "head",
	// "window_0", ...).
	Label string

	// Text is the sliced content.
	Text string

	// Start and End are the [Start, End) rune offsets of Text within
	// the full exhibit text.
	Start int
	End   int

	// Provenance names how the view was produced. "fallback_full"
	// marks a view produced by the unknown-mode fallback.
	Provenance string
}

// Exhibit is one document under analysis.
type Exhibit struct {
	ID       string
	FullText string
}

// Bundle pairs an exhibit with the views built for one persona.
type Bundle struct {
	Exhibit Exhibit
	Views   []View
}

// Primary returns the first view. Every bundle has at least one view;
// personas that only consume a single slice read this one.
func (b Bundle) Primary() View {
	return b.Views[0]
}

// BuildViews slices text according to spec.
//
// An unknown mode falls back to a single full view with provenance
// "fallback_full". The fallback is deliberately fail-open so a
// misconfigured caller still gets a usable run; callers that want to
// catch the misconfiguration should check View.Provenance.
func BuildViews(text string, spec Spec) []View {
	runes := []rune(text)
	n := len(runes)

	switch spec.Mode {
	case ModeFull, "":
		return []View{{Label: "full", Text: text, Start: 0, End: n, Provenance: "full"}}

	case ModeHead:
		limit := spec.MaxChars
		if limit <= 0 || limit > n {
			limit = n
		}
		return []View{{Label: "head", Text: string(runes[:limit]), Start: 0, End: limit, Provenance: "head"}}

	case ModeTail:
		limit := spec.MaxChars
		if limit <= 0 || limit > n {
			limit = n
		}
		return []View{{Label: "tail", Text: string(runes[n-limit:]), Start: n - limit, End: n, Provenance: "tail"}}

	case ModeWindow:
		if len(spec.Windows) > 0 {
			out := make([]View, 0, len(spec.Windows))
			for i, w := range spec.Windows {
				start := max(0, w.Start)
				end := min(n, w.End)
				if start > end {
					start = end
				}
				out = append(out, View{
					Label:      fmt.Sprintf("window_%d", i),
					Text:       string(runes[start:end]),
					Start:      start,
					End:        end,
					Provenance: "window",
				})
			}
			return out
		}
	}

	return []View{{Label: "full", Text: text, Start: 0, End: n, Provenance: "fallback_full"}}
}

// MakeBundle builds the views for one exhibit under one spec.
func MakeBundle(exhibitID, text string, spec Spec) Bundle {
	return Bundle{
		Exhibit: Exhibit{ID: exhibitID, FullText: text},
		Views:   BuildViews(text, spec),
	}
}
