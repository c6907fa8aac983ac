// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// GoalRecord is one stable analytical objective in the catalogue.
//
// The goal id is a pure function of the title (see GoalID), so
// re-submitting the same title always resolves to the same identity.
// Goals are never deleted by the pipeline; UpsertGoal may refresh the
// title and blueprint but the identity is stable.
type GoalRecord struct {
	GoalID    string `json:"goal_id"`
	Title     string `json:"title"`
	Blueprint string `json:"blueprint"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ChampionRecord is the current best schema for a goal, persisted as
// the warm-start seed for the next document routed to the same goal.
// One record per goal, overwritten (not versioned) on every successful
// run.
type ChampionRecord struct {
	GoalID           string  `json:"goal_id"`
	CandidateID      string  `json:"candidate_id"`
	Schema           any     `json:"schema"`
	Prompt           *string `json:"prompt"`
	GovernorDecision any     `json:"governor_decision"`
	UpdatedAt        string  `json:"updated_at"`
}

const slugMaxLen = 48

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "goal"
	}
	if len(s) > slugMaxLen {
		s = strings.TrimRight(s[:slugMaxLen], "-")
	}
	return s
}

// GoalID derives the stable goal identity for a title: a normalized
// slug plus the first 10 hex digits of the title's SHA-1. Titles that
// normalize to the same slug still get distinct ids unless the raw
// titles are byte-identical.
func GoalID(title string) string {
	sum := sha1.Sum([]byte(title))
	return slugify(title) + "-" + hex.EncodeToString(sum[:])[:10]
}
