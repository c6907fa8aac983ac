// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runner

import "errors"

// Sentinel errors for pipeline runs.
//
// Contract violations are always fatal and surfaced verbatim; they
// are never silently patched. Candidate-scoped failures are recovered
// by eviction and only become fatal when no candidate survives.
var (
	// ErrInvalidRequest is returned when the run request is missing
	// the exhibit id or text.
	ErrInvalidRequest = errors.New("invalid run request")

	// ErrGoalTitleMissing is returned when the goal-setter persona did
	// not return JSON with a non-empty title.
	ErrGoalTitleMissing = errors.New("goal-setter did not return JSON with a non-empty 'title'")

	// ErrNoViableCandidates is returned when every candidate was
	// evicted during evaluation. The artifact tree holds the
	// per-candidate diagnostics.
	ErrNoViableCandidates = errors.New("no viable schema candidates remained after extraction/critique; see artifacts for details")

	// ErrMissingChampionID is returned when the governor's decision
	// carries no champion_candidate_id.
	ErrMissingChampionID = errors.New("governor did not return a 'champion_candidate_id'")

	// ErrUnknownChampion is returned when the governor names a
	// candidate id outside the evaluated set.
	ErrUnknownChampion = errors.New("governor selected unknown candidate_id")

	// ErrExtractorInvalidJSON is returned (wrapped with the candidate
	// id) when the extractor failed to produce valid JSON twice.
	ErrExtractorInvalidJSON = errors.New("extractor did not return valid JSON")
)
