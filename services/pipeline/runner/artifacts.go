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

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/SchemaCouncil/pkg/jsonx"
)

// Artifact layout, rooted at <artifacts_dir>/<exhibit_id>:
//
//	goal.json
//	governor.json
//	governor_2.json                     (only if the tutor round ran)
//	<candidate_id>/schema.json
//	<candidate_id>/prompt.txt
//	<candidate_id>/extraction.json
//	<candidate_id>/critic_<style>.json
//	<candidate_id>/candidate_error.txt  (on eviction)
//
// Resume must be able to reconstruct state from exactly these files,
// so names and JSON formatting stay stable across versions.

func saveArtifact(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func marshalIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// scanArtifacts reconstructs candidates, prompts, extractions, and
// critiques from a prior run's artifact tree.
//
// The scan is deliberately forgiving: any file that is missing or
// fails to parse as JSON is treated as absent, which forces that step
// to re-execute. A partially written prior run must never make resume
// fail hard.
func scanArtifacts(baseDir string, st *State) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidateID := entry.Name()
		candidateDir := filepath.Join(baseDir, candidateID)

		schemaText, err := os.ReadFile(filepath.Join(candidateDir, "schema.json"))
		if err != nil {
			continue
		}
		schema, err := jsonx.Strict(string(schemaText))
		if err != nil {
			continue
		}
		st.AddCandidate(candidateID, schema, proposerFromID(candidateID))

		if prompt, err := os.ReadFile(filepath.Join(candidateDir, "prompt.txt")); err == nil {
			st.SetPrompt(candidateID, string(prompt))
		}

		if extraction, err := os.ReadFile(filepath.Join(candidateDir, "extraction.json")); err == nil {
			// Invalid JSON forces extraction to re-run for this candidate.
			if _, err := jsonx.Strict(string(extraction)); err == nil {
				st.SetExtraction(candidateID, string(extraction))
			}
		}

		critics, err := filepath.Glob(filepath.Join(candidateDir, "critic_*.json"))
		if err != nil {
			continue
		}
		for _, criticPath := range critics {
			style := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(criticPath), "critic_"), ".json")
			text, err := os.ReadFile(criticPath)
			if err != nil {
				continue
			}
			if _, err := jsonx.Strict(string(text)); err != nil {
				continue
			}
			st.SetCritique(candidateID, style, string(text))
		}
	}
}

// proposerFromID infers the proposer style from a resumed candidate's
// directory name.
func proposerFromID(candidateID string) string {
	switch {
	case strings.HasPrefix(candidateID, "proposer_"):
		return strings.TrimPrefix(candidateID, "proposer_")
	case strings.HasPrefix(candidateID, "memory_"):
		return "memory"
	case strings.HasPrefix(candidateID, "tutor_"):
		return "tutor"
	default:
		return "unknown"
	}
}
