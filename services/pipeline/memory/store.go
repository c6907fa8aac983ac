// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package memory is the durable catalogue of goals and champions.
//
// Layout on disk, one directory per goal:
//
//	<root>/goals/<goal_id>/goal.json
//	<root>/goals/<goal_id>/champion.json
//
// Every write is atomic (write to a temp file, then rename) so a
// concurrent reader never observes a partial record. Writers to the
// same goal are not serialized by the store itself; callers that may
// run concurrently for one goal should hold the advisory lock from
// LockGoal around their read-modify-write.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/AleutianAI/SchemaCouncil/pkg/validation"
)

// EnvMemoryDir overrides the default store root when set.
const EnvMemoryDir = "SCHEMACOUNCIL_MEMORY_DIR"

// Store reads and writes goal and champion records under a root
// directory.
//
// # Thread Safety
//
// Store methods are safe for concurrent use across distinct goals.
// Concurrent writes to the same goal require LockGoal.
type Store struct {
	root string
}

// NewStore creates a store rooted at rootDir. An empty rootDir falls
// back to $SCHEMACOUNCIL_MEMORY_DIR, then "memory". The directory is
// created lazily on first write.
func NewStore(rootDir string) *Store {
	if rootDir == "" {
		rootDir = os.Getenv(EnvMemoryDir)
	}
	if rootDir == "" {
		rootDir = "memory"
	}
	return &Store{root: rootDir}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) goalDir(goalID string) string {
	return filepath.Join(s.root, "goals", goalID)
}

// ListGoals returns all readable goal records, sorted by goal id.
// Directories without a parseable goal.json are skipped, never fatal:
// a half-written record must not take down goal resolution.
func (s *Store) ListGoals() ([]GoalRecord, error) {
	base := filepath.Join(s.root, "goals")
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing goals: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var goals []GoalRecord
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var rec GoalRecord
		if err := readJSON(filepath.Join(base, entry.Name(), "goal.json"), &rec); err != nil {
			continue
		}
		goals = append(goals, rec)
	}
	return goals, nil
}

// GetGoal loads one goal record. Returns ErrNotFound if absent.
// The id is validated before touching the filesystem; ids come
// straight from the CLI and model output.
func (s *Store) GetGoal(goalID string) (*GoalRecord, error) {
	if err := validation.ValidateGoalID(goalID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var rec GoalRecord
	if err := readJSON(filepath.Join(s.goalDir(goalID), "goal.json"), &rec); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading goal %s: %w", goalID, err)
	}
	return &rec, nil
}

// UpsertGoal creates or refreshes the goal for title. The id is
// derived from the title; CreatedAt is preserved across updates and
// UpdatedAt always refreshed.
func (s *Store) UpsertGoal(title, blueprint string) (*GoalRecord, error) {
	gid := GoalID(title)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	createdAt := now
	if existing, err := s.GetGoal(gid); err == nil {
		createdAt = existing.CreatedAt
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rec := &GoalRecord{
		GoalID:    gid,
		Title:     title,
		Blueprint: blueprint,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	if err := writeJSONAtomic(filepath.Join(s.goalDir(gid), "goal.json"), rec); err != nil {
		return nil, fmt.Errorf("writing goal %s: %w", gid, err)
	}
	return rec, nil
}

// GetChampion loads the champion record for a goal. Returns
// ErrNotFound if the goal has no champion yet.
func (s *Store) GetChampion(goalID string) (*ChampionRecord, error) {
	var rec ChampionRecord
	if err := readJSON(filepath.Join(s.goalDir(goalID), "champion.json"), &rec); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading champion for %s: %w", goalID, err)
	}
	return &rec, nil
}

// SetChampion overwrites the champion record for a goal.
func (s *Store) SetChampion(goalID, candidateID string, schema any, prompt *string, governorDecision any) (*ChampionRecord, error) {
	rec := &ChampionRecord{
		GoalID:           goalID,
		CandidateID:      candidateID,
		Schema:           schema,
		Prompt:           prompt,
		GovernorDecision: governorDecision,
		UpdatedAt:        time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := writeJSONAtomic(filepath.Join(s.goalDir(goalID), "champion.json"), rec); err != nil {
		return nil, fmt.Errorf("writing champion for %s: %w", goalID, err)
	}
	return rec, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
