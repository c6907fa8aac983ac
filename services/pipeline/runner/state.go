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

import "sync"

// Goal is the public projection of a goal record used in persona
// payloads and run results.
type Goal struct {
	GoalID    string `json:"goal_id"`
	Title     string `json:"title"`
	Blueprint string `json:"blueprint"`
}

// State is the working memory of one pipeline run.
//
// It accumulates the resolved goal, the candidate set, and every
// artifact (prompts, extractions, critiques) as the run progresses.
// State is owned by the Runner for the duration of one Run call and
// never persisted directly; the artifact tree is derived from it.
//
// # Thread Safety
//
// All methods are safe for concurrent use: candidate evaluation may
// run with bounded parallelism, and every worker records its results
// here. Candidate insertion order is preserved so payloads and results
// stay deterministic.
type State struct {
	ExhibitID string

	mu          sync.Mutex
	goal        *Goal
	order       []string
	candidates  map[string]any
	proposers   map[string]string
	prompts     map[string]string
	extractions map[string]string
	critiques   map[string]map[string]string
	championID  string
	governorRaw string
}

// NewState creates an empty run state for one exhibit.
func NewState(exhibitID string) *State {
	return &State{
		ExhibitID:   exhibitID,
		candidates:  make(map[string]any),
		proposers:   make(map[string]string),
		prompts:     make(map[string]string),
		extractions: make(map[string]string),
		critiques:   make(map[string]map[string]string),
	}
}

// SetGoal records the resolved goal.
func (s *State) SetGoal(g *Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goal = g
}

// Goal returns the resolved goal, or nil before goal resolution.
func (s *State) Goal() *Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goal
}

// AddCandidate inserts a candidate schema unless the id is already
// present. Returns true when the candidate was added.
func (s *State) AddCandidate(id string, schema any, proposer string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.candidates[id]; exists {
		return false
	}
	s.candidates[id] = schema
	s.proposers[id] = proposer
	s.order = append(s.order, id)
	return true
}

// HasCandidate reports whether id is in the candidate set.
func (s *State) HasCandidate(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.candidates[id]
	return ok
}

// Schema returns a candidate's schema payload.
func (s *State) Schema(id string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := s.candidates[id]
	return schema, ok
}

// Proposer returns the proposer style recorded for a candidate.
func (s *State) Proposer(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.proposers[id]; ok {
		return p
	}
	return "unknown"
}

// CandidateIDs returns the surviving candidate ids in insertion order.
func (s *State) CandidateIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Evict removes a candidate and all artifacts recorded for it.
func (s *State) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.candidates, id)
	delete(s.proposers, id)
	delete(s.prompts, id)
	delete(s.extractions, id)
	delete(s.critiques, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// SetPrompt records the extraction prompt built for a candidate.
func (s *State) SetPrompt(id, prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[id] = prompt
}

// Prompt returns a candidate's extraction prompt.
func (s *State) Prompt(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prompts[id]
	return p, ok
}

// SetExtraction records a candidate's raw extraction JSON text.
func (s *State) SetExtraction(id, extraction string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extractions[id] = extraction
}

// Extraction returns a candidate's raw extraction JSON text.
func (s *State) Extraction(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.extractions[id]
	return e, ok
}

// SetCritique records one critic's raw verdict for a candidate.
func (s *State) SetCritique(id, style, critique string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.critiques[id] == nil {
		s.critiques[id] = make(map[string]string)
	}
	s.critiques[id][style] = critique
}

// HasCritique reports whether the given critic style has a recorded
// verdict for the candidate.
func (s *State) HasCritique(id, style string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.critiques[id][style]
	return ok
}

// Critiques returns a copy of the critic verdicts for a candidate,
// keyed by critic style.
func (s *State) Critiques(id string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.critiques[id]))
	for style, text := range s.critiques[id] {
		out[style] = text
	}
	return out
}

// SetChampion records the governor's selection.
func (s *State) SetChampion(id, governorRaw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.championID = id
	s.governorRaw = governorRaw
}

// ChampionID returns the currently selected champion candidate id.
func (s *State) ChampionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.championID
}

// GovernorRaw returns the raw text of the governor's latest decision.
func (s *State) GovernorRaw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.governorRaw
}
