// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads pipeline run scenarios from YAML.
//
// A scenario file captures everything one run needs besides the
// exhibit text itself:
//
//	exhibit_path: testdata/exhibit_10_1.txt
//	exhibit_id: exhibit-10-1
//	artifacts_dir: artifacts
//	memory_dir: memory
//	enable_tutor: true
//	views:
//	  goal:
//	    mode: head
//	    max_chars: 20000
//
// CLI flags override scenario fields; environment variables override
// credentials and store locations.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/SchemaCouncil/services/pipeline/views"
)

// ViewSpecs holds the per-persona document view configuration.
// Zero-value specs mean a full view.
type ViewSpecs struct {
	Goal      views.Spec `yaml:"goal"`
	Schema    views.Spec `yaml:"schema"`
	Extractor views.Spec `yaml:"extractor"`
	Critic    views.Spec `yaml:"critic"`
}

// Scenario is one pipeline run configuration.
type Scenario struct {
	// ExhibitPath points at the document to analyze.
	ExhibitPath string `yaml:"exhibit_path" validate:"required"`

	// ExhibitID names the run's artifact subdirectory. Generated from
	// the file name plus a short uuid when empty.
	ExhibitID string `yaml:"exhibit_id"`

	// GoalText optionally pins the goal instead of asking the router/
	// goal-setter. Either raw title text or a {"title", "blueprint"}
	// JSON document.
	GoalText string `yaml:"goal_text"`

	ArtifactsDir string `yaml:"artifacts_dir"`
	MemoryDir    string `yaml:"memory_dir"`

	ProposerStyles []string `yaml:"proposer_styles"`
	CriticStyles   []string `yaml:"critic_styles"`

	IncludeProvenance bool `yaml:"include_provenance"`
	EnableTutor       bool `yaml:"enable_tutor"`

	// Resume reuses artifacts from a prior run of the same exhibit.
	// Defaults to true; set "resume: false" to force re-execution.
	Resume *bool `yaml:"resume"`

	// MaxConcurrent bounds parallel candidate evaluation. 0 or 1 runs
	// candidates one at a time.
	MaxConcurrent int `yaml:"max_concurrent" validate:"gte=0,lte=16"`

	// Model overrides OPENAI_MODEL for this run.
	Model string `yaml:"model"`

	// Simulate runs against the scripted offline client.
	Simulate bool `yaml:"simulate"`

	Views ViewSpecs `yaml:"views"`
}

// ResumeEnabled resolves the tri-state resume flag.
func (s *Scenario) ResumeEnabled() bool {
	return s.Resume == nil || *s.Resume
}

var validate = validator.New()

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	s.applyDefaults()

	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) applyDefaults() {
	if s.ArtifactsDir == "" {
		s.ArtifactsDir = "artifacts"
	}
}
