// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/SchemaCouncil/pkg/validation"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/config"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/gateway"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/memory"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/runner"
)

func runPipeline(cmd *cobra.Command, args []string) error {
	scenario, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	exhibitText, err := os.ReadFile(scenario.ExhibitPath)
	if err != nil {
		return fmt.Errorf("reading exhibit %s: %w", scenario.ExhibitPath, err)
	}
	if scenario.ExhibitID == "" {
		scenario.ExhibitID = deriveExhibitID(scenario.ExhibitPath)
	}

	var chat gateway.Client
	if scenario.Simulate {
		appLogger.Info("running in simulation mode, no model calls will be made")
		chat = gateway.NewScriptedClient()
	} else {
		chat, err = gateway.NewOpenAIClient(scenario.Model)
		if err != nil {
			return err
		}
	}

	mem := memory.NewStore(scenario.MemoryDir)
	pipe := runner.New(mem, chat, runner.Options{Logger: appLogger.Slog()})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, _, err := pipe.Run(ctx, runner.Request{
		ExhibitID:         scenario.ExhibitID,
		ExhibitText:       string(exhibitText),
		GoalText:          scenario.GoalText,
		ArtifactsDir:      scenario.ArtifactsDir,
		ProposerStyles:    scenario.ProposerStyles,
		CriticStyles:      scenario.CriticStyles,
		IncludeProvenance: scenario.IncludeProvenance,
		EnableTutor:       scenario.EnableTutor,
		Resume:            scenario.ResumeEnabled(),
		MaxConcurrent:     scenario.MaxConcurrent,
		Views: runner.ViewSet{
			Goal:      scenario.Views.Goal,
			Schema:    scenario.Views.Schema,
			Extractor: scenario.Views.Extractor,
			Critic:    scenario.Views.Critic,
		},
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// loadScenario resolves the run configuration: scenario file first,
// then CLI flag overrides on top. Without --config the flags alone
// must describe the run.
func loadScenario(cmd *cobra.Command) (*config.Scenario, error) {
	var scenario *config.Scenario
	if scenarioPath != "" {
		loaded, err := config.Load(scenarioPath)
		if err != nil {
			return nil, err
		}
		scenario = loaded
	} else {
		scenario = &config.Scenario{ArtifactsDir: "artifacts"}
	}

	if exhibitPath != "" {
		scenario.ExhibitPath = exhibitPath
	}
	if scenario.ExhibitPath == "" {
		return nil, fmt.Errorf("an exhibit is required: pass --exhibit or a --config scenario with exhibit_path")
	}
	if exhibitID != "" {
		scenario.ExhibitID = exhibitID
	}
	if goalText != "" {
		scenario.GoalText = goalText
	}
	if artifactsDir != "" {
		scenario.ArtifactsDir = artifactsDir
	}
	if memoryDirFlag != "" {
		scenario.MemoryDir = memoryDirFlag
	}
	if modelName != "" {
		scenario.Model = modelName
	}
	if cmd.Flags().Changed("simulate") {
		scenario.Simulate = simulate
	}
	if cmd.Flags().Changed("tutor") {
		scenario.EnableTutor = enableTutor
	}
	if cmd.Flags().Changed("provenance") {
		scenario.IncludeProvenance = provenance
	}
	if cmd.Flags().Changed("max-concurrent") {
		scenario.MaxConcurrent = maxConcurrent
	}
	if noResume {
		off := false
		scenario.Resume = &off
	}
	return scenario, nil
}

// deriveExhibitID builds a stable-looking artifact directory name from
// the exhibit file name plus a short random suffix, so repeated ad-hoc
// runs of the same file do not collide.
func deriveExhibitID(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	slug, err := validation.SanitizeID(base)
	if err != nil {
		slug = "exhibit"
	}
	return slug + "-" + uuid.NewString()[:8]
}
