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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/SchemaCouncil/pkg/logging"
)

// --- Global Command Variables ---
var (
	verbose bool
	quiet   bool
	logDir  string

	scenarioPath  string
	exhibitPath   string
	exhibitID     string
	goalText      string
	artifactsDir  string
	memoryDirFlag string
	simulate      bool
	enableTutor   bool
	noResume      bool
	provenance    bool
	maxConcurrent int
	modelName     string

	appLogger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "schemacouncil",
		Short: "A cli for goal-driven, self-critiquing document extraction",
		Long: `SchemaCouncil runs a council of model personas over a single document:
a goal is resolved, competing extraction schemas are proposed, each is
tested by extraction and critiqued, and a governor selects a champion
that is remembered for future documents of the same kind.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logging.LevelInfo
			if verbose {
				level = logging.LevelDebug
			}
			appLogger = logging.New(logging.Config{
				Level:   level,
				LogDir:  logDir,
				Service: "schemacouncil",
				Quiet:   quiet,
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appLogger != nil {
				_ = appLogger.Close()
			}
		},
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the extraction pipeline against one exhibit",
		RunE:  runPipeline, // Defined in cmd_run.go
	}

	// --- Goal Memory ---
	goalsCmd = &cobra.Command{
		Use:   "goals",
		Short: "Inspect the goal memory store",
	}
	goalsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all remembered goals",
		RunE:  runGoalsList, // Defined in cmd_goals.go
	}
	goalsShowCmd = &cobra.Command{
		Use:   "show [goal_id]",
		Short: "Show one goal and its champion schema",
		Args:  cobra.ExactArgs(1),
		RunE:  runGoalsShow, // Defined in cmd_goals.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output on stderr")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Also write JSON logs to this directory")

	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&scenarioPath, "config", "c", "", "Scenario YAML file")
	runCmd.Flags().StringVar(&exhibitPath, "exhibit", "", "Path to the exhibit document (overrides scenario)")
	runCmd.Flags().StringVar(&exhibitID, "exhibit-id", "", "Artifact directory name for this run")
	runCmd.Flags().StringVar(&goalText, "goal", "", "Pin the goal: raw title text or {\"title\",\"blueprint\"} JSON")
	runCmd.Flags().StringVar(&artifactsDir, "artifacts-dir", "", "Artifact tree root (default \"artifacts\")")
	runCmd.Flags().StringVar(&memoryDirFlag, "memory-dir", "", "Goal memory root (default $SCHEMACOUNCIL_MEMORY_DIR or \"memory\")")
	runCmd.Flags().BoolVar(&simulate, "simulate", false, "Use the scripted offline client instead of a live model")
	runCmd.Flags().BoolVar(&enableTutor, "tutor", false, "Enable the tutor challenger round")
	runCmd.Flags().BoolVar(&noResume, "no-resume", false, "Ignore existing artifacts and re-run every candidate")
	runCmd.Flags().BoolVar(&provenance, "provenance", false, "Require character-offset provenance in extraction prompts")
	runCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Parallel candidate evaluations (0 = sequential)")
	runCmd.Flags().StringVar(&modelName, "model", "", "Model name for the live client (default $OPENAI_MODEL)")

	rootCmd.AddCommand(goalsCmd)
	goalsCmd.AddCommand(goalsListCmd)
	goalsCmd.AddCommand(goalsShowCmd)
	goalsCmd.PersistentFlags().StringVar(&memoryDirFlag, "memory-dir", "", "Goal memory root (default $SCHEMACOUNCIL_MEMORY_DIR or \"memory\")")
}
