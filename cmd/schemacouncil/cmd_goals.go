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
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/SchemaCouncil/services/pipeline/memory"
)

func runGoalsList(cmd *cobra.Command, args []string) error {
	mem := memory.NewStore(memoryDirFlag)
	goals, err := mem.ListGoals()
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No goals remembered yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GOAL ID\tTITLE\tCHAMPION")
	for _, g := range goals {
		championID := "-"
		if champ, err := mem.GetChampion(g.GoalID); err == nil {
			championID = champ.CandidateID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", g.GoalID, g.Title, championID)
	}
	return w.Flush()
}

func runGoalsShow(cmd *cobra.Command, args []string) error {
	mem := memory.NewStore(memoryDirFlag)
	goalID := args[0]

	goal, err := mem.GetGoal(goalID)
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) {
			return fmt.Errorf("no goal %q in %s", goalID, mem.Root())
		}
		return err
	}

	out := map[string]any{"goal": goal}
	champ, err := mem.GetChampion(goalID)
	switch {
	case err == nil:
		out["champion"] = champ
	case errors.Is(err, memory.ErrNotFound):
		// A goal can exist before any run has crowned a champion.
	default:
		return err
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
