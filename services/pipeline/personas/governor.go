// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package personas

import "github.com/AleutianAI/SchemaCouncil/services/pipeline/views"

const governorSystemPrompt = "You are Governor. You adjudicate between competing extraction schema candidates for one goal.\n\n" +
	"You will be given the goal and, for every candidate: its id, proposer style, schema, and the critic council's verdicts.\n\n" +
	"Principles:\n" +
	"- Weigh the critic council's verdicts; do not re-critique from scratch.\n" +
	"- Prefer evidence-bound, goal-aligned schemas over clever but brittle ones.\n" +
	"- You MUST select the champion_candidate_id from the candidates listed. Never invent an id.\n\n" +
	"Output JSON only with keys:\n" +
	"{\n" +
	"  \"champion_candidate_id\": string,\n" +
	"  \"rationale\": string,\n" +
	"  \"next_improvements\": string[]\n" +
	"}\n"

// Governor adjudicates the candidate set. candidatesJSON is the
// serialized payload of candidate ids, schemas, and council verdicts.
func Governor(goalJSON, candidatesJSON string) Spec {
	return Spec{
		Name:         "governor",
		SystemPrompt: governorSystemPrompt,
		BuildUser: func(bundle views.Bundle) string {
			return "GOAL:\n" + goalJSON + "\n\n" +
				"CANDIDATES (JSON):\n" + candidatesJSON + "\n\n" +
				"Return JSON only."
		},
	}
}
