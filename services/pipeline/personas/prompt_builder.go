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

const promptBuilderSystemPrompt = "You are Prompt-Builder++. Given a goal and a candidate schema (JSON), craft a deterministic extraction prompt " +
	"for an LLM Extractor.\n\n" +
	"Requirements:\n" +
	"- The extractor MUST return JSON only.\n" +
	"- The output JSON must contain explicit fields with extracted values.\n" +
	"- For every extracted field, also include evidence (quoted snippet) that supports the value.\n" +
	"- If evidence is missing, set the value and its evidence to null.\n" +
	"- Do not add commentary outside JSON.\n" +
	"- Return the final extraction prompt text only."

const provenanceBlock = "\n\nProvenance requirement: For every field, also emit <field>_provenance with " +
	"{start_offset, end_offset, snippet}. Offsets are 0-based character positions into the EXHIBIT text; " +
	"snippet is the exact quoted span used as evidence. If no evidence exists, set the provenance object to null."

// PromptBuilder writes the extractor's system prompt for one candidate
// schema. includeProvenance additionally demands per-field character
// offsets into the exhibit.
func PromptBuilder(goalJSON, schemaJSON string, includeProvenance bool) Spec {
	return Spec{
		Name:         "prompt_builder",
		SystemPrompt: promptBuilderSystemPrompt,
		BuildUser: func(bundle views.Bundle) string {
			suffix := ""
			if includeProvenance {
				suffix = provenanceBlock
			}
			return "GOAL:\n" + goalJSON + "\n\n" +
				"SCHEMA (JSON):\n" + schemaJSON + "\n\n" +
				"Write the final extractor prompt." + suffix
		},
	}
}
