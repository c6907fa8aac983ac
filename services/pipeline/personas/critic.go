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

const criticBaseRules = "You are a Schema Critic. You will be given:\n" +
	"- A goal (what the schema should enable)\n" +
	"- A candidate schema (JSON)\n" +
	"- An extraction output produced using that schema\n" +
	"- The full source document\n\n" +
	"Your job is to critique the schema as a representation, not to rewrite the entire pipeline.\n" +
	"Be concrete: point to missing fields, redundant fields, ambiguous fields, or evidence failures.\n\n" +
	"Output JSON only with keys:\n" +
	"{\n" +
	"  \"verdict\": \"accept\" | \"revise\" | \"reject\",\n" +
	"  \"strengths\": string[],\n" +
	"  \"weaknesses\": string[],\n" +
	"  \"suggested_changes\": string[]\n" +
	"}\n"

var criticFocus = map[string]string{
	"informativeness": "\nFocus: informativeness.\n" +
		"- Does the schema capture the highest mutual information fields for the goal?\n" +
		"- Are the fields sufficient to answer the goal robustly?\n" +
		"- Are there missing high-signal variables?\n",
	"redundancy": "\nFocus: redundancy / compression.\n" +
		"- Are there duplicate or overlapping fields?\n" +
		"- Could the schema be simplified without losing goal-relevant information?\n" +
		"- Are names/descriptions unnecessarily verbose or repeated?\n",
	"evidence": "\nFocus: evidence-boundness.\n" +
		"- Are fields defined in a way that forces traceable evidence?\n" +
		"- Did extraction hallucinate or fail to provide evidence?\n" +
		"- Are any fields inherently not evidenceable from the document?\n",
	"robustness": "\nFocus: robustness / generalization.\n" +
		"- Would this schema work across similar documents with different formatting?\n" +
		"- Are there brittle assumptions or layout-dependent fields?\n" +
		"- Are type hints and definitions stable and unambiguous?\n",
}

// SchemaCritic critiques one candidate schema under the given focus
// style, with the extraction output as evidence of how the schema
// performs.
func SchemaCritic(style, goalJSON, schemaJSON, extractionJSON string) Spec {
	return Spec{
		Name:         "schema_critic_" + style,
		SystemPrompt: criticBaseRules + criticFocus[style],
		BuildUser: func(bundle views.Bundle) string {
			return "GOAL:\n" + goalJSON + "\n\n" +
				"CANDIDATE SCHEMA (JSON):\n" + schemaJSON + "\n\n" +
				"EXTRACTION OUTPUT (JSON text):\n" + extractionJSON + "\n\n" +
				"SOURCE DOCUMENT:\n<<<\n" + bundle.Primary().Text + "\n>>>\n\n" +
				"Return JSON only."
		},
	}
}
