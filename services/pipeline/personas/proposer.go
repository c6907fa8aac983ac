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

const proposerBaseRules = "You are a Schema Proposer. Given a goal and a full document, propose the best extraction schema as JSON.\n\n" +
	"The schema must define explicit fields (names + meaning) and be usable to drive deterministic extraction.\n" +
	"You may choose any JSON structure (flat, nested objects, arrays) as needed.\n\n" +
	"Hard requirements:\n" +
	"- Output JSON only.\n" +
	"- Every leaf field definition must include: a type hint, a human-readable description, and an evidence rule.\n" +
	"- Favor fields that are observable and evidence-bound (no speculation).\n"

var proposerFocus = map[string]string{
	"max_information": "\nInformation-theory focus:\n" +
		"- Maximize mutual information between extracted fields and the goal.\n" +
		"- Prefer high-signal fields even if they are harder, as long as evidence exists.\n" +
		"- Avoid low-information boilerplate.\n",
	"min_redundancy": "\nInformation-theory focus:\n" +
		"- Minimize redundancy: do not include multiple fields that encode the same fact.\n" +
		"- Prefer compressed representations and shared abstractions.\n" +
		"- Penalize near-duplicate fields and verbose, overlapping descriptions.\n",
	"evidence_first": "\nInformation-theory focus:\n" +
		"- Treat evidence-boundness as a hard constraint.\n" +
		"- Prefer fields with unambiguous textual anchors and stable wording.\n" +
		"- If a high-value field is not reliably evidenced, exclude it.\n",
	"robust_general": "\nInformation-theory focus:\n" +
		"- Prefer schemas that will generalize across similar documents and formatting changes.\n" +
		"- Avoid brittle fields tied to one-off layout or phrasing.\n" +
		"- Prefer normalized, stable semantic fields over superficial presentation details.\n",
}

// SchemaProposer proposes one candidate schema in the given style.
// Unknown styles get the base rules without a focus block.
func SchemaProposer(style, goalJSON string) Spec {
	return Spec{
		Name:         "schema_proposer_" + style,
		SystemPrompt: proposerBaseRules + proposerFocus[style],
		BuildUser: func(bundle views.Bundle) string {
			return "GOAL:\n" + goalJSON + "\n\n" +
				"DOCUMENT:\n<<<\n" + bundle.Primary().Text + "\n>>>\n\n" +
				"Return JSON only."
		},
	}
}
