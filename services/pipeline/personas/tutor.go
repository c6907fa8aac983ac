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

const tutorSystemPrompt = "You are Tutor. Given the current champion schema and critic council feedback, propose a challenger schema update.\n\n" +
	"Rules:\n" +
	"- Keep improvements minimal and targeted to concrete weaknesses.\n" +
	"- Preserve goal alignment; do not change the goal.\n" +
	"- Output either 'NO-CHANGE' if the schema is sufficient, or output the revised schema as JSON only.\n"

// Tutor reviews the reigning champion and either blesses it
// (NO-CHANGE) or proposes a challenger schema.
func Tutor(goalJSON, schemaJSON, extractionJSON, councilJSON string) Spec {
	return Spec{
		Name:         "tutor",
		SystemPrompt: tutorSystemPrompt,
		BuildUser: func(bundle views.Bundle) string {
			return "GOAL:\n" + goalJSON + "\n\n" +
				"CHAMPION SCHEMA (JSON):\n" + schemaJSON + "\n\n" +
				"EXTRACTION OUTPUT (JSON text):\n" + extractionJSON + "\n\n" +
				"CRITIC COUNCIL OUTPUTS:\n" + councilJSON + "\n\n" +
				"Return revised schema JSON or NO-CHANGE."
		},
	}
}
