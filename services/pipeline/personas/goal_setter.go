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

const goalSetterSystemPrompt = "You are Goal-Setter. Read any business/legal exhibit and pick the single highest-value analytical " +
	"goal for downstream extraction. The goal must be stable and reusable for routing similar future documents.\n\n" +
	"Return JSON only with keys:\n" +
	"{\n" +
	"  \"title\": string,\n" +
	"  \"blueprint\": string\n" +
	"}\n\n" +
	"Blueprint requirements:\n" +
	"- Problem statement and what decision it supports\n" +
	"- Target entities (what is being extracted)\n" +
	"- Key facts to extract\n" +
	"- Evidence expectations (what counts as justified)\n" +
	"- Success criteria\n"

// GoalSetter mints a fresh goal (title + blueprint) from the exhibit.
func GoalSetter() Spec {
	return Spec{
		Name:         "goal_setter",
		SystemPrompt: goalSetterSystemPrompt,
		BuildUser: func(bundle views.Bundle) string {
			return "Task: choose the best extraction goal for the exhibit below.\n\n" +
				"EXHIBIT:\n<<<\n" + bundle.Primary().Text + "\n>>>\n\n" +
				"Return JSON only."
		},
	}
}
