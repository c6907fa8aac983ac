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

const goalRouterSystemPrompt = "You are Goal-Router. Your job is to route a document to an existing goal if it matches, " +
	"otherwise declare that a new goal should be created.\n\n" +
	"Principles:\n" +
	"- Be conservative: only match an existing goal if it is clearly the same analytical objective.\n" +
	"- Prefer stable goal identities over hyper-specific variations.\n" +
	"- Do not invent new goals when an existing one fits.\n\n" +
	"Output JSON only with keys:\n" +
	"{\n" +
	"  \"decision\": \"match\" | \"new\",\n" +
	"  \"goal_id\": string | null,\n" +
	"  \"rationale\": string\n" +
	"}\n"

// GoalRouter decides whether the exhibit matches one of the known
// goals. goalsJSON is the serialized catalogue of goal summaries.
func GoalRouter(goalsJSON string) Spec {
	return Spec{
		Name:         "goal_router",
		SystemPrompt: goalRouterSystemPrompt,
		BuildUser: func(bundle views.Bundle) string {
			return "KNOWN GOALS:\n" + goalsJSON + "\n\n" +
				"DOCUMENT:\n<<<\n" + bundle.Primary().Text + "\n>>>\n\n" +
				"Return JSON only."
		},
	}
}
