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

// Extractor runs the candidate's generated prompt against the exhibit.
// The prompt text produced by PromptBuilder becomes the system prompt;
// the exhibit view is the user message.
func Extractor(promptText string) Spec {
	return Spec{
		Name:         "extractor",
		SystemPrompt: promptText,
		BuildUser: func(bundle views.Bundle) string {
			return "EXHIBIT:\n<<<\n" + bundle.Primary().Text + "\n>>>"
		},
	}
}
