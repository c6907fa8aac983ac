// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package personas maps a persona role and its parameters to a system
// prompt and user-message builder.
//
// This is a pure lookup/templating facility: no persona here performs
// I/O or parses model output. The runner renders a Spec against the
// document bundle sized for that persona and ships the messages
// through the gateway.
package personas

import (
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/gateway"
	"github.com/AleutianAI/SchemaCouncil/services/pipeline/views"
)

// Spec pairs a persona's system prompt with its user-message builder.
type Spec struct {
	Name         string
	SystemPrompt string
	BuildUser    func(bundle views.Bundle) string
}

// RenderMessages materializes a persona spec into the two-message chat
// the gateway expects.
func RenderMessages(spec Spec, bundle views.Bundle) []gateway.Message {
	return []gateway.Message{
		{Role: gateway.RoleSystem, Content: spec.SystemPrompt},
		{Role: gateway.RoleUser, Content: spec.BuildUser(bundle)},
	}
}

// ProposerStyles returns the default schema-proposer styles in their
// canonical order. Order matters: candidate generation and governor
// payloads follow it, keeping runs deterministic.
func ProposerStyles() []string {
	return []string{"max_information", "min_redundancy", "evidence_first", "robust_general"}
}

// CriticStyles returns the default critic-council styles in their
// canonical order.
func CriticStyles() []string {
	return []string{"informativeness", "redundancy", "evidence", "robustness"}
}
