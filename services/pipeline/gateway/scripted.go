// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/AleutianAI/SchemaCouncil/pkg/jsonx"
)

// ScriptedClient is an offline stand-in for a live model.
//
// It routes on well-known markers in the system prompt and returns
// deterministic, contract-conforming JSON for every persona. Used by
// the --simulate CLI flag and by tests that exercise the whole
// pipeline without network access.
type ScriptedClient struct{}

// NewScriptedClient returns a scripted client.
func NewScriptedClient() *ScriptedClient {
	return &ScriptedClient{}
}

// SendChat implements the Client interface with canned persona
// responses.
func (c *ScriptedClient) SendChat(_ context.Context, messages []Message) (string, error) {
	var system, user string
	if len(messages) > 0 {
		system = messages[0].Content
		user = messages[len(messages)-1].Content
	}

	switch {
	case strings.Contains(system, "You are Goal-Router"):
		return marshal(map[string]any{
			"decision": "new", "goal_id": nil, "rationale": "simulation",
		}), nil

	case strings.Contains(system, "You are Goal-Setter"):
		return marshal(map[string]any{
			"title":     "Simulated Goal",
			"blueprint": "Extract a small, evidence-bound set of key facts.",
		}), nil

	case strings.Contains(system, "You are a Schema Proposer"):
		fields := []map[string]any{
			{
				"name":          "document_title",
				"type":          "string",
				"description":   "Title or heading of the document (if present).",
				"evidence_rule": "Quote the exact heading line.",
			},
			{
				"name":          "key_terms",
				"type":          "array[string]",
				"description":   "Up to 5 salient terms that best capture the goal-relevant content.",
				"evidence_rule": "Each term must appear verbatim in the document.",
			},
		}
		if strings.Contains(system, "Minimize redundancy") {
			fields = fields[:1]
		}
		return marshal(map[string]any{"fields": fields}), nil

	case strings.Contains(system, "You are Prompt-Builder"):
		return scriptedExtractionPrompt(user), nil

	case strings.Contains(system, "You are a Schema Critic"):
		return marshal(map[string]any{
			"verdict":           "revise",
			"strengths":         []string{"Simulation mode: produced a schema with explicit fields."},
			"weaknesses":        []string{"Simulation mode: not grounded in real document content."},
			"suggested_changes": []string{"Run with a real model to generate document-grounded schemas."},
		}), nil

	case strings.Contains(system, "You are Governor"):
		return scriptedGovernorDecision(user), nil

	case strings.Contains(system, "You are Tutor"):
		return "NO-CHANGE", nil

	case strings.HasPrefix(user, "EXHIBIT:"):
		return marshal(map[string]any{
			"values":   map[string]any{"field_1": nil},
			"evidence": map[string]any{"field_1": nil},
		}), nil
	}

	return "{}", nil
}

// scriptedExtractionPrompt derives field names from the schema JSON in
// the prompt-builder's user message so the simulated prompt still
// reflects the candidate under test.
func scriptedExtractionPrompt(user string) string {
	var names []string
	if v, err := jsonx.Loose(user); err == nil {
		if obj, ok := v.(map[string]any); ok {
			if fields, ok := obj["fields"].([]any); ok {
				for _, f := range fields {
					if fm, ok := f.(map[string]any); ok {
						if name, ok := fm["name"].(string); ok && name != "" {
							names = append(names, name)
						}
					}
				}
			}
		}
	}
	if len(names) == 0 {
		names = []string{"field_1"}
	}

	var b strings.Builder
	b.WriteString("You are an extractor. Return JSON only.\n\n")
	b.WriteString("Output format:\n{\n  \"values\": { ... },\n  \"evidence\": { ... }\n}\n\n")
	b.WriteString("Fields:\n")
	for _, n := range names {
		b.WriteString("- \"" + n + "\": string | null\n")
	}
	b.WriteString("\nEvidence rules:\n")
	b.WriteString("- evidence must be an exact quote from the document.\n")
	b.WriteString("- if missing, set value and evidence to null.\n")
	return b.String()
}

// scriptedGovernorDecision picks the first candidate from the payload
// in the governor's user message.
func scriptedGovernorDecision(user string) string {
	after := user
	if idx := strings.Index(user, "CANDIDATES"); idx != -1 {
		after = user[idx:]
	}
	champion := "unknown_candidate"
	if v, err := jsonx.Loose(after); err == nil {
		if list, ok := v.([]any); ok && len(list) > 0 {
			if first, ok := list[0].(map[string]any); ok {
				if id, ok := first["candidate_id"].(string); ok && id != "" {
					champion = id
				}
			}
		}
	}
	return marshal(map[string]any{
		"champion_candidate_id": champion,
		"rationale":             "simulation picks first",
		"next_improvements":     []string{},
	})
}

func marshal(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
