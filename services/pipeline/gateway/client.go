// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gateway is the chat transport boundary of the pipeline.
//
// The orchestrator only ever needs one blocking call: send a message
// list, get the model's text back. Streaming, provider retries, and
// model selection are transport concerns that live behind the Client
// interface; swapping the backend never touches the orchestration
// core.
package gateway

import "context"

// Message roles. Mirrors the OpenAI chat convention.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends a chat to a language model and returns its text output.
//
// Implementations must be safe for concurrent use; the runner may
// issue calls from several candidate evaluations at once.
type Client interface {
	SendChat(ctx context.Context, messages []Message) (string, error)
}
