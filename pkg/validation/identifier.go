// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided identifiers that end up
// in filesystem paths (artifact directories, goal memory directories). Using
// these validators prevents path traversal via crafted goal or exhibit ids.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern matches valid goal and exhibit identifiers.
// Allows: lowercase letters, digits, dots, underscores, hyphens.
// Must start alphanumeric. Max length: 128 characters.
var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._\-]{0,127}$`)

// ValidateGoalID validates a goal identifier before it is used as a
// directory name under the memory root.
//
// Valid ids:
//   - 1-128 characters
//   - lowercase letters a-z, digits 0-9
//   - dots (.), underscores (_), hyphens (-) after the first character
//
// Returns an error if the id is invalid.
//
// Example:
//
//	if err := validation.ValidateGoalID(goalID); err != nil {
//	    return nil, fmt.Errorf("invalid goal id: %w", err)
//	}
//	// Safe to join into a filesystem path
func ValidateGoalID(id string) error {
	if id == "" {
		return fmt.Errorf("goal id cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid goal id: %q (must be 1-128 lowercase alphanumeric chars, dots, underscores, or hyphens)", id)
	}
	return nil
}

// ValidateExhibitID validates an exhibit identifier before it is used
// as a directory name under the artifacts root.
func ValidateExhibitID(id string) error {
	if id == "" {
		return fmt.Errorf("exhibit id cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid exhibit id: %q (must be 1-128 lowercase alphanumeric chars, dots, underscores, or hyphens)", id)
	}
	return nil
}

// SanitizeID normalizes free text into a valid identifier fragment.
// Returns the lowercased, hyphen-joined form, or an error when nothing
// valid remains.
//
// Use this when deriving an id from user input rather than rejecting it:
//
//	safeID, err := validation.SanitizeID(userInput)
//	if err != nil {
//	    return err
//	}
func SanitizeID(raw string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	id := strings.Trim(b.String(), "-")
	for strings.Contains(id, "--") {
		id = strings.ReplaceAll(id, "--", "-")
	}
	if len(id) > 128 {
		id = strings.Trim(id[:128], "-")
	}
	if err := ValidateGoalID(id); err != nil {
		return "", fmt.Errorf("cannot derive a valid id from %q: %w", raw, err)
	}
	return id, nil
}
