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
// This package contains validators for user-provided identifiers that end
// up in storage keys and log lines. Using these validators keeps key
// separators and control characters out of the key schema.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern matches worker, stage, and batch identifiers.
// Allows: letters, digits, dots, hyphens, underscores.
// Max length: 64 characters (covers badge IDs and UUID forms)
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// ValidateID validates an identifier destined for a storage key.
//
// Valid identifiers:
//   - 1-64 characters
//   - Letters A-Z a-z, digits 0-9
//   - Dots (.), hyphens (-), underscores (_) after the first character
//
// The field name is included in the error for caller context.
//
// Example:
//
//	if err := validation.ValidateID("user_id", req.UserID); err != nil {
//	    return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
//	}
func ValidateID(field, id string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}

	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("invalid %s: %q (must be 1-64 alphanumeric chars, dots, hyphens, or underscores)", field, id)
	}

	return nil
}

// ValidateIDs validates multiple identifiers for the same field.
// Returns an error listing all invalid values if any fail validation.
func ValidateIDs(field string, ids []string) error {
	var invalid []string
	for _, id := range ids {
		if err := ValidateID(field, id); err != nil {
			invalid = append(invalid, id)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid %s values: %s", field, strings.Join(invalid, ", "))
	}
	return nil
}
