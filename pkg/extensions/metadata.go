// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

// Metadata stores arbitrary key-value pairs carried with an identity.
//
// Using a defined type rather than map[string]any provides clearer intent
// in signatures and room for type-safe accessors.
//
// # Thread Safety
//
// Metadata is NOT thread-safe. Do not share a single Metadata instance
// across goroutines without external synchronization.
type Metadata map[string]any

// NewMetadata creates an empty Metadata instance.
func NewMetadata() Metadata {
	return make(Metadata)
}

// Set adds or updates a key-value pair and returns the Metadata for
// chaining.
//
//	meta := extensions.NewMetadata().
//	    Set("shift", "night").
//	    Set("site", "plant-2")
func (m Metadata) Set(key string, value any) Metadata {
	m[key] = value
	return m
}

// GetString returns the string value for key, reporting whether the key
// existed and held a string.
func (m Metadata) GetString(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the bool value for key, reporting whether the key
// existed and held a bool.
func (m Metadata) GetBool(key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
