// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"testing"
)

// ============================================================================
// NopAuthProvider Tests
// ============================================================================

func TestNopAuthProvider_Validate(t *testing.T) {
	provider := &NopAuthProvider{}

	info, err := provider.Validate(context.Background(), "any-token")
	if err != nil {
		t.Fatalf("NopAuthProvider.Validate should never fail: %v", err)
	}
	if info.UserID != "local-user" {
		t.Errorf("expected local-user, got %q", info.UserID)
	}
	if !info.HasRole(RoleAdmin) {
		t.Error("nop provider identity should carry RoleAdmin")
	}
}

func TestNopAuthProvider_EmptyToken(t *testing.T) {
	provider := &NopAuthProvider{}

	// Intentional: local single-user deployments run without tokens.
	info, err := provider.Validate(context.Background(), "")
	if err != nil {
		t.Fatalf("empty token should still validate: %v", err)
	}
	if info.UserID == "" {
		t.Error("UserID must never be empty")
	}
}

// ============================================================================
// AuthInfo Tests
// ============================================================================

func TestAuthInfo_HasRole(t *testing.T) {
	info := &AuthInfo{
		UserID: "w-17",
		Roles:  []string{RoleWorker},
	}

	if !info.HasRole(RoleWorker) {
		t.Error("expected RoleWorker")
	}
	if info.HasRole(RoleAdmin) {
		t.Error("should not have RoleAdmin")
	}

	empty := &AuthInfo{UserID: "w-18"}
	if empty.HasRole(RoleWorker) {
		t.Error("nil roles should match nothing")
	}
}

// ============================================================================
// Metadata Tests
// ============================================================================

func TestMetadata_SetAndGet(t *testing.T) {
	meta := NewMetadata().
		Set("shift", "night").
		Set("certified", true)

	if s, ok := meta.GetString("shift"); !ok || s != "night" {
		t.Errorf("GetString(shift) = %q, %v", s, ok)
	}
	if b, ok := meta.GetBool("certified"); !ok || !b {
		t.Errorf("GetBool(certified) = %v, %v", b, ok)
	}
}

func TestMetadata_MissingAndWrongType(t *testing.T) {
	meta := NewMetadata().Set("shift", 3)

	if _, ok := meta.GetString("absent"); ok {
		t.Error("missing key should report ok=false")
	}
	if _, ok := meta.GetString("shift"); ok {
		t.Error("non-string value should report ok=false")
	}
	if _, ok := meta.GetBool("shift"); ok {
		t.Error("non-bool value should report ok=false")
	}
}
