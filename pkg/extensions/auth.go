// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines the interfaces where deployment-specific
// implementations plug into the FloorOps services.
//
// The open source build ships no-op implementations that authenticate
// every request as a local admin, so the service runs without any
// identity infrastructure. Site deployments implement AuthProvider
// against their identity provider (badge system, Okta, Azure AD) and
// inject it at startup.
package extensions

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when authentication or authorization fails.
// Implementations should wrap this error with additional context.
var ErrUnauthorized = errors.New("unauthorized")

// Role names with meaning to the timeclock service.
const (
	// RoleAdmin may act on other workers' timers (supervisor stop).
	RoleAdmin = "admin"

	// RoleWorker may operate only their own timers.
	RoleWorker = "worker"
)

// AuthInfo contains identity information returned after successful
// authentication.
//
// Required fields (always populated):
//   - UserID: Unique identifier for the worker
//
// Optional fields (may be empty):
//   - DisplayName: Human-readable name, used as the denormalized
//     user_name on timer records
//   - Roles: Role memberships for authorization decisions
//   - Metadata: Arbitrary claims from the identity provider
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated worker.
	// This is the only required field and must never be empty.
	UserID string

	// DisplayName is the worker's human-readable name. Never
	// authoritative; timer records cache it for display only.
	DisplayName string

	// Roles contains the worker's role memberships.
	Roles []string

	// Metadata holds additional claims from the identity provider.
	Metadata Metadata
}

// HasRole checks if the user has a specific role.
//
//	if !authInfo.HasRole(extensions.RoleAdmin) {
//	    return ErrUnauthorized
//	}
func (a *AuthInfo) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthProvider validates authentication tokens and returns user identity.
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// # Open Source Behavior
//
// The default NopAuthProvider always returns a valid "local-user" with
// admin privileges, so the service functions without authentication
// infrastructure.
//
// # Site Implementation
//
// Deployments validate tokens against their identity provider:
//
//	func (p *BadgeAuthProvider) Validate(ctx context.Context, token string) (*AuthInfo, error) {
//	    badge, err := p.reader.Verify(ctx, token)
//	    if err != nil {
//	        return nil, fmt.Errorf("badge validation failed: %w", extensions.ErrUnauthorized)
//	    }
//	    return &extensions.AuthInfo{
//	        UserID:      badge.EmployeeID,
//	        DisplayName: badge.Name,
//	        Roles:       badge.Roles,
//	    }, nil
//	}
type AuthProvider interface {
	// Validate checks if the token is valid and returns the user's identity.
	//
	// Returns ErrUnauthorized (or wrapped) if invalid, other errors for
	// infrastructure failures.
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider is the default authentication provider for open source.
//
// It always returns a valid local user with admin privileges, enabling
// the service to function without any authentication infrastructure.
//
// Thread-safe: This implementation has no mutable state.
type NopAuthProvider struct{}

// Validate always returns a valid local user with admin privileges.
//
// The token parameter is ignored - any value (including empty string)
// results in successful authentication. This is intentional for local
// single-user deployments.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID:      "local-user",
		DisplayName: "Local User",
		Roles:       []string{RoleAdmin},
	}, nil
}

// Compile-time interface compliance check.
var _ AuthProvider = (*NopAuthProvider)(nil)
