// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(url string) *apiClient {
	return &apiClient{
		baseURL: url,
		token:   "test-token",
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func TestClientDo_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	var out map[string]string
	if err := newTestClient(srv.URL).do("GET", "/health", nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("expected status ok, got %q", out["status"])
	}
}

func TestClientDo_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["user_id"] != "w-17" {
			t.Errorf("expected user_id w-17, got %q", body["user_id"])
		}
		json.NewEncoder(w).Encode(map[string]int{"saved": 1})
	}))
	defer srv.Close()

	var out struct {
		Saved int `json:"saved"`
	}
	err := newTestClient(srv.URL).do("POST", "/v1/recovery/save",
		map[string]string{"user_id": "w-17"}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Saved != 1 {
		t.Errorf("expected saved=1, got %d", out.Saved)
	}
}

func TestClientDo_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "timer already active"})
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).do("POST", "/v1/timers/start", map[string]string{}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "409") || !strings.Contains(err.Error(), "timer already active") {
		t.Errorf("error should carry status and server message: %v", err)
	}
}

func TestClientDo_Unreachable(t *testing.T) {
	if err := newTestClient("http://127.0.0.1:1").do("GET", "/health", nil, nil); err == nil {
		t.Fatal("expected connection error")
	}
}
