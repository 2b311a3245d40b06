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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// =============================================================================
// HTTP CLIENT
// =============================================================================

// apiClient is a thin HTTP client for the timeclock API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// newAPIClient builds a client from the environment.
//
// TIMECLOCK_URL overrides the server address (default
// http://localhost:12240). FLOOROPS_TOKEN, when set, is sent as a
// bearer token.
func newAPIClient() *apiClient {
	baseURL := os.Getenv("TIMECLOCK_URL")
	if baseURL == "" {
		baseURL = "http://localhost:12240"
	}
	return &apiClient{
		baseURL: baseURL,
		token:   os.Getenv("FLOOROPS_TOKEN"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// do issues a request and decodes the JSON response into out (when out is
// non-nil). Non-2xx responses are returned as errors carrying the server's
// error message.
func (c *apiClient) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// printJSON pretty-prints a decoded response to stdout.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(data))
}
