package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/teamauth/pkg/onboarding"
)

var (
	errUnauthorized = errors.New("credential rejected, log in again")
	errNoProfile    = errors.New("profile not found")
)

// apiClient talks to the account endpoints with a bearer credential.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type profileUpdate struct {
	FullName *string `json:"fullName,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

func (c *apiClient) Profile(ctx context.Context) (onboarding.Profile, error) {
	return c.do(ctx, http.MethodGet, "/auth/profile", nil)
}

func (c *apiClient) UpdateProfile(ctx context.Context, upd profileUpdate) (onboarding.Profile, error) {
	return c.do(ctx, http.MethodPut, "/auth/profile", upd)
}

func (c *apiClient) CompleteProfile(ctx context.Context) (onboarding.Profile, error) {
	return c.do(ctx, http.MethodPost, "/auth/profile/complete", nil)
}

func (c *apiClient) do(ctx context.Context, method, path string, body any) (onboarding.Profile, error) {
	var p onboarding.Profile

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return p, err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return p, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return p, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return p, errUnauthorized
	case http.StatusNotFound:
		return p, errNoProfile
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return p, fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return p, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}
