package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// SupabaseLogoutClient ends a session at the Supabase auth server
type SupabaseLogoutClient struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// NewSupabaseLogoutClient creates a client for the project at baseURL.
// Requests are traced through otelhttp.
func NewSupabaseLogoutClient(baseURL, anonKey string) *SupabaseLogoutClient {
	return &SupabaseLogoutClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SignOut revokes the refresh tokens of the session that issued accessToken.
// An already ended session (401, 403 or 404) counts as success.
func (c *SupabaseLogoutClient) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout?scope=local", nil)
	if err != nil {
		return fmt.Errorf("supabase: failed to build logout request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: logout request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent,
		http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("supabase: logout returned status %d", resp.StatusCode)
	}
}
