package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"moni-chat/internal/infrastructure/profile/port"
)

// HTTPDirectory looks avatars up on the finance app's profile REST backend.
// Failures are plain errors; the avatar chain decides what to do with them.
type HTTPDirectory struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// NewHTTPDirectoryFromEnv constructs a directory from PROFILE_API_URL and the
// optional PROFILE_API_TOKEN service credential.
func NewHTTPDirectoryFromEnv() (*HTTPDirectory, error) {
	base := strings.TrimRight(strings.TrimSpace(os.Getenv("PROFILE_API_URL")), "/")
	if base == "" {
		return nil, errors.New("profile: PROFILE_API_URL environment variable is not set")
	}
	return &HTTPDirectory{
		baseURL:  base,
		apiToken: os.Getenv("PROFILE_API_TOKEN"),
		client:   &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// Ensure interface compliance at compile time
var _ port.Directory = (*HTTPDirectory)(nil)

// profileResponse mirrors the subset of the profile payload this service
// reads; unknown fields are ignored.
type profileResponse struct {
	Avatar string `json:"avatar"`
}

func (d *HTTPDirectory) AvatarURL(ctx context.Context, userID string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s/profile/", d.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("profile: build request: %w", err)
	}
	if d.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiToken)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("profile: lookup %s: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile: lookup %s: unexpected status %d", userID, resp.StatusCode)
	}

	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("profile: decode response: %w", err)
	}
	return body.Avatar, nil
}
