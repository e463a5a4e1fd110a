package api

import (
	"context"
	"fmt"

	"golang.org/x/mod/semver"
)

// HealthPath is the unauthenticated liveness endpoint.
const HealthPath = "/health"

// SupportedMajor is the API major version this client speaks.
const SupportedMajor = "v1"

// Health is the server's liveness report.
type Health struct {
	Status     string `json:"status"`
	APIVersion string `json:"api_version"`
}

// Health queries the liveness endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.GetJSON(WithPurpose(ctx, "health"), HealthPath, nil, &h); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &h, nil
}

// CheckCompatible reports whether the server's API version can be used by
// this client. Servers that do not announce a version are accepted.
func (h *Health) CheckCompatible() error {
	if h.APIVersion == "" {
		return nil
	}
	v := h.APIVersion
	if v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("server reports invalid api version %q", h.APIVersion)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("server api %s is not compatible with client api %s", major, SupportedMajor)
	}
	return nil
}
