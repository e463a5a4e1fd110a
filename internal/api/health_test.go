package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_CheckCompatible(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"", false},
		{"v1.0.0", false},
		{"1.4.2", false},
		{"v1.9.0-rc.1", false},
		{"v2.0.0", true},
		{"banana", true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := (&Health{APIVersion: tt.version}).CheckCompatible()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_Health(t *testing.T) {
	doer := NewMockDoer(MockResponse{Status: http.StatusOK, Body: []byte(`{"status":"ok","api_version":"v1.2.0"}`)})
	c := NewClient(doer)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "v1.2.0", h.APIVersion)
	last, ok := doer.LastCall()
	require.True(t, ok)
	assert.Equal(t, HealthPath, last.Path)
}
