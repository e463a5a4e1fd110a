package exercise

import (
	"context"
	"encoding/json"

	"github.com/wselearn/wse/internal/api"
)

// Remote is the API implementation backed by the HTTP client.
type Remote struct {
	client  *api.Client
	variant Variant
}

// NewRemote creates a Remote for variant. Fetched payloads are checked
// against a schema derived from the variant's keys.
func NewRemote(client *api.Client, v Variant) *Remote {
	return &Remote{client: client, variant: v.WithDefaults()}
}

// FetchTask posts params to path and returns the validated payload. An
// empty response body means no item matched and yields a nil payload.
func (r *Remote) FetchTask(ctx context.Context, path string, params Params) (Payload, error) {
	var raw json.RawMessage
	if err := r.client.PostJSON(api.WithPurpose(ctx, "exercise"), path, params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if err := validatePayload(r.variant, raw); err != nil {
		return nil, err
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &api.ErrInvalidPayload{Body: raw, Err: err}
	}
	return p, nil
}

// PostProgress posts update to path.
func (r *Remote) PostProgress(ctx context.Context, path string, update ProgressUpdate) error {
	return r.client.PostJSON(api.WithPurpose(ctx, "progress"), path, update, nil)
}
