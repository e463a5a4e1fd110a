package api

import (
	"fmt"
)

// New creates a Client from configuration. The transport is wrapped with
// retry and logging middleware: caller → retry → logging → base. A nil
// log disables request logging.
func New(cfg Config, log RequestLog) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := NewHTTPDoer(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("initializing http transport: %w", err)
	}

	var d Doer = base
	if log != nil {
		d = WithLogging(d, log)
	}
	d = WithRetry(d, cfg.Retry)

	return NewClient(d), nil
}
