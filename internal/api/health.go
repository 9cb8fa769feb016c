package api

import (
	"context"
	"fmt"
	"net/http"
)

// healthPath is the liveness endpoint.
const healthPath = "/health"

// Health checks the liveness endpoint once.
// It returns nil for any 2xx status, an error wrapping ErrNotReady for other
// statuses and an error wrapping ErrUnreachable when no response arrives.
// The response body is ignored.
func (c *Client) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, healthPath, nil, "")
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return fmt.Errorf("%w: status %d", ErrNotReady, status)
	}
	return nil
}
