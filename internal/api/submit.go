package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nao1215/anonyreport/internal/model"
)

// submitPath is the collection endpoint.
const submitPath = "/api/submit"

// Submit posts the record to the collection endpoint exactly once.
//
// Any 2xx status is success and the body is ignored. A non-2xx status yields
// a *RejectedError carrying the response body verbatim. Failing to complete
// the exchange yields an error wrapping ErrUnreachable. Submit never retries.
func (c *Client) Submit(ctx context.Context, record model.SubmissionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, submitPath, bytes.NewReader(payload), "application/json")
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return &RejectedError{StatusCode: status, Body: string(body)}
	}
	return nil
}
