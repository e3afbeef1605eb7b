// Package dataservice implements the HTTP client for the staff data service,
// the circuit-breaker wrapper around it, the liveness probe loop, and an
// optional redis roster cache.
package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"

	"github.com/shiftwork/scheduling-service/internal/domain/model"
	apperrors "github.com/shiftwork/scheduling-service/internal/errors"
)

const (
	requestTimeout = 10 * time.Second
	retryAttempts  = 3
	retryBaseDelay = 100 * time.Millisecond
)

// apiResponse is the JSON envelope the data service wraps every payload in.
type apiResponse[T any] struct {
	Success bool    `json:"success"`
	Data    *T      `json:"data"`
	Error   *string `json:"error"`
}

// Client fetches rosters from the data service. Transport-level failures are
// retried with exponential backoff; HTTP responses with a status code are
// terminal and never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	propagator propagation.TextMapPropagator
	logger     *slog.Logger
}

// NewClient builds a Client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		propagator: propagation.TraceContext{},
		logger:     logger.With("component", "data_service_client"),
	}
}

// GetResolvedMembers fetches the flattened staff list of a group and its
// transitive sub-groups.
func (c *Client) GetResolvedMembers(ctx context.Context, groupID uuid.UUID) ([]model.Staff, error) {
	url := fmt.Sprintf("%s/api/v1/groups/%s/resolved-members", c.baseURL, groupID)

	var staff []model.Staff
	err := retry.Do(
		func() error {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if reqErr != nil {
				return retry.Unrecoverable(reqErr)
			}
			c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

			resp, doErr := c.httpClient.Do(req)
			if doErr != nil {
				c.logger.WarnContext(ctx, "roster fetch attempt failed", "group_id", groupID, "err", doErr)
				return doErr
			}
			defer func() {
				_ = resp.Body.Close()
			}()

			if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
				return retry.Unrecoverable(
					apperrors.DataServicef("data service returned status %d", resp.StatusCode))
			}

			var envelope apiResponse[[]model.Staff]
			if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr != nil {
				return retry.Unrecoverable(
					apperrors.DataServicef("malformed data service response: %v", decodeErr))
			}
			if !envelope.Success || envelope.Data == nil {
				msg := "no data in response"
				if envelope.Error != nil {
					msg = *envelope.Error
				}
				return retry.Unrecoverable(apperrors.DataServicef("data service error: %s", msg))
			}

			staff = *envelope.Data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.DataServiceUnavailable(err)
	}
	return staff, nil
}

// Ping probes the liveness endpoint. Any 2xx response counts as alive; the
// caller supplies its own deadline through ctx.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/headpat", nil)
	if err != nil {
		return err
	}
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("liveness probe returned status %d", resp.StatusCode)
	}
	return nil
}
