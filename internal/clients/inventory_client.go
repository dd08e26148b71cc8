package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/config"
	"github.com/staybook/reservation-backend/internal/metrics"
	"github.com/staybook/reservation-backend/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ErrRemoteUnavailable is returned when the inventory service could not be
// reached or kept failing with 5xx after all retries
var ErrRemoteUnavailable = errors.New("inventory service unavailable")

const maxResponseBytes = 1 << 20

// StatusError is a definitive non-2xx answer from the inventory service
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inventory %s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// TokenSource mints a bearer token when the call has no caller token,
// e.g. for background jobs
type TokenSource func() (string, error)

type tokenKey struct{}

// ContextWithToken attaches the caller's bearer token for forwarding
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// InventoryClient calls the inventory service over HTTP
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	tokens     TokenSource
	tracer     trace.Tracer
	group      singleflight.Group
	logger     *logrus.Logger
}

// NewInventoryClient creates a new InventoryClient. tokens may be nil.
func NewInventoryClient(cfg config.InventoryConfig, tokens TokenSource, logger *logrus.Logger) *InventoryClient {
	// No client-wide Timeout; each attempt is bounded by its context
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &InventoryClient{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
		tokens:     tokens,
		tracer:     otel.Tracer("staybook/inventory-client"),
		logger:     logger,
	}
}

type confirmPayload struct {
	RequestID uuid.UUID   `json:"requestId"`
	StartDate models.Date `json:"startDate"`
	EndDate   models.Date `json:"endDate"`
}

// ConfirmAvailability asks the ledger to reserve roomID for the range
func (c *InventoryClient) ConfirmAvailability(ctx context.Context, roomID, requestID uuid.UUID, start, end models.Date) (bool, error) {
	body, err := json.Marshal(confirmPayload{RequestID: requestID, StartDate: start, EndDate: end})
	if err != nil {
		return false, fmt.Errorf("failed to encode confirm payload: %w", err)
	}

	path := fmt.Sprintf("/api/v1/rooms/%s/confirm-availability", roomID)
	status, respBody, err := c.do(ctx, "confirm", http.MethodPost, path, body)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, &StatusError{Operation: "confirm", StatusCode: status, Body: string(respBody)}
	}

	var confirmed bool
	if err := json.Unmarshal(respBody, &confirmed); err != nil {
		return false, fmt.Errorf("malformed confirm response: %w", err)
	}
	return confirmed, nil
}

// Release asks the ledger to release the reservation for requestID
func (c *InventoryClient) Release(ctx context.Context, roomID, requestID uuid.UUID) error {
	path := fmt.Sprintf("/api/v1/rooms/%s/release/%s", roomID, requestID)
	status, respBody, err := c.do(ctx, "release", http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return &StatusError{Operation: "release", StatusCode: status, Body: string(respBody)}
	}
	return nil
}

// Recommend fetches rooms ordered by popularity. Concurrent callers share
// one in-flight request; each caller still stops waiting when its own ctx
// is done.
func (c *InventoryClient) Recommend(ctx context.Context) ([]models.Room, error) {
	// Keeps the first caller's token and trace but not its cancellation
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan("recommend", func() (interface{}, error) {
		return c.recommend(shared)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.Room), nil
	}
}

func (c *InventoryClient) recommend(ctx context.Context) ([]models.Room, error) {
	status, respBody, err := c.do(ctx, "recommend", http.MethodGet, "/api/v1/rooms/recommend", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{Operation: "recommend", StatusCode: status, Body: string(respBody)}
	}

	rooms := []models.Room{}
	if err := json.Unmarshal(respBody, &rooms); err != nil {
		return nil, fmt.Errorf("malformed recommend response: %w", err)
	}
	return rooms, nil
}

// GetReservation returns the ledger entry for requestID, or nil when the
// ledger has none
func (c *InventoryClient) GetReservation(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error) {
	path := fmt.Sprintf("/api/v1/rooms/reservations/%s", requestID)
	status, respBody, err := c.do(ctx, "get_reservation", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var reservation models.RoomReservation
		if err := json.Unmarshal(respBody, &reservation); err != nil {
			return nil, fmt.Errorf("malformed reservation response: %w", err)
		}
		return &reservation, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, &StatusError{Operation: "get_reservation", StatusCode: status, Body: string(respBody)}
	}
}

// do sends the request, retrying transport errors and 5xx answers.
// Any other status is returned to the caller as-is.
func (c *InventoryClient) do(ctx context.Context, op, method, path string, body []byte) (int, []byte, error) {
	ctx, span := c.tracer.Start(ctx, "inventory."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", c.baseURL+path),
	)

	startTime := time.Now()
	outcome := "error"
	defer func() {
		metrics.InventoryRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(startTime).Seconds())
	}()

	token, err := c.bearerToken(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, nil, fmt.Errorf("failed to obtain service token: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
			if ctx.Err() != nil {
				break
			}
		}

		status, respBody, err := c.attempt(ctx, method, path, body, token)
		if err == nil && status < 500 {
			outcome = "ok"
			span.SetAttributes(attribute.Int("http.status_code", status), attribute.Int("retry.count", attempt))
			return status, respBody, nil
		}
		if err == nil {
			err = &StatusError{Operation: op, StatusCode: status, Body: string(respBody)}
		}
		lastErr = err

		c.logger.WithFields(logrus.Fields{
			"operation": op,
			"attempt":   attempt + 1,
			"path":      path,
		}).WithError(err).Warn("Inventory call failed")
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return 0, nil, fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, op, lastErr)
}

func (c *InventoryClient) attempt(ctx context.Context, method, path string, body []byte, token string) (int, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(attemptCtx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func (c *InventoryClient) bearerToken(ctx context.Context) (string, error) {
	if token := tokenFromContext(ctx); token != "" {
		return token, nil
	}
	if c.tokens == nil {
		return "", nil
	}
	return c.tokens()
}
