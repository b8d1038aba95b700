package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"resto-pos/models"
)

// OrderQueryService is the REST boundary the synchronizer pulls truth from.
// All three calls are idempotent as observed effects.
type OrderQueryService interface {
	List(ctx context.Context, status *models.Status) ([]models.Order, error)
	GetByCode(ctx context.Context, code string) (models.Order, error)
	SetStatus(ctx context.Context, id int, status *models.Status, payment *models.PaymentStatus) (models.Order, error)
}

// OrderService talks to the order backend over HTTP. Every request carries a
// bounded timeout; timeout, transport failure, and non-2xx responses all
// surface as *models.TransportError and never touch the store.
type OrderService struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

func NewOrderService(baseURL string, timeout time.Duration) *OrderService {
	return &OrderService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SetToken installs the bearer token attached to subsequent requests.
func (s *OrderService) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *OrderService) List(ctx context.Context, status *models.Status) ([]models.Order, error) {
	endpoint := s.baseURL + "/orders"
	if status != nil {
		endpoint += "?status=" + url.QueryEscape(string(*status))
	}

	var envelope struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    []models.Order `json:"data"`
	}
	if err := s.do(ctx, "list", http.MethodGet, endpoint, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return []models.Order{}, nil
	}
	return envelope.Data, nil
}

func (s *OrderService) GetByCode(ctx context.Context, code string) (models.Order, error) {
	endpoint := s.baseURL + "/orders/code/" + url.PathEscape(code)

	var envelope struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Data    models.Order `json:"data"`
	}
	if err := s.do(ctx, "get by code", http.MethodGet, endpoint, nil, &envelope); err != nil {
		return models.Order{}, err
	}
	return envelope.Data, nil
}

func (s *OrderService) SetStatus(ctx context.Context, id int, status *models.Status, payment *models.PaymentStatus) (models.Order, error) {
	endpoint := fmt.Sprintf("%s/orders/%d/status", s.baseURL, id)
	body := models.SetStatusRequest{Status: status, PaymentStatus: payment}

	var envelope struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Data    models.Order `json:"data"`
	}
	if err := s.do(ctx, "set status", http.MethodPatch, endpoint, body, &envelope); err != nil {
		return models.Order{}, err
	}
	return envelope.Data, nil
}

func (s *OrderService) do(ctx context.Context, op, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &models.TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &models.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &models.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.TransportError{Op: op, StatusCode: resp.StatusCode, Err: readFailure(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// readFailure extracts the backend's error envelope message when present.
func readFailure(resp *http.Response) error {
	var failure models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Message != "" {
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s: %w", failure.Message, models.ErrOrderNotFound)
		}
		return fmt.Errorf("%s", failure.Message)
	}
	if resp.StatusCode == http.StatusNotFound {
		return models.ErrOrderNotFound
	}
	return fmt.Errorf("unexpected status %s", resp.Status)
}
