package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"resto-pos/models"
)

// AuthService obtains the staff bearer token from the backend.
type AuthService struct {
	baseURL string
	client  *http.Client
}

func NewAuthService(baseURL string, timeout time.Duration) *AuthService {
	return &AuthService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Login exchanges staff credentials for a JWT. The expiry is read from the
// token's own claims (unverified: the client holds no signing key) so the
// caller can re-login before it lapses.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	payload, err := json.Marshal(models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", time.Time{}, &models.TransportError{Op: "login", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", time.Time{}, &models.TransportError{Op: "login", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", time.Time{}, &models.TransportError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, &models.TransportError{Op: "login", StatusCode: resp.StatusCode, Err: readFailure(resp)}
	}

	var envelope struct {
		Success bool             `json:"success"`
		Message string           `json:"message"`
		Data    models.LoginData `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", time.Time{}, &models.TransportError{Op: "login", Err: fmt.Errorf("decode response: %w", err)}
	}
	if envelope.Data.Token == "" {
		return "", time.Time{}, &models.TransportError{Op: "login", Err: fmt.Errorf("backend returned no token")}
	}

	return envelope.Data.Token, tokenExpiry(envelope.Data.Token), nil
}

func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
