package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/observability"
	apperrors "github.com/telecare/clinic-dashboard/backend/pkg/errors"
	"github.com/telecare/clinic-dashboard/backend/pkg/retry"
)

// HostedAdapter implements the Gateway against a hosted
// backend-as-a-service speaking PostgREST conventions for table
// access and a password-grant token endpoint for auth.
//
// Idempotent reads (Query, GetCurrentUser) are retried with bounded
// backoff; writes are issued exactly once.
type HostedAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	metrics *observability.Metrics
}

// NewHostedAdapter creates a gateway adapter for the hosted backend.
// metrics may be nil.
func NewHostedAdapter(baseURL, apiKey string, metrics *observability.Metrics) *HostedAdapter {
	return &HostedAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		metrics: metrics,
	}
}

// Query returns all rows of table matching the filters as a JSON array.
func (a *HostedAdapter) Query(ctx context.Context, table string, filters []providers.Filter, order *providers.Order) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("select", "*")
	for _, f := range filters {
		values.Set(f.Column, fmt.Sprintf("%s.%s", f.Op, f.Value))
	}
	if order != nil {
		direction := "desc"
		if order.Ascending {
			direction = "asc"
		}
		values.Set("order", fmt.Sprintf("%s.%s", order.Column, direction))
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", a.baseURL, table, values.Encode())

	var rows json.RawMessage
	err := retry.Do(ctx, retry.ReadConfig(), func() error {
		body, err := a.do(ctx, http.MethodGet, endpoint, nil, a.apiKey, http.StatusOK)
		if err != nil {
			return err
		}
		rows = body
		return nil
	})
	if err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("failed to query %s", table), err)
	}
	return rows, nil
}

// Insert stores row and returns the inserted rows with assigned ids.
func (a *HostedAdapter) Insert(ctx context.Context, table string, row any) (json.RawMessage, error) {
	payload, err := json.Marshal([]any{row})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode row", err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", a.baseURL, table)
	body, err := a.do(ctx, http.MethodPost, endpoint, payload, a.apiKey, http.StatusCreated)
	if err != nil {
		return nil, apperrors.NewExternalError(fmt.Sprintf("failed to insert into %s", table), err)
	}
	return body, nil
}

// Delete removes the row with the given id.
func (a *HostedAdapter) Delete(ctx context.Context, table string, id int64) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?id=eq.%d", a.baseURL, table, id)
	if _, err := a.do(ctx, http.MethodDelete, endpoint, nil, a.apiKey, http.StatusNoContent); err != nil {
		return apperrors.NewExternalError(fmt.Sprintf("failed to delete from %s", table), err)
	}
	return nil
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        *gatewayUser `json:"user"`
}

type gatewayUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignInWithPassword exchanges credentials for a user and token.
func (a *HostedAdapter) SignInWithPassword(ctx context.Context, email, password string) (*entities.User, string, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to encode credentials", err)
	}

	endpoint := fmt.Sprintf("%s/auth/v1/token?grant_type=password", a.baseURL)
	body, err := a.do(ctx, http.MethodPost, endpoint, payload, a.apiKey, http.StatusOK)
	if err != nil {
		return nil, "", apperrors.NewUnauthorizedError("invalid email or password")
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, "", apperrors.NewExternalError("malformed sign-in response", err)
	}
	if token.AccessToken == "" || token.User == nil {
		return nil, "", apperrors.NewExternalError("sign-in response missing token or user", nil)
	}

	return &entities.User{ID: token.User.ID, Email: token.User.Email}, token.AccessToken, nil
}

// SignOut revokes the remote session for the token.
func (a *HostedAdapter) SignOut(ctx context.Context, accessToken string) error {
	endpoint := fmt.Sprintf("%s/auth/v1/logout", a.baseURL)
	if _, err := a.do(ctx, http.MethodPost, endpoint, nil, accessToken, http.StatusNoContent); err != nil {
		return apperrors.NewExternalError("failed to sign out", err)
	}
	return nil
}

// GetCurrentUser resolves the token's user; nil without error when
// the gateway no longer recognizes the token.
func (a *HostedAdapter) GetCurrentUser(ctx context.Context, accessToken string) (*entities.User, error) {
	endpoint := fmt.Sprintf("%s/auth/v1/user", a.baseURL)

	var user *entities.User
	err := retry.Do(ctx, retry.ReadConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		a.addHeaders(req, accessToken)

		resp, err := a.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			var u gatewayUser
			if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
				return err
			}
			user = &entities.User{ID: u.ID, Email: u.Email}
			return nil
		case http.StatusUnauthorized, http.StatusForbidden:
			user = nil
			return nil
		default:
			return fmt.Errorf("gateway error: status %d", resp.StatusCode)
		}
	})
	if err != nil {
		return nil, apperrors.NewExternalError("failed to resolve current user", err)
	}
	return user, nil
}

// do issues one request and returns the response body, converting
// any non-expected status into an error carrying the gateway's
// message.
func (a *HostedAdapter) do(ctx context.Context, method, endpoint string, payload []byte, bearer string, wantStatus int) ([]byte, error) {
	start := time.Now()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	a.addHeaders(req, bearer)
	if method == http.MethodPost && strings.Contains(endpoint, "/rest/v1/") {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if a.metrics != nil {
		observability.RecordGatewayMetric(ctx, a.metrics, fmt.Sprintf("%s %s", method, req.URL.Path), time.Since(start))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != wantStatus {
		// Writes sometimes come back 200 instead of 201/204
		// depending on the Prefer header handling.
		if resp.StatusCode == http.StatusOK && (wantStatus == http.StatusCreated || wantStatus == http.StatusNoContent) {
			return body, nil
		}
		return nil, fmt.Errorf("gateway error: status %d: %s", resp.StatusCode, gatewayMessage(body))
	}

	return body, nil
}

func (a *HostedAdapter) addHeaders(req *http.Request, bearer string) {
	req.Header.Set("apikey", a.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))
	req.Header.Set("Content-Type", "application/json")
}

// gatewayMessage extracts the human-readable message from a gateway
// error body, which differs between the rest and auth endpoints.
func gatewayMessage(body []byte) string {
	var parsed struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, m := range []string{parsed.Message, parsed.Msg, parsed.ErrorDescription} {
		if m != "" {
			return m
		}
	}
	return strings.TrimSpace(string(body))
}
