package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"gatepass-client/internal/qr"
	"gatepass-client/internal/storage"
)

// Login exchanges credentials for a token and user snapshot.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginData, error) {
	body := map[string]string{"email": email, "password": password}

	var data LoginData
	err := c.do(ctx, http.MethodPost, "/auth/login", body, &data)
	if err != nil {
		// The remote side answers 400 for serializer rejections and
		// 401 for bad credentials; both mean the same thing here.
		if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrSessionExpired) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	return &data, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me fetches the identity behind the current token.
func (c *Client) Me(ctx context.Context) (*storage.User, error) {
	var user storage.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: identity response missing user id", ErrInvalidResponse)
	}
	return &user, nil
}

// Refresh exchanges a still-valid token for a new one.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var data refreshData
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &data); err != nil {
		return "", err
	}
	return data.Token, nil
}

// VerifyQR submits a scanned payload for remote verification. A 404 is
// a definitive negative answer, not an error: the subject is unknown.
func (c *Client) VerifyQR(ctx context.Context, payload qr.Payload) (*VerifyResult, error) {
	body := map[string]any{"qr_data": payload}

	var result VerifyResult
	err := c.do(ctx, http.MethodPost, "/verify-qr", body, &result)
	if errors.Is(err, ErrNotFound) {
		return &VerifyResult{Status: "invalid"}, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// LogVehicleEntry records a plate observation at the gate.
func (c *Client) LogVehicleEntry(ctx context.Context, req VehicleEntryRequest) (*VehicleEntryResult, error) {
	var result VehicleEntryResult
	if err := c.do(ctx, http.MethodPost, "/log-vehicle-entry", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DayScholars(ctx context.Context) ([]DayScholar, error) {
	var scholars []DayScholar
	if err := c.do(ctx, http.MethodGet, "/day-scholars", nil, &scholars); err != nil {
		return nil, err
	}
	for i := range scholars {
		if err := scholars[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	return scholars, nil
}

func (c *Client) ToggleDayScholar(ctx context.Context, userID string) (*DayScholar, error) {
	path := "/day-scholars/" + url.PathEscape(userID) + "/toggle"

	var scholar DayScholar
	if err := c.do(ctx, http.MethodPost, path, nil, &scholar); err != nil {
		return nil, err
	}
	return &scholar, nil
}

func (c *Client) GateLogs(ctx context.Context) ([]storage.GateLog, error) {
	var logs []storage.GateLog
	if err := c.do(ctx, http.MethodGet, "/logs", nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Assets lists the caller's registered assets for cache pulls.
func (c *Client) Assets(ctx context.Context) ([]storage.Asset, error) {
	var assets []storage.Asset
	if err := c.do(ctx, http.MethodGet, "/assets/", nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Vehicles lists the caller's registered vehicles for cache pulls.
func (c *Client) Vehicles(ctx context.Context) ([]storage.Vehicle, error) {
	var vehicles []storage.Vehicle
	if err := c.do(ctx, http.MethodGet, "/vehicles/", nil, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}
