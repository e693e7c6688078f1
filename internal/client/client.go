// Package client talks to the safebadge REST API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jon4hz/safebadge/internal/api/models"
)

// APIError is a non-2xx response of the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Client is a safebadge API client. It never retries.
type Client struct {
	http *resty.Client
}

// New creates a client for the server at serverURL.
func New(serverURL string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(serverURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "safebadge-cli")

	return &Client{http: httpClient}
}

func do[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var (
		result T
		apiErr models.ErrorResponse
	)

	req := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: message}
	}
	return &result, nil
}

func idPath(prefix string, id uint, suffix string) string {
	return prefix + strconv.FormatUint(uint64(id), 10) + suffix
}

func (c *Client) GetUser(ctx context.Context) (*models.User, error) {
	return do[models.User](ctx, c, http.MethodGet, "/api/user", nil)
}

func (c *Client) GetSettings(ctx context.Context) (*models.DeviceSettings, error) {
	return do[models.DeviceSettings](ctx, c, http.MethodGet, "/api/device-settings", nil)
}

func (c *Client) UpdateSettings(ctx context.Context, update models.UpdateSettingsRequest) (*models.DeviceSettings, error) {
	return do[models.DeviceSettings](ctx, c, http.MethodPut, "/api/device-settings", update)
}

func (c *Client) UpdateBattery(ctx context.Context, level int) (*models.DeviceSettings, error) {
	return do[models.DeviceSettings](ctx, c, http.MethodPut, "/api/device-settings/battery", models.BatteryRequest{BatteryLevel: &level})
}

func (c *Client) UpdateLocation(ctx context.Context, latitude, longitude float64, address string) (*models.DeviceSettings, error) {
	return do[models.DeviceSettings](ctx, c, http.MethodPut, "/api/device-settings/location", models.LocationRequest{
		Latitude:  &latitude,
		Longitude: &longitude,
		Address:   address,
	})
}

func (c *Client) ListContacts(ctx context.Context) ([]models.Contact, error) {
	contacts, err := do[[]models.Contact](ctx, c, http.MethodGet, "/api/contacts", nil)
	if err != nil {
		return nil, err
	}
	return *contacts, nil
}

func (c *Client) CreateContact(ctx context.Context, contact models.CreateContactRequest) (*models.Contact, error) {
	return do[models.Contact](ctx, c, http.MethodPost, "/api/contacts", contact)
}

func (c *Client) UpdateContact(ctx context.Context, id uint, update models.UpdateContactRequest) (*models.Contact, error) {
	return do[models.Contact](ctx, c, http.MethodPut, idPath("/api/contacts/", id, ""), update)
}

func (c *Client) DeleteContact(ctx context.Context, id uint) error {
	_, err := do[models.SuccessResponse](ctx, c, http.MethodDelete, idPath("/api/contacts/", id, ""), nil)
	return err
}

func (c *Client) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	alerts, err := do[[]models.Alert](ctx, c, http.MethodGet, "/api/alerts", nil)
	if err != nil {
		return nil, err
	}
	return *alerts, nil
}

// CreateAlert raises an alert for the current user.
func (c *Client) CreateAlert(ctx context.Context) (*models.Alert, error) {
	return do[models.Alert](ctx, c, http.MethodPost, "/api/alerts", struct{}{})
}

func (c *Client) GetAlert(ctx context.Context, id uint) (*models.Alert, error) {
	return do[models.Alert](ctx, c, http.MethodGet, idPath("/api/alerts/", id, ""), nil)
}

// DeactivateAlert marks the alert as inactive.
func (c *Client) DeactivateAlert(ctx context.Context, id uint) (*models.Alert, error) {
	return do[models.Alert](ctx, c, http.MethodPut, idPath("/api/alerts/", id, "/deactivate"), nil)
}

func (c *Client) GetHistory(ctx context.Context, limit int) ([]models.HistoryEvent, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	events, err := do[[]models.HistoryEvent](ctx, c, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return *events, nil
}
