package ntfy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/jon4hz/safebadge/internal/config"
)

// Client represents a ntfy notification client.
type Client struct {
	topic string
	http  *resty.Client
}

// Message represents a ntfy message.
type Message struct {
	Topic    string   `json:"topic"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority int      `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Click    string   `json:"click,omitempty"`
	Actions  []Action `json:"actions,omitempty"`
}

// Action represents a ntfy action button.
type Action struct {
	Action string `json:"action"`
	Label  string `json:"label"`
	URL    string `json:"url,omitempty"`
}

// Alert is the content of an emergency push.
type Alert struct {
	AlertID   uint
	UserName  string
	UserPhone string
	Latitude  float64
	Longitude float64
	Address   string
	Timestamp time.Time
}

// NewClient creates a new ntfy client.
func NewClient(cfg *config.NtfyConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.ServerURL).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Markdown", "yes")

	// Authentication: Token takes precedence over username/password
	if cfg.Token != "" {
		httpClient.SetAuthToken(cfg.Token)
	} else if cfg.Username != "" && cfg.Password != "" {
		httpClient.SetBasicAuth(cfg.Username, cfg.Password)
	}

	return &Client{
		topic: cfg.Topic,
		http:  httpClient,
	}
}

// SendMessage sends a message to ntfy.
func (c *Client) SendMessage(ctx context.Context, msg Message) error {
	if c.topic != "" {
		msg.Topic = c.topic
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/")
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	if resp.IsError() {
		body := resp.String()
		if len(body) > 256 {
			body = body[:256]
		}
		return fmt.Errorf("ntfy server returned status %d: %s", resp.StatusCode(), body)
	}

	log.Debug("Sent ntfy notification", "topic", msg.Topic, "title", msg.Title)
	return nil
}

// SendEmergencyAlert pushes an urgent notification about a raised alert.
func (c *Client) SendEmergencyAlert(ctx context.Context, alert Alert) error {
	var b strings.Builder
	fmt.Fprintf(&b, "**User:** %s\n", alert.UserName)
	if alert.UserPhone != "" {
		fmt.Fprintf(&b, "**Phone:** %s\n", alert.UserPhone)
	}
	fmt.Fprintf(&b, "**Location:** %s\n", alert.Address)
	fmt.Fprintf(&b, "**Time:** %s\n", alert.Timestamp.Format(time.RFC1123))

	msg := Message{
		Title:    fmt.Sprintf("Emergency alert #%d", alert.AlertID),
		Message:  b.String(),
		Priority: 5, // max priority
		Tags:     []string{"rotating_light", "safebadge", "emergency"},
		Click:    MapURL(alert.Latitude, alert.Longitude),
		Actions: []Action{
			{Action: "view", Label: "Open map", URL: MapURL(alert.Latitude, alert.Longitude)},
		},
	}

	return c.SendMessage(ctx, msg)
}

// MapURL links to the coordinates on OpenStreetMap.
func MapURL(latitude, longitude float64) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%f&mlon=%f#map=17/%f/%f", latitude, longitude, latitude, longitude)
}
