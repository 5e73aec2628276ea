package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/mask"
)

const (
	DefaultRequestTimeout = 5 * time.Second

	checkPath    = "/check"
	settingsPath = "/settings"
	maxErrorBody = 1024
)

// StatusError reports a non-2xx engine response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	}

	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the inspection engine's HTTP API.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

type statusResponse struct {
	Image          *string  `json:"image"`
	FailureCount   int      `json:"failureCount"`
	AIStatus       string   `json:"aiStatus"`
	PrintingStatus string   `json:"printingStatus"`
	CPUTemperature *float64 `json:"cpuTemperature"`
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("engine base URL is empty")
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse engine base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("engine base URL must be http or https, got %q", parsed.Scheme)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultRequestTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "engine")
	}

	return &Client{
		baseURL:   base,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		client:    client,
		logger:    logger,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchStatus reads the live inspection status. A response without an image
// is treated as malformed.
func (c *Client) FetchStatus(ctx context.Context) (domain.StatusSnapshot, error) {
	var payload statusResponse
	if err := c.do(ctx, http.MethodGet, checkPath, nil, &payload); err != nil {
		return domain.StatusSnapshot{}, err
	}
	if payload.Image == nil {
		return domain.StatusSnapshot{}, errors.New("decode status response: missing image")
	}

	aiStatus := payload.AIStatus
	if aiStatus == "" {
		aiStatus = payload.PrintingStatus
	}
	snapshot := domain.StatusSnapshot{
		Image:        *payload.Image,
		FailureCount: payload.FailureCount,
		AIStatus:     aiStatus,
		ReceivedAt:   time.Now(),
	}
	if payload.CPUTemperature != nil {
		snapshot.CPUTemperature = *payload.CPUTemperature
	}

	return snapshot, nil
}

// LoadSettings reads the persisted settings. Fields the engine omits keep
// their defaults.
func (c *Client) LoadSettings(ctx context.Context) (domain.PluginSettings, error) {
	settings := domain.DefaultPluginSettings()
	if err := c.do(ctx, http.MethodGet, settingsPath, nil, &settings); err != nil {
		return domain.PluginSettings{}, err
	}
	if settings.MaskData == "" {
		settings.MaskData = mask.EmptyString()
	}
	c.logger.Debug("loaded settings from engine")

	return settings, nil
}

// SaveSettings posts the full settings object.
func (c *Client) SaveSettings(ctx context.Context, settings domain.PluginSettings) error {
	body, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, settingsPath, body, nil); err != nil {
		return err
	}
	c.logger.Debug("saved settings to engine", "bytes", len(body))

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	endpoint := c.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return &StatusError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}
