package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/dashwatch/internal/models"
	"github.com/dashwatch/internal/monitor"
	"github.com/dashwatch/internal/notify"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// DashboardInfo is one entry of the dashboard listing.
type DashboardInfo struct {
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Alerts      int        `json:"alerts"`
	RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
}

// NewClient builds a client for baseURL, falling back to DASHWATCH_API_URL
// and then to http://localhost:8080.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("DASHWATCH_API_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) ListDashboards() ([]DashboardInfo, error) {
	var dashboards []DashboardInfo
	if err := c.get("/api/v1/dashboards", nil, &dashboards); err != nil {
		return nil, err
	}
	return dashboards, nil
}

func (c *Client) GetDashboard(name string) (*monitor.Snapshot, error) {
	var snap monitor.Snapshot
	if err := c.get("/api/v1/dashboards/"+name, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) RefreshDashboard(name string) (*monitor.Snapshot, error) {
	var snap monitor.Snapshot
	if err := c.send(http.MethodPost, "/api/v1/dashboards/"+name+"/refresh", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) ListRules(enabled *bool) ([]models.AlertRule, error) {
	query := url.Values{}
	if enabled != nil {
		query.Set("enabled", strconv.FormatBool(*enabled))
	}

	var rules []models.AlertRule
	if err := c.get("/api/v1/rules", query, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *Client) GetRule(id uint) (*models.AlertRule, error) {
	var rule models.AlertRule
	if err := c.get(fmt.Sprintf("/api/v1/rules/%d", id), nil, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (c *Client) CreateRule(rule *models.AlertRule) (*models.AlertRule, error) {
	var created models.AlertRule
	if err := c.send(http.MethodPost, "/api/v1/rules", rule, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteRule(id uint) error {
	return c.send(http.MethodDelete, fmt.Sprintf("/api/v1/rules/%d", id), nil, nil)
}

func (c *Client) EnableRule(id uint) error {
	return c.send(http.MethodPut, fmt.Sprintf("/api/v1/rules/%d/enable", id), nil, nil)
}

func (c *Client) DisableRule(id uint) error {
	return c.send(http.MethodPut, fmt.Sprintf("/api/v1/rules/%d/disable", id), nil, nil)
}

func (c *Client) ImportRules(rules []models.AlertRule) error {
	return c.send(http.MethodPost, "/api/v1/rules/import", rules, nil)
}

func (c *Client) ExportRules() ([]models.AlertRule, error) {
	var rules []models.AlertRule
	if err := c.get("/api/v1/rules/export", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *Client) ListNotifications() ([]notify.Toast, error) {
	var toasts []notify.Toast
	if err := c.get("/api/v1/notifications", nil, &toasts); err != nil {
		return nil, err
	}
	return toasts, nil
}

func (c *Client) DismissNotification(id string) error {
	return c.send(http.MethodDelete, "/api/v1/notifications/"+id, nil, nil)
}

func (c *Client) get(endpoint string, query url.Values, v interface{}) error {
	resp, err := c.doRequest(http.MethodGet, endpoint, query, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) send(method, endpoint string, data, v interface{}) error {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	resp, err := c.doRequest(method, endpoint, nil, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

func (c *Client) doRequest(method, endpoint string, query url.Values, body io.Reader) (*http.Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = path.Join(u.Path, endpoint)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("API error: %s", errResp.Error)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return resp, nil
}
