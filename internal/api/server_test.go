package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashwatch/internal/alert"
	"github.com/dashwatch/internal/dashboard"
	"github.com/dashwatch/internal/database"
	"github.com/dashwatch/internal/models"
	"github.com/dashwatch/internal/monitor"
	"github.com/dashwatch/internal/notify"
)

type testEnv struct {
	server *Server
	rules  *alert.RuleManager
	toasts *notify.ToastQueue
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	rules := alert.NewRuleManager(db)
	require.NoError(t, rules.CreateDefaultRules())

	toasts := notify.NewToastQueue(notify.DefaultToastCapacity)
	mon := monitor.New(monitor.Config{
		Registry: dashboard.NewRegistry(dashboard.Elyassi(nil), dashboard.MagicBot(nil)),
		Rules:    rules,
		Sink:     toasts,
	})

	return &testEnv{server: NewServer(mon, rules, toasts), rules: rules, toasts: toasts}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestDashboardEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/dashboards/elyassi", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap monitor.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.Alerts, 2)
	assert.Equal(t, "High workload for Alice", snap.Alerts[0].Title)

	w = env.do(t, http.MethodGet, "/api/v1/dashboards", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "elyassi", list[0]["name"])
	assert.EqualValues(t, 2, list[0]["alerts"])
	assert.Nil(t, list[1]["refreshed_at"])

	w = env.do(t, http.MethodPost, "/api/v1/dashboards/magicbot/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/dashboards/unknown/refresh", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluateEndpoint(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{
		"records": []models.Record{
			{ID: "1", Name: "Alice", Value: 45},
			{ID: "2", Name: "Bob", Value: 38},
		},
		"rule": map[string]interface{}{
			"operator":       ">",
			"threshold":      40,
			"title_template": "High workload for {{.Name}}",
		},
	}

	w := env.do(t, http.MethodPost, "/api/v1/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Alerts  []models.Alert `json:"alerts"`
		Summary struct {
			Records int `json:"records"`
			Alerts  int `json:"alerts"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "High workload for Alice", resp.Alerts[0].Title)
	assert.Equal(t, 2, resp.Summary.Records)
	assert.Empty(t, env.toasts.List())

	body["rule"] = map[string]interface{}{"operator": "==", "threshold": 1}
	w = env.do(t, http.MethodPost, "/api/v1/evaluate", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRuleEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rules []models.AlertRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	require.Len(t, rules, 2)

	newRule := models.AlertRule{
		Name:      "few_posts",
		Dashboard: "magicbot",
		Metric:    "posts",
		Operator:  models.OperatorLT,
		Threshold: 30,
		IsEnabled: true,
	}
	w = env.do(t, http.MethodPost, "/api/v1/rules", newRule)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.AlertRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)

	w = env.do(t, http.MethodPost, "/api/v1/rules", models.AlertRule{Name: "Bad Name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/rules/1/disable", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodGet, "/api/v1/rules?enabled=false", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "high_workload", rules[0].Name)

	w = env.do(t, http.MethodGet, "/api/v1/rules/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, "/api/v1/rules/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/rules/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	assert.Len(t, rules, 3)

	w = env.do(t, http.MethodPost, "/api/v1/rules/validate", newRule)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/rules/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, err := env.rules.GetRule(1)
	assert.Error(t, err)
}

func TestNotificationEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/dashboards/magicbot/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var toasts []notify.Toast
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toasts))
	require.Len(t, toasts, 1)
	assert.Equal(t, "Low engagement for Spellbound", toasts[0].Alert.Title)

	w = env.do(t, http.MethodDelete, "/api/v1/notifications/"+toasts[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodDelete, "/api/v1/notifications/"+toasts[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRuleEndpoints_UnknownID(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/rules/999/enable", "/api/v1/rules/999/disable"} {
		w := env.do(t, http.MethodPut, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w := env.do(t, http.MethodDelete, "/api/v1/rules/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRule_EnabledFlag(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/rules", map[string]interface{}{
		"name": "few_posts", "dashboard": "magicbot", "metric": "posts", "operator": "<", "threshold": 30,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.AlertRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsEnabled)

	w = env.do(t, http.MethodPost, "/api/v1/rules", map[string]interface{}{
		"name": "paused_posts", "dashboard": "magicbot", "metric": "posts", "operator": "<", "threshold": 30,
		"is_enabled": false,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	stored, err := env.rules.GetRule(created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsEnabled)
}

func TestUpdateRule_KeepsTriggerStatistics(t *testing.T) {
	env := newTestEnv(t)

	at := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	require.NoError(t, env.rules.RecordTrigger(1, 3, at))

	w := env.do(t, http.MethodPut, "/api/v1/rules/1", map[string]interface{}{
		"name": "high_workload", "dashboard": "elyassi", "metric": "tasks", "operator": ">", "threshold": 50,
		"is_enabled": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rule, err := env.rules.GetRule(1)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rule.Threshold)
	assert.Equal(t, 3, rule.TriggerCount)
	require.NotNil(t, rule.LastTriggered)
	assert.True(t, rule.LastTriggered.Equal(at))
}

func TestShutdownBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.server.Shutdown(context.Background()))

	done := make(chan error, 1)
	go func() { done <- env.server.Start(0) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start kept serving after Shutdown")
	}
}
