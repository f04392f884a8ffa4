package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"
	"gorm.io/gorm"

	"github.com/dashwatch/internal/alert"
	"github.com/dashwatch/internal/logger"
	"github.com/dashwatch/internal/metrics"
	"github.com/dashwatch/internal/models"
	"github.com/dashwatch/internal/monitor"
	"github.com/dashwatch/internal/notify"
)

type Server struct {
	monitor     *monitor.Monitor
	ruleManager *alert.RuleManager
	toasts      *notify.ToastQueue
	router      *gin.Engine
	httpServer  *http.Server
}

func NewServer(mon *monitor.Monitor, ruleManager *alert.RuleManager, toasts *notify.ToastQueue) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), securityHeaders(), requestLogger())

	server := &Server{
		monitor:     mon,
		ruleManager: ruleManager,
		toasts:      toasts,
		router:      router,
		httpServer: &http.Server{
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")

	// Dashboard endpoints
	api.GET("/dashboards", s.listDashboards)
	api.GET("/dashboards/:name", s.getDashboard)
	api.POST("/dashboards/:name/refresh", s.refreshDashboard)

	// Ad hoc evaluation
	api.POST("/evaluate", s.evaluate)

	// Rule management endpoints
	rules := api.Group("/rules")
	{
		rules.GET("", s.listRules)
		rules.GET("/:id", s.getRule)
		rules.POST("", s.createRule)
		rules.PUT("/:id", s.updateRule)
		rules.DELETE("/:id", s.deleteRule)
		rules.PUT("/:id/enable", s.enableRule)
		rules.PUT("/:id/disable", s.disableRule)
		rules.POST("/validate", s.validateRule)
		rules.POST("/import", s.importRules)
		rules.GET("/export", s.exportRules)
	}

	// Notification endpoints
	api.GET("/notifications", s.listNotifications)
	api.DELETE("/notifications/:id", s.dismissNotification)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on port and serves until Shutdown. Calling Shutdown first
// makes Start return immediately.
func (s *Server) Start(port int) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	log := logger.WithComponent("api")
	log.Info().Int("port", port).Msg("starting HTTP server")
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func securityHeaders() gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})

	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		// Process may have redirected already.
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
		}
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(duration.Seconds())

		log := logger.WithComponent("api")
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Msg("request handled")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) listDashboards(c *gin.Context) {
	type dashboardInfo struct {
		Name        string     `json:"name"`
		Title       string     `json:"title"`
		Alerts      int        `json:"alerts"`
		RefreshedAt *time.Time `json:"refreshed_at,omitempty"`
	}

	dashboards := s.monitor.Dashboards()
	out := make([]dashboardInfo, 0, len(dashboards))
	for _, d := range dashboards {
		info := dashboardInfo{Name: d.Name, Title: d.Title}
		if snap, ok := s.monitor.Snapshot(d.Name); ok {
			info.Alerts = len(snap.Alerts)
			refreshed := snap.RefreshedAt
			info.RefreshedAt = &refreshed
		}
		out = append(out, info)
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) getDashboard(c *gin.Context) {
	name := c.Param("name")
	if snap, ok := s.monitor.Snapshot(name); ok {
		c.JSON(http.StatusOK, snap)
		return
	}

	// Never refreshed yet: run the first cycle now.
	s.refreshDashboard(c)
}

func (s *Server) refreshDashboard(c *gin.Context) {
	snap, err := s.monitor.Refresh(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, monitor.ErrUnknownDashboard) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (s *Server) evaluate(c *gin.Context) {
	var request struct {
		Records []models.Record  `json:"records"`
		Rule    models.AlertRule `json:"rule"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if request.Rule.Name == "" {
		request.Rule.Name = "adhoc"
	}
	if request.Rule.Dashboard == "" {
		request.Rule.Dashboard = "adhoc"
	}
	if request.Rule.Metric == "" {
		request.Rule.Metric = models.MetricValue
	}

	alerts, err := s.ruleManager.TestRule(&request.Rule, request.Records)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"summary": gin.H{
			"records": len(request.Records),
			"alerts":  len(alerts),
		},
	})
}

// Rule management handlers
func (s *Server) listRules(c *gin.Context) {
	enabled := c.Query("enabled")
	var enabledPtr *bool
	if enabled != "" {
		enabledBool := enabled == "true"
		enabledPtr = &enabledBool
	}

	rules, err := s.ruleManager.ListRules(enabledPtr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rules)
}

func (s *Server) getRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rule, err := s.ruleManager.GetRule(id)
	if err != nil {
		writeRuleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (s *Server) createRule(c *gin.Context) {
	// New rules are enabled unless the body says otherwise.
	rule := models.AlertRule{IsEnabled: true}
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := alert.ValidateRule(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ruleManager.CreateRule(&rule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rule)
}

func (s *Server) updateRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	existing, err := s.ruleManager.GetRule(id)
	if err != nil {
		writeRuleError(c, err)
		return
	}

	var rule models.AlertRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule.ID = id
	rule.CreatedAt = existing.CreatedAt
	rule.TriggerCount = existing.TriggerCount
	rule.LastTriggered = existing.LastTriggered

	if err := alert.ValidateRule(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ruleManager.UpdateRule(&rule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (s *Server) deleteRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.ruleManager.DeleteRule(id); err != nil {
		writeRuleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rule deleted successfully"})
}

func (s *Server) enableRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.ruleManager.EnableRule(id); err != nil {
		writeRuleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rule enabled successfully"})
}

func (s *Server) disableRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.ruleManager.DisableRule(id); err != nil {
		writeRuleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rule disabled successfully"})
}

func (s *Server) validateRule(c *gin.Context) {
	var rule models.AlertRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := alert.ValidateRule(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rule is valid"})
}

func (s *Server) importRules(c *gin.Context) {
	var rules []models.AlertRule
	if err := c.ShouldBindJSON(&rules); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for i := range rules {
		if err := alert.ValidateRule(&rules[i]); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid rule '%s': %v", rules[i].Name, err)})
			return
		}
	}

	if err := s.ruleManager.ImportRules(rules); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("successfully imported %d rules", len(rules))})
}

func (s *Server) exportRules(c *gin.Context) {
	rules, err := s.ruleManager.ListRules(nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rules)
}

func (s *Server) listNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.toasts.List())
}

func (s *Server) dismissNotification(c *gin.Context) {
	if !s.toasts.Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Helper functions
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rule ID"})
		return 0, false
	}
	return uint(id), true
}

func writeRuleError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
