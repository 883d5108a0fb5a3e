package main

import (
	"database/sql"
	"net/http"
	"time"

	"voicereach/internal/httpapi"
	"voicereach/internal/rbac"
	"voicereach/internal/telephony"
	"voicereach/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, authMW gin.HandlerFunc, webhooks *telephony.WebhookHandler, control *telephony.CallControlHandler, api httpapi.Handlers, db *sql.DB) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Provider webhooks (public).
	// NOTE: These endpoints should be protected by Twilio signature validation in production.
	{
		r.POST("/webhooks/twilio/answer", webhooks.HandleAnswer)
		r.POST("/webhooks/twilio/speech", webhooks.HandleSpeech)
		r.POST("/webhooks/twilio/status", webhooks.HandleStatus)
	}

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	{
		v1.GET("/me", func(c *gin.Context) {
			uid := c.GetString("user_id")
			wid := c.GetString("workspace_id")
			role := c.GetString("role")
			c.JSON(http.StatusOK, gin.H{"user_id": uid, "workspace_id": wid, "role": role})
		})

		// AUTH routes (token reissuance for the verified caller).
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/refresh", api.RefreshTokens)
		}

		// CALLS routes
		calls := v1.Group("/calls")
		calls.Use(httpapi.RequireWorkspaceAndAnyRole(rbac.RoleOwner, rbac.RoleSupervisor, rbac.RoleOperator, rbac.RoleAutomation)...)
		{
			calls.POST("/start", api.StartCall)
			calls.GET("/:call_id", api.GetCallRecord)
			calls.POST("/:call_id/hangup", control.HandleHangup)
		}

		// REPORTS routes
		reports := v1.Group("/reports")
		reports.Use(httpapi.RequireWorkspaceAndAnyRole(rbac.RoleOwner, rbac.RoleSupervisor, rbac.RoleAnalyst)...)
		{
			reports.GET("/outcomes", api.OutcomeSummary)
			reports.GET("/conversions", api.ConversionMetrics)
		}
	}
}
