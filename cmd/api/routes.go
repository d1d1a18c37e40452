package main

import (
	"callmeter/internal/auth"
	"callmeter/internal/httpapi"
	"callmeter/internal/liveupdate"
	"callmeter/internal/metering"
	"callmeter/internal/rbac"
	"callmeter/internal/telephony"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	Auth       *auth.Manager
	API        httpapi.Handlers
	Webhooks   *telephony.WebhookHandler
	Hub        *liveupdate.Hub
	Controller *metering.Controller
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":         "ok",
			"active_calls":   d.Controller.ActiveCalls(),
			"stream_clients": d.Hub.ClientCount(),
		})
	})

	// Provider webhooks (public).
	// NOTE: These endpoints should be protected by Twilio signature validation in production.
	webhooks := r.Group("/webhooks/voice")
	{
		webhooks.POST("/incoming", d.Webhooks.HandleIncomingCall)
		webhooks.POST("/dial-status", d.Webhooks.HandleDialStatus)
		webhooks.POST("/call-status", d.Webhooks.HandleCallStatus)
	}

	// Token issuance is public; everything else under /v1 requires an
	// access token.
	r.POST("/v1/auth/login", d.API.Login)

	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(d.Auth))
	{
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "role": role})
		})

		// BALANCE routes
		balances := v1.Group("/balances")
		balances.Use(rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleSupport, rbac.RoleFinance))
		{
			balances.GET("/:payer", d.API.GetBalance)
		}

		// CALLS routes
		calls := v1.Group("/calls")
		calls.Use(rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleSupport))
		{
			calls.GET("/active", d.API.ActiveCalls)
		}

		// REPORTING routes
		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleFinance, rbac.RoleOperator))
		{
			reports.GET("/spend/:payer", d.API.SpendSummary)
		}

		// Live billing event stream for operator dashboards.
		v1.GET("/events/stream",
			rbac.RequireAnyRole(rbac.RoleOperator, rbac.RoleSupport, rbac.RoleFinance),
			d.Hub.HandleStream)

		// ADMIN routes
		// Only finance/super_admin can move money by hand.
		admin := v1.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleFinance))
		{
			admin.POST("/credits", d.API.AdminCredit)
		}
	}
}
