package httpapi

import (
	"errors"
	"net/http"
	"time"

	"callmeter/internal/audit"
	"callmeter/internal/auth"
	"callmeter/internal/balance"
	"callmeter/internal/reporting"
	"callmeter/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ActiveCallCounter reports live metering sessions for health/ops views.
type ActiveCallCounter interface {
	ActiveCalls() int
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth    *auth.Manager
	Balance balance.Store
	Audit   *audit.Service
	Reports *reporting.Service
	Meter   ActiveCallCounter
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Balance ---

// GetBalance returns the prepaid balance of one payer.
func (h Handlers) GetBalance(c *gin.Context) {
	if h.Balance == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "balance store not configured"})
		return
	}
	payer := c.Param("payer")
	if payer == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "payer required"})
		return
	}
	bal, err := h.Balance.GetBalance(c.Request.Context(), payer)
	switch {
	case errors.Is(err, balance.ErrPayerNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "payer not found"})
		return
	case err != nil:
		logger.FromGin(c).Error("balance lookup failed", "payer", payer, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "balance lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payer": payer, "balance_minor": bal})
}

type adminCreditRequest struct {
	Payer       string `json:"payer"`
	AmountMinor int64  `json:"amount_minor"`
	Reason      string `json:"reason"`
}

// AdminCredit tops up a payer's balance.
// RBAC: finance or super_admin.
func (h Handlers) AdminCredit(c *gin.Context) {
	if h.Balance == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "balance store not configured"})
		return
	}
	actorUserID, _ := auth.UserID(c.Request.Context())
	actorRole, _ := auth.Role(c.Request.Context())

	var req adminCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Payer == "" || req.AmountMinor <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "payer and positive amount_minor required"})
		return
	}

	bal, err := h.Balance.Credit(c.Request.Context(), req.Payer, req.AmountMinor)
	switch {
	case errors.Is(err, balance.ErrPayerNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "payer not found"})
		return
	case errors.Is(err, balance.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.FromGin(c).Error("credit failed", "payer", req.Payer, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "credit failed"})
		return
	}

	if h.Audit != nil {
		if err := h.Audit.LogAdminCredit(c.Request.Context(), req.Payer, actorUserID, actorRole, req.AmountMinor, bal, req.Reason); err != nil {
			logger.FromGin(c).Error("audit append failed", "payer", req.Payer, "err", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"payer": req.Payer, "balance_minor": bal})
}

// --- Reporting ---

// SpendSummary returns aggregated spend for one payer over a time range.
// Defaults to the trailing 30 days when from/to are omitted.
func (h Handlers) SpendSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	payer := c.Param("payer")
	if payer == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "payer required"})
		return
	}

	now := time.Now().UTC()
	rng := reporting.TimeRange{From: now.AddDate(0, 0, -30), To: now}
	if v := c.Query("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		rng.From = ts
	}
	if v := c.Query("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		rng.To = ts
	}

	sum, err := h.Reports.SpendSummary(c.Request.Context(), reporting.SpendSummaryRequest{Payer: payer, Range: rng})
	switch {
	case errors.Is(err, reporting.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid range"})
		return
	case err != nil:
		logger.FromGin(c).Error("spend summary failed", "payer", payer, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// --- Ops ---

// ActiveCalls reports how many calls are currently being metered.
func (h Handlers) ActiveCalls(c *gin.Context) {
	if h.Meter == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "metering not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_calls": h.Meter.ActiveCalls()})
}
