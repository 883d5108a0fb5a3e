package httpapi

import (
	"errors"
	"net/http"
	"time"

	"voicereach/internal/auth"
	"voicereach/internal/calls"
	"voicereach/internal/campaigns"
	"voicereach/internal/dialer"
	"voicereach/internal/leads"
	"voicereach/internal/rbac"
	"voicereach/internal/reporting"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth    *auth.Manager
	Dialer  *dialer.Dialer
	Reports *reporting.Service
	Records calls.Store
}

// --- Auth ---

// RefreshTokens reissues a token pair for the caller's verified identity.
// The new claims come from the token the auth middleware already validated,
// never from the request body, so a caller cannot mint tokens for another
// user, workspace or role.
func (h Handlers) RefreshTokens(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}

	ctx := c.Request.Context()
	userID, uErr := auth.UserID(ctx)
	workspaceID, wErr := auth.WorkspaceID(ctx)
	role, rErr := auth.Role(ctx)
	if uErr != nil || wErr != nil || rErr != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
		return
	}

	pair, err := h.Auth.IssuePair(time.Now(), userID, workspaceID, role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Calls ---

type startCallRequest struct {
	CampaignID string `json:"campaign_id"`
	LeadID     string `json:"lead_id"`
}

// StartCall places one outbound call for a campaign lead.
func (h Handlers) StartCall(c *gin.Context) {
	if h.Dialer == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "dialer not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil || workspaceID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}

	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.CampaignID == "" || req.LeadID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id and lead_id required"})
		return
	}

	res, err := h.Dialer.StartCall(c.Request.Context(), workspaceID, req.CampaignID, req.LeadID)
	switch {
	case errors.Is(err, leads.ErrNotFound), errors.Is(err, campaigns.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	case errors.Is(err, dialer.ErrLeadNotCallable):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "lead not callable"})
		return
	case errors.Is(err, dialer.ErrNotDue):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "lead not due for contact"})
		return
	case errors.Is(err, dialer.ErrCapacityFull):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "live-call limit reached"})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "call placement failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"call_id":   res.ProviderCallID,
		"placed_at": res.PlacedAt,
	})
}

// GetCallRecord returns the immutable record of a finished call.
func (h Handlers) GetCallRecord(c *gin.Context) {
	if h.Records == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "records not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil || workspaceID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	callID := c.Param("call_id")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "call_id required"})
		return
	}

	rec, err := h.Records.GetRecord(c.Request.Context(), workspaceID, callID)
	if errors.Is(err, calls.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "record lookup failed"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// --- Reporting ---

func (h Handlers) OutcomeSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil || workspaceID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	rng, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.Reports.OutcomeSummary(c.Request.Context(), reporting.OutcomeSummaryRequest{
		WorkspaceID: workspaceID,
		Range:       rng,
		CampaignID:  c.Query("campaign_id"),
	})
	if errors.Is(err, reporting.ErrInvalidRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ConversionMetrics(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	workspaceID, err := auth.WorkspaceID(c.Request.Context())
	if err != nil || workspaceID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "workspace_id required"})
		return
	}
	rng, err := parseRange(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.Reports.ConversionMetrics(c.Request.Context(), reporting.ConversionMetricsRequest{
		WorkspaceID: workspaceID,
		Range:       rng,
		CampaignID:  c.Query("campaign_id"),
	})
	if errors.Is(err, reporting.ErrInvalidRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "metrics failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseRange(c *gin.Context) (reporting.TimeRange, error) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return reporting.TimeRange{}, errors.New("from must be RFC3339")
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return reporting.TimeRange{}, errors.New("to must be RFC3339")
	}
	return reporting.TimeRange{From: from, To: to}, nil
}

// Convenience middleware bundles.

func RequireWorkspaceAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireWorkspace(), rbac.RequireAnyRole(roles...)}
}
