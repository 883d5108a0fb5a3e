package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voicereach/internal/auth"
	"voicereach/internal/calls"
	"voicereach/internal/config"
	"voicereach/internal/rbac"

	"github.com/gin-gonic/gin"
)

func router(h Handlers, workspaceID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), "u1", workspaceID, rbac.RoleSupervisor)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.POST("/v1/calls/start", h.StartCall)
	r.GET("/v1/calls/:call_id", h.GetCallRecord)
	return r
}

func TestRefreshTokens_BoundToVerifiedIdentity(t *testing.T) {
	mgr, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), "u1", "ws-1", rbac.RoleSupervisor)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	h := Handlers{Auth: mgr}
	r.POST("/v1/auth/refresh", h.RefreshTokens)

	// A body naming a different identity must be ignored.
	body := `{"user_id":"intruder","workspace_id":"ws-other","role":"super_admin"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := mgr.Verify(resp.AccessToken, auth.TokenTypeAccess, time.Now())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "u1" || claims.WorkspaceID != "ws-1" || claims.Role != rbac.RoleSupervisor {
		t.Errorf("claims = %s/%s/%s, want the caller's own identity", claims.UserID, claims.WorkspaceID, claims.Role)
	}
}

func TestRefreshTokens_RequiresIdentity(t *testing.T) {
	mgr, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/auth/refresh", Handlers{Auth: mgr}.RefreshTokens)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/auth/refresh", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", w.Code)
	}
}

func TestStartCall_RequiresBody(t *testing.T) {
	r := router(Handlers{}, "ws-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/calls/start", strings.NewReader(`{"campaign_id":""}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	// Dialer not configured is checked first.
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unconfigured dialer, got %d", w.Code)
	}
}

func TestGetCallRecord(t *testing.T) {
	store := calls.NewMemoryStore()
	rec := calls.CallRecord{
		CallID:      "CA1",
		WorkspaceID: "ws-1",
		LeadID:      "lead-1",
		CampaignID:  "camp-1",
		Outcome:     calls.OutcomeInterested,
		EndReason:   calls.EndReasonProviderCompleted,
		StartedAt:   time.Now().UTC().Add(-2 * time.Minute),
		EndedAt:     time.Now().UTC(),
	}
	if err := store.SaveRecord(context.Background(), rec); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	r := router(Handlers{Records: store}, "ws-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/calls/CA1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got calls.CallRecord
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Outcome != calls.OutcomeInterested {
		t.Errorf("Outcome = %q", got.Outcome)
	}
}

func TestGetCallRecord_WorkspaceIsolation(t *testing.T) {
	store := calls.NewMemoryStore()
	_ = store.SaveRecord(context.Background(), calls.CallRecord{
		CallID:      "CA1",
		WorkspaceID: "ws-1",
		Outcome:     calls.OutcomeSale,
	})

	r := router(Handlers{Records: store}, "ws-other")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/calls/CA1", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 across workspaces, got %d", w.Code)
	}
}
