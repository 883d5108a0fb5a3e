package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioAPIBase = "https://api.twilio.com"

// TwilioProvider places and controls calls through the Twilio REST API.
// Plain net/http against the documented endpoints; no SDK.
type TwilioProvider struct {
	accountSID string
	authToken  string
	baseURL    string
	client     *http.Client
}

func NewTwilioProvider(accountSID, authToken string) *TwilioProvider {
	return &TwilioProvider{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    twilioAPIBase,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the provider at a different endpoint (tests).
func (p *TwilioProvider) WithBaseURL(u string) *TwilioProvider {
	p.baseURL = u
	return p
}

func (p *TwilioProvider) Name() string { return "twilio" }

func (p *TwilioProvider) HealthCheck(ctx context.Context) error {
	if p.accountSID == "" || p.authToken == "" {
		return errors.New("telephony: twilio credentials not configured")
	}
	return nil
}

type twilioCallResponse struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
}

func (p *TwilioProvider) PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error) {
	if req.WorkspaceID == "" {
		return PlaceCallResult{}, errors.New("telephony: workspace_id required")
	}
	if req.To == "" || req.From == "" || req.AnswerURL == "" {
		return PlaceCallResult{}, errors.New("telephony: to, from and answer_url required")
	}

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	form.Set("Url", req.AnswerURL)
	if req.StatusURL != "" {
		form.Set("StatusCallback", req.StatusURL)
		form.Set("StatusCallbackEvent", "completed")
	}
	if req.MachineDetection {
		form.Set("MachineDetection", "Enable")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", p.baseURL, p.accountSID)
	body, err := p.post(ctx, endpoint, form)
	if err != nil {
		return PlaceCallResult{}, err
	}

	var out twilioCallResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return PlaceCallResult{}, fmt.Errorf("telephony: parse twilio response: %w", err)
	}
	if out.Sid == "" {
		return PlaceCallResult{}, errors.New("telephony: twilio returned no call sid")
	}
	return PlaceCallResult{
		WorkspaceID:    req.WorkspaceID,
		ProviderCallID: out.Sid,
		PlacedAt:       time.Now().UTC(),
	}, nil
}

func (p *TwilioProvider) Hangup(ctx context.Context, providerCallID string) error {
	if providerCallID == "" {
		return errors.New("telephony: provider call id required")
	}
	form := url.Values{}
	form.Set("Status", "completed")

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls/%s.json", p.baseURL, p.accountSID, providerCallID)
	_, err := p.post(ctx, endpoint, form)
	return err
}

func (p *TwilioProvider) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("telephony: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.accountSID, p.authToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telephony: twilio call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telephony: read twilio response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("telephony: twilio status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
