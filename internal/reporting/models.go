package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// OutcomeSummaryRequest requests aggregated call outcome metrics.
// Workspace isolation: WorkspaceID is required.
type OutcomeSummaryRequest struct {
	WorkspaceID string    `json:"workspace_id"`
	Range       TimeRange `json:"range"`
	CampaignID  string    `json:"campaign_id,omitempty"`
}

type OutcomeSummary struct {
	WorkspaceID string `json:"workspace_id"`
	CampaignID  string `json:"campaign_id,omitempty"`

	TotalCalls int `json:"total_calls"`

	Sales         int `json:"sales"`
	Interested    int `json:"interested"`
	NotInterested int `json:"not_interested"`
	Callbacks     int `json:"callbacks"`
	Voicemails    int `json:"voicemails"`
	WrongNumbers  int `json:"wrong_numbers"`
	NoAnswers     int `json:"no_answers"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	// AverageSentiment is the mean polarity over calls that carry one.
	AverageSentiment float64 `json:"average_sentiment"`
}

// ConversionMetricsRequest captures campaign conversion metrics.
type ConversionMetricsRequest struct {
	WorkspaceID string    `json:"workspace_id"`
	Range       TimeRange `json:"range"`
	CampaignID  string    `json:"campaign_id"`
}

type ConversionMetrics struct {
	WorkspaceID string `json:"workspace_id"`
	CampaignID  string `json:"campaign_id"`

	CallsAttempted int `json:"calls_attempted"`
	// CallsConnected excludes voicemails, wrong numbers and no-answers.
	CallsConnected int `json:"calls_connected"`
	// Conversions counts sale outcomes.
	Conversions int `json:"conversions"`

	ConnectionRate float64 `json:"connection_rate"`
	ConversionRate float64 `json:"conversion_rate"`
}
