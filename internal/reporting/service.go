package reporting

import (
	"context"
	"errors"
	"time"

	"voicereach/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Methods must enforce workspace filtering.
// - Call records are immutable, so aggregates are stable for a closed range.
type Repository interface {
	ListRecords(ctx context.Context, workspaceID string, from, to time.Time, campaignID string) ([]calls.CallRecord, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) OutcomeSummary(ctx context.Context, req OutcomeSummaryRequest) (OutcomeSummary, error) {
	if req.WorkspaceID == "" {
		return OutcomeSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return OutcomeSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return OutcomeSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListRecords(ctx, req.WorkspaceID, req.Range.From, req.Range.To, req.CampaignID)
	if err != nil {
		return OutcomeSummary{}, err
	}

	out := OutcomeSummary{WorkspaceID: req.WorkspaceID, CampaignID: req.CampaignID}
	var sentimentSum float64
	var sentimentN int
	for _, rec := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += rec.DurationSeconds()
		if rec.Sentiment.Confidence > 0 {
			sentimentSum += rec.Sentiment.Polarity
			sentimentN++
		}
		switch rec.Outcome {
		case calls.OutcomeSale:
			out.Sales++
		case calls.OutcomeInterested:
			out.Interested++
		case calls.OutcomeNotInterested:
			out.NotInterested++
		case calls.OutcomeCallback:
			out.Callbacks++
		case calls.OutcomeVoicemail:
			out.Voicemails++
		case calls.OutcomeWrongNumber:
			out.WrongNumbers++
		case calls.OutcomeNoAnswer:
			out.NoAnswers++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	if sentimentN > 0 {
		out.AverageSentiment = sentimentSum / float64(sentimentN)
	}
	return out, nil
}

func (s *Service) ConversionMetrics(ctx context.Context, req ConversionMetricsRequest) (ConversionMetrics, error) {
	if req.WorkspaceID == "" || req.CampaignID == "" {
		return ConversionMetrics{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return ConversionMetrics{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return ConversionMetrics{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListRecords(ctx, req.WorkspaceID, req.Range.From, req.Range.To, req.CampaignID)
	if err != nil {
		return ConversionMetrics{}, err
	}

	out := ConversionMetrics{WorkspaceID: req.WorkspaceID, CampaignID: req.CampaignID}
	for _, rec := range rows {
		out.CallsAttempted++
		switch rec.Outcome {
		case calls.OutcomeVoicemail, calls.OutcomeWrongNumber, calls.OutcomeNoAnswer:
			// not connected
		default:
			out.CallsConnected++
		}
		if rec.Outcome == calls.OutcomeSale {
			out.Conversions++
		}
	}
	if out.CallsAttempted > 0 {
		out.ConnectionRate = float64(out.CallsConnected) / float64(out.CallsAttempted)
	}
	if out.CallsConnected > 0 {
		out.ConversionRate = float64(out.Conversions) / float64(out.CallsConnected)
	}
	return out, nil
}
