package calls

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"voicereach/pkg/utils"
)

// PostgresStore persists call records in Postgres.
//
// Expected table shape:
//
//	call_records(call_id PK, workspace_id, lead_id, campaign_id, outcome,
//	  end_reason, sentiment JSONB, signals JSONB, summary, transcript JSONB,
//	  started_at, ended_at)
//
// Rows are append-only; ON CONFLICT DO NOTHING keeps finalize retries idempotent.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) SaveRecord(ctx context.Context, rec CallRecord) error {
	if rec.CallID == "" || rec.WorkspaceID == "" {
		return ErrInvalidArgument
	}

	sentiment, err := json.Marshal(rec.Sentiment)
	if err != nil {
		return fmt.Errorf("calls: marshal sentiment: %w", err)
	}
	signals, err := json.Marshal(rec.Signals)
	if err != nil {
		return fmt.Errorf("calls: marshal signals: %w", err)
	}
	transcript, err := json.Marshal(rec.Transcript)
	if err != nil {
		return fmt.Errorf("calls: marshal transcript: %w", err)
	}

	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO call_records
				(call_id, workspace_id, lead_id, campaign_id, outcome, end_reason,
				 sentiment, signals, summary, transcript, started_at, ended_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			ON CONFLICT (call_id) DO NOTHING`,
			rec.CallID, rec.WorkspaceID, rec.LeadID, rec.CampaignID,
			string(rec.Outcome), string(rec.EndReason),
			sentiment, signals, rec.Summary, transcript,
			rec.StartedAt.UTC(), rec.EndedAt.UTC(),
		)
		return err
	})
}

func (s *PostgresStore) GetRecord(ctx context.Context, workspaceID, callID string) (CallRecord, error) {
	if workspaceID == "" || callID == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT call_id, workspace_id, lead_id, campaign_id, outcome, end_reason,
		       sentiment, signals, summary, transcript, started_at, ended_at
		FROM call_records
		WHERE workspace_id = $1 AND call_id = $2`,
		workspaceID, callID,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CallRecord{}, ErrNotFound
	}
	return rec, err
}

func (s *PostgresStore) ListRecords(ctx context.Context, workspaceID string, from, to time.Time, campaignID string) ([]CallRecord, error) {
	if workspaceID == "" {
		return nil, ErrInvalidArgument
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT call_id, workspace_id, lead_id, campaign_id, outcome, end_reason,
		       sentiment, signals, summary, transcript, started_at, ended_at
		FROM call_records
		WHERE workspace_id = $1
		  AND ended_at >= $2 AND ended_at < $3
		  AND ($4 = '' OR campaign_id = $4)
		ORDER BY ended_at`,
		workspaceID, from.UTC(), to.UTC(), campaignID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (CallRecord, error) {
	var (
		rec                           CallRecord
		outcome, endReason            string
		sentiment, signals, transcript []byte
	)
	err := row.Scan(
		&rec.CallID, &rec.WorkspaceID, &rec.LeadID, &rec.CampaignID,
		&outcome, &endReason,
		&sentiment, &signals, &rec.Summary, &transcript,
		&rec.StartedAt, &rec.EndedAt,
	)
	if err != nil {
		return CallRecord{}, err
	}
	rec.Outcome = Outcome(outcome)
	rec.EndReason = EndReason(endReason)
	if err := json.Unmarshal(sentiment, &rec.Sentiment); err != nil {
		return CallRecord{}, fmt.Errorf("calls: unmarshal sentiment: %w", err)
	}
	if err := json.Unmarshal(signals, &rec.Signals); err != nil {
		return CallRecord{}, fmt.Errorf("calls: unmarshal signals: %w", err)
	}
	if err := json.Unmarshal(transcript, &rec.Transcript); err != nil {
		return CallRecord{}, fmt.Errorf("calls: unmarshal transcript: %w", err)
	}
	return rec, nil
}
