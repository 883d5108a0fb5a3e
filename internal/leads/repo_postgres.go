package leads

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"voicereach/pkg/utils"
)

// PostgresStore persists leads in Postgres.
//
// Interests and objections are stored as JSONB arrays; scheduling stamps are
// nullable timestamptz columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Get(ctx context.Context, workspaceID, leadID string) (Lead, error) {
	if workspaceID == "" || leadID == "" {
		return Lead{}, ErrInvalidArgument
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT lead_id, workspace_id, first_name, last_name, company, job_title,
		       phone, status, score, do_not_call, attempts, interests, objections,
		       next_contact_at, last_contact_at, created_at, updated_at
		FROM leads
		WHERE workspace_id = $1 AND lead_id = $2`,
		workspaceID, leadID,
	)

	var (
		l                     Lead
		status                string
		interests, objections []byte
	)
	err := row.Scan(
		&l.LeadID, &l.WorkspaceID, &l.FirstName, &l.LastName, &l.Company, &l.JobTitle,
		&l.Phone, &status, &l.Score, &l.DoNotCall, &l.Attempts, &interests, &objections,
		&l.NextContactAt, &l.LastContactAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	l.Status = Status(status)
	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &l.Interests); err != nil {
			return Lead{}, fmt.Errorf("leads: unmarshal interests: %w", err)
		}
	}
	if len(objections) > 0 {
		if err := json.Unmarshal(objections, &l.Objections); err != nil {
			return Lead{}, fmt.Errorf("leads: unmarshal objections: %w", err)
		}
	}
	return l, nil
}

func (s *PostgresStore) Update(ctx context.Context, lead Lead) error {
	if lead.LeadID == "" || lead.WorkspaceID == "" {
		return ErrInvalidArgument
	}
	interests, err := json.Marshal(lead.Interests)
	if err != nil {
		return fmt.Errorf("leads: marshal interests: %w", err)
	}
	objections, err := json.Marshal(lead.Objections)
	if err != nil {
		return fmt.Errorf("leads: marshal objections: %w", err)
	}

	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE leads
			SET status = $3, score = $4, do_not_call = $5, attempts = $6,
			    interests = $7, objections = $8,
			    next_contact_at = $9, last_contact_at = $10, updated_at = $11
			WHERE workspace_id = $1 AND lead_id = $2`,
			lead.WorkspaceID, lead.LeadID,
			string(lead.Status), lead.Score, lead.DoNotCall, lead.Attempts,
			interests, objections,
			lead.NextContactAt, lead.LastContactAt, lead.UpdatedAt.UTC(),
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}
