package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

type conditionRepo struct {
	baseRepo
}

// NewConditionRepo builds the PostgreSQL gate-condition repository.
func NewConditionRepo(conn *postgres.Connection, log logging.Logger) condition.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &conditionRepo{baseRepo: baseRepo{conn: conn, log: log.Named("repo.condition")}}
}

const conditionColumns = `
	id, tender_id, ordinal, text, category, mandatory, weight,
	required_years, required_amount, required_count,
	status, legal_classification, bearer_scope,
	source_page, source_section, created_at, updated_at`

func (r *conditionRepo) Save(ctx context.Context, c *condition.GateCondition) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = condition.StatusUnknown
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	query := `
		INSERT INTO gate_conditions (` + conditionColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			category = EXCLUDED.category,
			mandatory = EXCLUDED.mandatory,
			weight = EXCLUDED.weight,
			required_years = EXCLUDED.required_years,
			required_amount = EXCLUDED.required_amount,
			required_count = EXCLUDED.required_count,
			legal_classification = EXCLUDED.legal_classification,
			bearer_scope = EXCLUDED.bearer_scope,
			source_page = EXCLUDED.source_page,
			source_section = EXCLUDED.source_section,
			updated_at = EXCLUDED.updated_at`

	_, err := r.executor().ExecContext(ctx, query,
		c.ID, c.TenderID, c.Ordinal, c.Text, c.Category, c.Mandatory, c.Weight,
		c.RequiredYears, c.RequiredAmount, c.RequiredCount,
		c.Status, nullableString(string(c.LegalClassification)), nullableString(string(c.BearerScope)),
		c.SourcePage, c.SourceSection, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "saving gate condition")
	}
	return nil
}

func (r *conditionRepo) FindByID(ctx context.Context, id uuid.UUID) (*condition.GateCondition, error) {
	row := r.executor().QueryRowContext(ctx,
		`SELECT `+conditionColumns+` FROM gate_conditions WHERE id = $1`, id)

	c, err := scanCondition(row)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeConditionNotFound, "condition %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading gate condition")
	}
	return c, nil
}

func (r *conditionRepo) FindByTender(ctx context.Context, tenderID uuid.UUID) ([]*condition.GateCondition, error) {
	rows, err := r.executor().QueryContext(ctx,
		`SELECT `+conditionColumns+` FROM gate_conditions WHERE tender_id = $1 ORDER BY ordinal`, tenderID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing gate conditions")
	}
	defer rows.Close()

	var out []*condition.GateCondition
	for rows.Next() {
		c, err := scanCondition(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning gate condition")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating gate conditions")
	}
	return out, nil
}

func (r *conditionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status condition.ConditionStatus) error {
	if !status.IsValid() {
		return errors.Newf(errors.ErrCodeConditionStatusInvalid, "invalid status %q", status)
	}
	res, err := r.executor().ExecContext(ctx,
		`UPDATE gate_conditions SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "updating condition status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Newf(errors.ErrCodeConditionNotFound, "condition %s not found", id)
	}
	return nil
}

func (r *conditionRepo) DeleteByTender(ctx context.Context, tenderID uuid.UUID) error {
	_, err := r.executor().ExecContext(ctx,
		`DELETE FROM gate_conditions WHERE tender_id = $1`, tenderID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "deleting tender conditions")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCondition(row rowScanner) (*condition.GateCondition, error) {
	var c condition.GateCondition
	var legal, bearer sql.NullString
	err := row.Scan(
		&c.ID, &c.TenderID, &c.Ordinal, &c.Text, &c.Category, &c.Mandatory, &c.Weight,
		&c.RequiredYears, &c.RequiredAmount, &c.RequiredCount,
		&c.Status, &legal, &bearer,
		&c.SourcePage, &c.SourceSection, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.LegalClassification = condition.LegalClassification(legal.String)
	c.BearerScope = condition.BearerScope(bearer.String)
	return &c, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
