package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tendergate/tendergate/internal/domain/accumulation"
	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

type ruleRepo struct {
	baseRepo
}

// NewRuleRepo builds the PostgreSQL accumulation-rule repository.
func NewRuleRepo(conn *postgres.Connection, log logging.Logger) accumulation.RuleRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ruleRepo{baseRepo: baseRepo{conn: conn, log: log.Named("repo.rule")}}
}

func (r *ruleRepo) Save(ctx context.Context, rule *accumulation.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO accumulation_rules
			(id, name, entity_type, method, value_field, dedup_fields, time_window_months, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (name) DO UPDATE SET
			entity_type = EXCLUDED.entity_type,
			method = EXCLUDED.method,
			value_field = EXCLUDED.value_field,
			dedup_fields = EXCLUDED.dedup_fields,
			time_window_months = EXCLUDED.time_window_months`

	_, err := r.executor().ExecContext(ctx, query,
		rule.ID, rule.Name, rule.EntityType, rule.Method, rule.ValueField,
		pq.Array(rule.DedupFields), rule.TimeWindowMonths, rule.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "saving accumulation rule")
	}
	return nil
}

func (r *ruleRepo) FindByName(ctx context.Context, name string) (*accumulation.Rule, error) {
	row := r.executor().QueryRowContext(ctx, `
		SELECT id, name, entity_type, method, value_field, dedup_fields, time_window_months, created_at
		FROM accumulation_rules WHERE name = $1`, name)

	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.ErrCodeRuleNotFound, "rule %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading accumulation rule")
	}
	return rule, nil
}

func (r *ruleRepo) List(ctx context.Context) ([]*accumulation.Rule, error) {
	rows, err := r.executor().QueryContext(ctx, `
		SELECT id, name, entity_type, method, value_field, dedup_fields, time_window_months, created_at
		FROM accumulation_rules ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing accumulation rules")
	}
	defer rows.Close()

	var out []*accumulation.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning accumulation rule")
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating accumulation rules")
	}
	return out, nil
}

func scanRule(row rowScanner) (*accumulation.Rule, error) {
	var rule accumulation.Rule
	var valueField sql.NullString
	err := row.Scan(&rule.ID, &rule.Name, &rule.EntityType, &rule.Method,
		&valueField, pq.Array(&rule.DedupFields), &rule.TimeWindowMonths, &rule.CreatedAt)
	if err != nil {
		return nil, err
	}
	rule.ValueField = valueField.String
	return &rule, nil
}

type itemRepo struct {
	baseRepo
}

// NewItemRepo builds the PostgreSQL accumulation-item repository.
func NewItemRepo(conn *postgres.Connection, log logging.Logger) accumulation.ItemRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &itemRepo{baseRepo: baseRepo{conn: conn, log: log.Named("repo.item")}}
}

func (r *itemRepo) Save(ctx context.Context, item *accumulation.Item) error {
	if item.CompanyID == uuid.Nil || item.ItemType == "" {
		return errors.Newf(errors.ErrCodeItemInvalid, "item requires company and type")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding item payload")
	}

	// Re-submission of an identical fact hits the uniqueness constraint
	// and is swallowed: same fact, no new row.
	query := `
		INSERT INTO accumulation_items
			(id, company_id, item_type, payload, dedup_hash, valid_from, valid_to, relevant_date, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (company_id, item_type, dedup_hash) DO NOTHING`

	_, err = r.executor().ExecContext(ctx, query,
		item.ID, item.CompanyID, item.ItemType, payload, item.DedupHash,
		nullableTime(item.ValidFrom), nullableTime(item.ValidTo),
		nullableTime(item.RelevantDate), item.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "saving accumulation item")
	}
	return nil
}

func (r *itemRepo) FindByCompany(ctx context.Context, companyID uuid.UUID, itemType string) ([]*accumulation.Item, error) {
	rows, err := r.executor().QueryContext(ctx, `
		SELECT id, company_id, item_type, payload, dedup_hash, valid_from, valid_to, relevant_date, created_at
		FROM accumulation_items
		WHERE company_id = $1 AND item_type = $2
		ORDER BY created_at`, companyID, itemType)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing accumulation items")
	}
	defer rows.Close()

	var out []*accumulation.Item
	for rows.Next() {
		var item accumulation.Item
		var payload []byte
		var validFrom, validTo, relevant sql.NullTime
		err := rows.Scan(&item.ID, &item.CompanyID, &item.ItemType, &payload,
			&item.DedupHash, &validFrom, &validTo, &relevant, &item.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning accumulation item")
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &item.Payload); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decoding item payload")
			}
		}
		item.ValidFrom = validFrom.Time
		item.ValidTo = validTo.Time
		item.RelevantDate = relevant.Time
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating accumulation items")
	}
	return out, nil
}

func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
