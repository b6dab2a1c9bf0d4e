package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tendergate/tendergate/internal/domain/reference"
	"github.com/tendergate/tendergate/internal/infrastructure/database/postgres"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
)

type gapOptionRepo struct {
	baseRepo
}

// NewGapOptionRepo builds the gap-closure-option reader.
func NewGapOptionRepo(conn *postgres.Connection, log logging.Logger) reference.GapOptionRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &gapOptionRepo{baseRepo: baseRepo{conn: conn, log: log.Named("repo.gapoption")}}
}

func (r *gapOptionRepo) FindByGapType(ctx context.Context, gap reference.GapType) ([]*reference.GapClosureOption, error) {
	rows, err := r.executor().QueryContext(ctx, `
		SELECT id, gap_type, method, cost_min, cost_max, typical_time_days,
		       success_rate, requirements, risks, active, created_at
		FROM gap_closure_options
		WHERE gap_type = $1 AND active
		ORDER BY typical_time_days`, gap)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing gap options")
	}
	defer rows.Close()

	var out []*reference.GapClosureOption
	for rows.Next() {
		var o reference.GapClosureOption
		var requirements []byte
		err := rows.Scan(&o.ID, &o.GapType, &o.Method, &o.TypicalCost.Min, &o.TypicalCost.Max,
			&o.TypicalTimeDays, &o.SuccessRate, &requirements, pq.Array(&o.Risks), &o.Active, &o.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning gap option")
		}
		if len(requirements) > 0 {
			if err := json.Unmarshal(requirements, &o.Requirements); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decoding option requirements")
			}
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating gap options")
	}
	return out, nil
}

type partnerRepo struct {
	baseRepo
}

// NewPartnerRepo builds the partner-candidate reader.
func NewPartnerRepo(conn *postgres.Connection, log logging.Logger) reference.PartnerRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &partnerRepo{baseRepo: baseRepo{conn: conn, log: log.Named("repo.partner")}}
}

func (r *partnerRepo) List(ctx context.Context) ([]*reference.PotentialPartner, error) {
	rows, err := r.executor().QueryContext(ctx, `
		SELECT id, name, capabilities, certifications, experience_categories,
		       bid_size_min, bid_size_max, rating, preferred, created_at
		FROM potential_partners
		ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing partners")
	}
	defer rows.Close()

	var out []*reference.PotentialPartner
	for rows.Next() {
		var p reference.PotentialPartner
		var capabilities []byte
		err := rows.Scan(&p.ID, &p.Name, &capabilities, pq.Array(&p.Certifications),
			pq.Array(&p.ExperienceCategories), &p.BidSizeRange.Min, &p.BidSizeRange.Max,
			&p.Rating, &p.Preferred, &p.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning partner")
		}
		if len(capabilities) > 0 {
			if err := json.Unmarshal(capabilities, &p.Capabilities); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decoding partner capabilities")
			}
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating partners")
	}
	return out, nil
}

type competitorRepo struct {
	baseRepo
}

// NewCompetitorRepo builds the competitor-profile reader.
func NewCompetitorRepo(conn *postgres.Connection, log logging.Logger) reference.CompetitorRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &competitorRepo{baseRepo: baseRepo{conn: conn, log: log.Named("repo.competitor")}}
}

func (r *competitorRepo) List(ctx context.Context) ([]*reference.CompetitorProfile, error) {
	rows, err := r.executor().QueryContext(ctx, `
		SELECT id, name, categories, bid_size_min, bid_size_max, win_rate,
		       pricing_behavior, preferred_clients, last_activity_at, data_quality, created_at
		FROM competitor_profiles
		ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing competitor profiles")
	}
	defer rows.Close()

	var out []*reference.CompetitorProfile
	for rows.Next() {
		var p reference.CompetitorProfile
		var lastActivity sql.NullTime
		err := rows.Scan(&p.ID, &p.Name, pq.Array(&p.Categories),
			&p.TypicalBidSize.Min, &p.TypicalBidSize.Max, &p.WinRate,
			&p.PricingBehavior, pq.Array(&p.PreferredClients),
			&lastActivity, &p.DataQuality, &p.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning competitor profile")
		}
		p.LastActivityAt = lastActivity.Time
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating competitor profiles")
	}
	return out, nil
}

type tenderRepo struct {
	baseRepo
}

// NewTenderRepo builds the tender and results reader.
func NewTenderRepo(conn *postgres.Connection, log logging.Logger) reference.TenderRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &tenderRepo{baseRepo: baseRepo{conn: conn, log: log.Named("repo.tender")}}
}

func (r *tenderRepo) FindTender(ctx context.Context, id uuid.UUID) (*reference.Tender, error) {
	row := r.executor().QueryRowContext(ctx, `
		SELECT id, title, category, issuing_body, estimated_value, submission_due
		FROM tenders WHERE id = $1`, id)

	var t reference.Tender
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Category, &t.IssuingBody, &t.EstimatedValue, &due)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("tender %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading tender")
	}
	t.SubmissionDue = due.Time
	return &t, nil
}

func (r *tenderRepo) FindResultsSince(ctx context.Context, category, issuingBody string, cutoff time.Time) ([]*reference.TenderResult, error) {
	rows, err := r.executor().QueryContext(ctx, `
		SELECT id, tender_id, category, issuing_body, winner_name, winning_price, bidder_count, decided_at
		FROM tender_results
		WHERE (category = $1 OR issuing_body = $2) AND decided_at >= $3
		ORDER BY decided_at DESC`, category, issuingBody, cutoff)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing tender results")
	}
	defer rows.Close()

	var out []*reference.TenderResult
	for rows.Next() {
		var res reference.TenderResult
		err := rows.Scan(&res.ID, &res.TenderID, &res.Category, &res.IssuingBody,
			&res.WinnerName, &res.WinningPrice, &res.BidderCount, &res.DecidedAt)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning tender result")
		}
		out = append(out, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating tender results")
	}
	return out, nil
}
