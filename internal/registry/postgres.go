package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of *pgxpool.Pool PostgresStore needs, narrowed so
// tests can substitute a pgxmock pool instead of a live connection.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore is the PostgresLoader backing the registry: tables
// resources, verification_log, known_fabrications per the external
// interface contract.
type PostgresStore struct {
	db querier
}

// NewPostgresStore builds a Postgres-backed PostgresLoader.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	if db == nil {
		panic("registry: pgx pool cannot be nil")
	}
	return &PostgresStore{db: db}
}

func (p *PostgresStore) LoadResources(ctx context.Context) ([]Resource, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, region, service_name, channels, hours_of_operation, languages,
		       description, situation_type, topical_tags, verified_on, verified_by,
		       verification_method, next_verification_due, status
		FROM resources
		ORDER BY region, service_name
	`)
	if err != nil {
		return nil, fmt.Errorf("registry: query resources: %w", err)
	}
	defer rows.Close()

	var out []Resource
	for rows.Next() {
		var (
			r            Resource
			channelsJSON []byte
			tagsJSON     []byte
		)
		if err := rows.Scan(&r.ID, &r.Region, &r.ServiceName, &channelsJSON, &r.HoursOfOperation,
			&r.Languages, &r.Description, &r.SituationType, &tagsJSON, &r.VerifiedOn, &r.VerifiedBy,
			&r.VerificationMethod, &r.NextVerificationDue, &r.Status); err != nil {
			return nil, fmt.Errorf("registry: scan resource row: %w", err)
		}
		if len(channelsJSON) > 0 {
			if err := json.Unmarshal(channelsJSON, &r.Channels); err != nil {
				return nil, fmt.Errorf("registry: decode channels for %s: %w", r.ID, err)
			}
		}
		if len(tagsJSON) > 0 {
			if err := json.Unmarshal(tagsJSON, &r.TopicalTags); err != nil {
				return nil, fmt.Errorf("registry: decode topical_tags for %s: %w", r.ID, err)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registry: iterate resource rows: %w", err)
	}
	return out, nil
}

func (p *PostgresStore) LoadFabrications(ctx context.Context) ([]KnownFabrication, error) {
	rows, err := p.db.Query(ctx, `
		SELECT value, kind, first_observed_at, last_observed_at, originating_model, notes
		FROM known_fabrications
	`)
	if err != nil {
		return nil, fmt.Errorf("registry: query known_fabrications: %w", err)
	}
	defer rows.Close()

	var out []KnownFabrication
	for rows.Next() {
		var f KnownFabrication
		if err := rows.Scan(&f.Value, &f.Kind, &f.FirstObservedAt, &f.LastObservedAt, &f.OriginatingModel, &f.Notes); err != nil {
			return nil, fmt.Errorf("registry: scan fabrication row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (p *PostgresStore) SaveResource(ctx context.Context, r Resource) error {
	channelsJSON, err := json.Marshal(r.Channels)
	if err != nil {
		return fmt.Errorf("registry: marshal channels: %w", err)
	}
	tagsJSON, err := json.Marshal(r.TopicalTags)
	if err != nil {
		return fmt.Errorf("registry: marshal topical_tags: %w", err)
	}

	_, err = p.db.Exec(ctx, `
		INSERT INTO resources (
			id, region, service_name, channels, hours_of_operation, languages,
			description, situation_type, topical_tags, verified_on, verified_by,
			verification_method, next_verification_due, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET
			region = EXCLUDED.region,
			service_name = EXCLUDED.service_name,
			channels = EXCLUDED.channels,
			hours_of_operation = EXCLUDED.hours_of_operation,
			languages = EXCLUDED.languages,
			description = EXCLUDED.description,
			situation_type = EXCLUDED.situation_type,
			topical_tags = EXCLUDED.topical_tags,
			verified_on = EXCLUDED.verified_on,
			verified_by = EXCLUDED.verified_by,
			verification_method = EXCLUDED.verification_method,
			next_verification_due = EXCLUDED.next_verification_due,
			status = EXCLUDED.status
	`, r.ID, r.Region, r.ServiceName, channelsJSON, r.HoursOfOperation, r.Languages,
		r.Description, r.SituationType, tagsJSON, r.VerifiedOn, r.VerifiedBy,
		r.VerificationMethod, r.NextVerificationDue, r.Status)
	if err != nil {
		return fmt.Errorf("registry: upsert resource %s: %w", r.ID, err)
	}
	return nil
}

func (p *PostgresStore) AppendVerificationEvent(ctx context.Context, e VerificationEvent) error {
	if e.AttemptAt.IsZero() {
		e.AttemptAt = time.Now().UTC()
	}
	_, err := p.db.Exec(ctx, `
		INSERT INTO verification_log (id, resource_id, attempt_at, verifier_id, method, outcome, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (resource_id, attempt_at) DO NOTHING
	`, e.ID, e.ResourceID, e.AttemptAt, e.VerifierID, e.Method, e.Outcome, e.Notes)
	if err != nil {
		return fmt.Errorf("registry: append verification event for %s: %w", e.ResourceID, err)
	}
	return nil
}
