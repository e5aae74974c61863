// Package audit holds the append-only CrisisEvent store: one record per
// elevated-risk turn, written by the orchestrator and updated only by the
// human review workflow.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of *pgxpool.Pool the store needs, narrowed so tests
// can substitute a pgxmock pool instead of a live connection.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ReviewStatus is the human-review lifecycle state of a CrisisEvent.
type ReviewStatus string

const (
	ReviewPending    ReviewStatus = "pending"
	ReviewAcknowledged ReviewStatus = "acknowledged"
	ReviewResolved   ReviewStatus = "resolved"
)

// CrisisEvent is the append-only audit record produced per elevated-risk
// turn. ResourcesSubstituted records resource ids, never literals.
type CrisisEvent struct {
	ID                       string       `json:"id"`
	UserID                   string       `json:"user_id"`
	ConversationID           string       `json:"conversation_id"`
	MessageID                string       `json:"message_id"`
	RiskLevel                string       `json:"risk_level"`
	TriggeredPatterns        []string     `json:"triggered_patterns"`
	AIFailureDetected        bool         `json:"ai_failure_detected"`
	ModelDegradationDetected bool         `json:"model_degradation_detected"`
	ConversationStopped      bool         `json:"conversation_stopped"`
	ResourcesSubstituted     []string     `json:"resources_substituted"`
	DetectedAt               time.Time    `json:"detected_at"`
	ReviewerStatus           ReviewStatus `json:"reviewer_status"`
}

// Store is the append-only Postgres-backed CrisisEvent log.
type Store struct {
	db querier
}

// NewStore builds a Store over an existing connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	if db == nil {
		panic("audit: pgx pool cannot be nil")
	}
	return &Store{db: db}
}

// Record appends a CrisisEvent, assigning an id and a detected_at timestamp
// if the caller left them unset.
func (s *Store) Record(ctx context.Context, e CrisisEvent) (CrisisEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.DetectedAt.IsZero() {
		e.DetectedAt = time.Now().UTC()
	}
	if e.ReviewerStatus == "" {
		e.ReviewerStatus = ReviewPending
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO crisis_events (
			id, user_id, conversation_id, message_id, risk_level,
			triggered_patterns, ai_failure_detected, model_degradation_detected,
			conversation_stopped, resources_substituted, detected_at, reviewer_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, e.ID, e.UserID, e.ConversationID, e.MessageID, e.RiskLevel,
		e.TriggeredPatterns, e.AIFailureDetected, e.ModelDegradationDetected,
		e.ConversationStopped, e.ResourcesSubstituted, e.DetectedAt, e.ReviewerStatus)
	if err != nil {
		return CrisisEvent{}, fmt.Errorf("audit: insert crisis event: %w", err)
	}
	return e, nil
}

// SetReviewerStatus is the only permitted mutation of an existing event:
// the human review workflow advancing its status.
func (s *Store) SetReviewerStatus(ctx context.Context, eventID string, status ReviewStatus) error {
	tag, err := s.db.Exec(ctx, `UPDATE crisis_events SET reviewer_status = $1 WHERE id = $2`, status, eventID)
	if err != nil {
		return fmt.Errorf("audit: update reviewer status for %s: %w", eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("audit: event %s not found", eventID)
	}
	return nil
}

// Filter specifies criteria for querying crisis events.
type Filter struct {
	ConversationID string
	RiskLevel      string
	ReviewerStatus ReviewStatus
	Since          time.Time
	Limit          int
}

// Query retrieves crisis events matching filter, most recent first.
func (s *Store) Query(ctx context.Context, filter Filter) ([]CrisisEvent, error) {
	query := `
		SELECT id, user_id, conversation_id, message_id, risk_level,
		       triggered_patterns, ai_failure_detected, model_degradation_detected,
		       conversation_stopped, resources_substituted, detected_at, reviewer_status
		FROM crisis_events
		WHERE 1=1
	`
	var args []any
	argIdx := 1

	addFilter := func(clause string, value any) {
		query += fmt.Sprintf(" AND %s $%d", clause, argIdx)
		args = append(args, value)
		argIdx++
	}

	if filter.ConversationID != "" {
		addFilter("conversation_id =", filter.ConversationID)
	}
	if filter.RiskLevel != "" {
		addFilter("risk_level =", filter.RiskLevel)
	}
	if filter.ReviewerStatus != "" {
		addFilter("reviewer_status =", filter.ReviewerStatus)
	}
	if !filter.Since.IsZero() {
		addFilter("detected_at >=", filter.Since)
	}

	query += " ORDER BY detected_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query crisis events: %w", err)
	}
	defer rows.Close()

	var out []CrisisEvent
	for rows.Next() {
		var e CrisisEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.ConversationID, &e.MessageID, &e.RiskLevel,
			&e.TriggeredPatterns, &e.AIFailureDetected, &e.ModelDegradationDetected,
			&e.ConversationStopped, &e.ResourcesSubstituted, &e.DetectedAt, &e.ReviewerStatus); err != nil {
			return nil, fmt.Errorf("audit: scan crisis event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
