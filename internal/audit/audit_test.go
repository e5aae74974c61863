package audit

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestStore_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := &Store{db: mock}

	mock.ExpectExec("INSERT INTO crisis_events").
		WithArgs(pgxmock.AnyArg(), "user-1", "conv-1", "msg-1", "high",
			[]string{"self_harm"}, false, false, false, pgxmock.AnyArg(), pgxmock.AnyArg(), ReviewPending).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	event, err := store.Record(context.Background(), CrisisEvent{
		UserID:            "user-1",
		ConversationID:    "conv-1",
		MessageID:         "msg-1",
		RiskLevel:         "high",
		TriggeredPatterns: []string{"self_harm"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)
	require.Equal(t, ReviewPending, event.ReviewerStatus)
	require.False(t, event.DetectedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetReviewerStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := &Store{db: mock}

	mock.ExpectExec("UPDATE crisis_events SET reviewer_status").
		WithArgs(ReviewAcknowledged, "event-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = store.SetReviewerStatus(context.Background(), "event-1", ReviewAcknowledged)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_SetReviewerStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := &Store{db: mock}

	mock.ExpectExec("UPDATE crisis_events SET reviewer_status").
		WithArgs(ReviewResolved, "missing-event").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = store.SetReviewerStatus(context.Background(), "missing-event", ReviewResolved)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Query(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := &Store{db: mock}

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "conversation_id", "message_id", "risk_level",
		"triggered_patterns", "ai_failure_detected", "model_degradation_detected",
		"conversation_stopped", "resources_substituted", "detected_at", "reviewer_status",
	})
	mock.ExpectQuery("SELECT id, user_id, conversation_id").WithArgs("conv-1").WillReturnRows(rows)

	events, err := store.Query(context.Background(), Filter{ConversationID: "conv-1", Limit: 10})
	require.NoError(t, err)
	require.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}
