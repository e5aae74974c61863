package registry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_LoadResources(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := &PostgresStore{db: mock}

	channelsJSON, _ := json.Marshal([]Channel{{Kind: ChannelPhone, Value: "988"}})
	tagsJSON, _ := json.Marshal([]TopicalTag{"suicide"})

	rows := pgxmock.NewRows([]string{
		"id", "region", "service_name", "channels", "hours_of_operation", "languages",
		"description", "situation_type", "topical_tags", "verified_on", "verified_by",
		"verification_method", "next_verification_due", "status",
	}).AddRow(
		"res-1", RegionUS, "988 Suicide & Crisis Lifeline", channelsJSON, "24/7", []string{"en", "es"},
		"National crisis line", SituationCrisis, tagsJSON, time.Now(), "ops",
		"phone_test_call", time.Now().Add(30*24*time.Hour), StatusActive,
	)
	mock.ExpectQuery("SELECT id, region, service_name").WillReturnRows(rows)

	resources, err := store.LoadResources(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 1)
	require.Equal(t, "res-1", resources[0].ID)
	require.Equal(t, ChannelPhone, resources[0].Channels[0].Kind)
	require.Equal(t, TopicalTag("suicide"), resources[0].TopicalTags[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResource(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := &PostgresStore{db: mock}

	r := Resource{
		ID:          "res-2",
		Region:      RegionUS,
		ServiceName: "Crisis Text Line",
		Channels:    []Channel{{Kind: ChannelText, Value: "741741"}},
		Status:      StatusActive,
	}

	mock.ExpectExec("INSERT INTO resources").
		WithArgs("res-2", RegionUS, "Crisis Text Line", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), StatusActive).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.SaveResource(context.Background(), r)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendVerificationEvent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := &PostgresStore{db: mock}

	event := VerificationEvent{
		ID:         "ver-1",
		ResourceID: "res-1",
		VerifierID: "verifyjob",
		Method:     "automated_http_check",
		Outcome:    OutcomeOK,
	}

	mock.ExpectExec("INSERT INTO verification_log").
		WithArgs("ver-1", "res-1", pgxmock.AnyArg(), "verifyjob", "automated_http_check", OutcomeOK, "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.AppendVerificationEvent(context.Background(), event)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
