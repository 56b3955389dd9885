package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

func TestAlertEventRepo_RecordAndListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertEventRepo(db)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC)

	events := []model.AlertEvent{
		{ID: "a", Family: model.AlertFamilyDelay, Action: model.AlertActionRaised, Subject: "42", Title: "Mesa 6", DelayMinutes: 25.5, At: base},
		{ID: "b", Family: model.AlertFamilyStock, Action: model.AlertActionRaised, Subject: "Camarón", Title: "Camarón", At: base.Add(500 * time.Millisecond)},
		{ID: "c", Family: model.AlertFamilyDelay, Action: model.AlertActionCleared, Subject: "42", Title: "Mesa 6", DelayMinutes: 27, At: base.Add(2 * time.Minute)},
	}
	require.NoError(t, repo.Record(ctx, events))

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "a", got[2].ID)

	assert.Equal(t, model.AlertFamilyDelay, got[2].Family)
	assert.Equal(t, model.AlertActionRaised, got[2].Action)
	assert.Equal(t, "42", got[2].Subject)
	assert.Equal(t, 25.5, got[2].DelayMinutes)
	assert.True(t, base.Equal(got[2].At))
	assert.True(t, base.Add(500*time.Millisecond).Equal(got[1].At))
}

func TestAlertEventRepo_ListRecent_Limit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertEventRepo(db)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 13, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Record(ctx, []model.AlertEvent{{
			ID: id, Family: model.AlertFamilyStock, Action: model.AlertActionRaised,
			Subject: "Pulpo", At: base.Add(time.Duration(i) * time.Second),
		}}))
	}

	got, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestAlertEventRepo_RecordIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertEventRepo(db)
	ctx := context.Background()

	e := model.AlertEvent{ID: "dup", Family: model.AlertFamilyStock, Action: model.AlertActionCleared, Subject: "Sal", At: time.Now()}
	require.NoError(t, repo.Record(ctx, []model.AlertEvent{e}))
	require.NoError(t, repo.Record(ctx, []model.AlertEvent{e}))
	require.NoError(t, repo.Record(ctx, nil))

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAlertEventRepo_ListRecent_Empty(t *testing.T) {
	db := setupTestDB(t)
	got, err := NewAlertEventRepo(db).ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
