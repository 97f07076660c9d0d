package sett

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
)

func newMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgres(db), mock
}

func TestPostgresCreate(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	st, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO setts`).
		WithArgs(42, "S1", "NH 123 456", 3, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sett := models.NewSett(42, models.SettEntry{ID: "S1", GridReference: "NH 123 456", Entrances: 3}, now)
	require.NoError(t, st.Create(context.Background(), sett))
}

func TestPostgresCreateWrapsFailure(t *testing.T) {
	st, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO setts`).WillReturnError(errors.New("connection reset"))

	err := st.Create(context.Background(), &models.Sett{ApplicationID: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert sett")
}

func TestPostgresListByApplicationsGroupsRows(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	st, mock := newMock(t)
	cols := []string{"id", "application_id", "sett", "grid_ref", "entrances", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM setts\s+WHERE application_id = ANY\(\$1\)`).
		WithArgs(pq.Array([]int64{7, 8})).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 7, "A", "NH 1 1", 2, now, now).
			AddRow(2, 7, "B", nil, nil, now, now).
			AddRow(3, 8, "C", "NH 3 3", 1, now, now))

	groups, err := st.ListByApplications(context.Background(), []models.ApplicationID{7, 8})
	require.NoError(t, err)
	require.Len(t, groups[7], 2)
	assert.Equal(t, "B", groups[7][1].Sett)
	assert.Empty(t, groups[7][1].GridRef)
	assert.Zero(t, groups[7][1].Entrances)
	require.Len(t, groups[8], 1)
	assert.Equal(t, models.ApplicationID(8), groups[8][0].ApplicationID)
}

func TestPostgresListByApplicationsSkipsEmptyInput(t *testing.T) {
	st, _ := newMock(t)
	groups, err := st.ListByApplications(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestPostgresDeleteByApplication(t *testing.T) {
	st, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM setts WHERE application_id = \$1`).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, st.DeleteByApplication(context.Background(), 42))
}
