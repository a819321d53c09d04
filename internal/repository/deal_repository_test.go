package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db, mock
}

func TestGormDealRepository_Summarize(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDealRepository(db)

	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	avgWon := 200.0

	mock.ExpectQuery("SELECT status").
		WithArgs(string(models.DealStatusWon), sqlmock.AnyArg(), uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "total_amount", "avg_won_amount", "new_deals"}).
			AddRow("won", 2, 400.0, avgWon, 1).
			AddRow("new", 3, 75.0, nil, 3))

	rows, err := repo.Summarize(42, nil, since)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, models.DealStatusWon, rows[0].Status)
	require.EqualValues(t, 2, rows[0].Count)
	require.InDelta(t, 400, rows[0].TotalAmount, 0.001)
	require.NotNil(t, rows[0].AvgWonAmount)
	require.InDelta(t, 200, *rows[0].AvgWonAmount, 0.001)

	require.Equal(t, models.DealStatusNew, rows[1].Status)
	require.Nil(t, rows[1].AvgWonAmount)
	require.EqualValues(t, 3, rows[1].NewDeals)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDealRepository_Summarize_OwnerScoped(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDealRepository(db)

	ownerID := uint64(7)

	mock.ExpectQuery("SELECT status").
		WithArgs(string(models.DealStatusWon), sqlmock.AnyArg(), uint64(42), ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "total_amount", "avg_won_amount", "new_deals"}))

	rows, err := repo.Summarize(42, &ownerID, time.Now())
	require.NoError(t, err)
	require.Empty(t, rows)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDealRepository_FunnelCounts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDealRepository(db)

	mock.ExpectQuery("SELECT stage").
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"stage", "status", "count"}).
			AddRow("qualification", "new", 5).
			AddRow("closed", "won", 2))

	rows, err := repo.FunnelCounts(42, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, models.DealStageQualification, rows[0].Stage)
	require.Equal(t, models.DealStatusNew, rows[0].Status)
	require.EqualValues(t, 5, rows[0].Count)
	require.Equal(t, models.DealStageClosed, rows[1].Stage)

	require.NoError(t, mock.ExpectationsWereMet())
}
