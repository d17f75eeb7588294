package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agriconnect/whatsapp-backend/internal/config"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func TestEnsureDefaultFarmerCreatesMissingProfile(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE "profiles"."user_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "display_name", "role"}))
	mock.ExpectExec(`INSERT INTO "profiles"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	profile, err := EnsureDefaultFarmer(db, config.DefaultFarmerID)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultFarmerID, profile.UserID)
	assert.Equal(t, "farmer", profile.Role)
	assert.NotEmpty(t, profile.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDefaultFarmerKeepsExistingProfile(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE "profiles"."user_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "display_name", "role"}).
			AddRow("9d4a0d77-0000-4000-8000-000000000005", config.DefaultFarmerID, "Green Acres", "farmer"))

	profile, err := EnsureDefaultFarmer(db, config.DefaultFarmerID)
	require.NoError(t, err)
	assert.Equal(t, "Green Acres", profile.DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDefaultFarmerError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "profiles"`).
		WillReturnError(errors.New("connection reset"))

	_, err := EnsureDefaultFarmer(db, config.DefaultFarmerID)
	assert.ErrorContains(t, err, "ensure default farmer")
}
