package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cme-platform/config"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return gdb, mock
}

func TestHealthCheck(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectPing()
	assert.NoError(t, HealthCheck(context.Background(), gdb))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, HealthCheck(context.Background(), gdb))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheckNil(t *testing.T) {
	assert.Error(t, HealthCheck(context.Background(), nil))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	assert.True(t, IsDuplicateKey(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: purchase_order.order_no")))

	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(&mysqldriver.MySQLError{Number: 1045}))
	assert.False(t, IsDuplicateKey(gorm.ErrRecordNotFound))
}

func TestDialector(t *testing.T) {
	for _, driver := range []string{DriverMySQL, DriverPostgres, DriverSQLite} {
		d, err := Dialector(config.DatabaseConfig{Driver: driver, Host: "localhost", Port: 1, Database: "cme"})
		require.NoError(t, err)
		assert.Equal(t, driver, d.Name())
	}

	_, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestGormConfig(t *testing.T) {
	cfg := GormConfig(config.DatabaseConfig{})
	assert.True(t, cfg.TranslateError)
	assert.True(t, cfg.DisableForeignKeyConstraintWhenMigrating)
}
