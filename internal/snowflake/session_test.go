package snowflake

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockSession(t *testing.T) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Session{db: db, fallback: DefaultFallbackWarehouse, log: zap.NewNop()}, mock
}

func warehouseRows(names ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"name", "state", "type", "size"})
	for _, name := range names {
		rows.AddRow(name, "STARTED", "STANDARD", "X-Small")
	}
	return rows
}

func TestSetWarehouse(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		fallback  string
		available []string
		activated string
	}{
		{
			name:      "requested warehouse exists",
			requested: "LOAD_WH",
			available: []string{"COMPUTE_WH", "LOAD_WH"},
			activated: "LOAD_WH",
		},
		{
			name:      "membership check is case-insensitive",
			requested: "load_wh",
			available: []string{"LOAD_WH"},
			activated: "load_wh",
		},
		{
			name:      "missing warehouse falls back without error",
			requested: "NO_SUCH_WH",
			available: []string{"COMPUTE_WH"},
			activated: "COMPUTE_WH",
		},
		{
			name:      "fallback name is configurable",
			requested: "NO_SUCH_WH",
			fallback:  "REPORTING_WH",
			available: []string{"COMPUTE_WH", "REPORTING_WH"},
			activated: "REPORTING_WH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, mock := newMockSession(t)
			if tt.fallback != "" {
				session.fallback = tt.fallback
			}

			mock.ExpectQuery("SHOW WAREHOUSES").WillReturnRows(warehouseRows(tt.available...))
			mock.ExpectExec(regexp.QuoteMeta(`USE WAREHOUSE "` + tt.activated + `"`)).
				WillReturnResult(sqlmock.NewResult(0, 0))

			err := session.SetWarehouse(context.Background(), tt.requested)
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSetWarehouseListFailure(t *testing.T) {
	session, mock := newMockSession(t)

	mock.ExpectQuery("SHOW WAREHOUSES").WillReturnError(errors.New("permission denied"))

	err := session.SetWarehouse(context.Background(), "COMPUTE_WH")
	require.Error(t, err)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, "list warehouses", qerr.Intent)
}

func TestSetWarehouseUseFailure(t *testing.T) {
	session, mock := newMockSession(t)

	mock.ExpectQuery("SHOW WAREHOUSES").WillReturnRows(warehouseRows("COMPUTE_WH"))
	mock.ExpectExec(regexp.QuoteMeta(`USE WAREHOUSE "COMPUTE_WH"`)).
		WillReturnError(errors.New("warehouse suspended"))

	err := session.SetWarehouse(context.Background(), "COMPUTE_WH")
	require.Error(t, err)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, "set warehouse", qerr.Intent)
}

func TestSetRole(t *testing.T) {
	session, mock := newMockSession(t)

	mock.ExpectExec(regexp.QuoteMeta(`USE ROLE "SALES"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, session.SetRole(context.Background(), "SALES"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryWithoutConnection(t *testing.T) {
	session := &Session{log: zap.NewNop(), fallback: DefaultFallbackWarehouse}

	_, err := session.Query(context.Background(), "list databases", "SHOW DATABASES")
	require.Error(t, err)

	var cerr *ConnectionError
	require.ErrorAs(t, err, &cerr)
}

func TestCloseUnconnected(t *testing.T) {
	session := &Session{log: zap.NewNop()}
	require.NoError(t, session.Close())
}

func TestQuoteIdentifier(t *testing.T) {
	require.Equal(t, `"COMPUTE_WH"`, quoteIdentifier("COMPUTE_WH"))
	require.Equal(t, `"we""ird"`, quoteIdentifier(`we"ird`))
}
