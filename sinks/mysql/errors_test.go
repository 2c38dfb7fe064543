package mysql

import (
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "generic error",
			err:     errTest,
			wantErr: errTest,
		},
		{
			name:    "1146 no such table",
			err:     &mysql.MySQLError{Number: 1146, Message: "Table 'melbourne.toilet' doesn't exist"},
			wantErr: ErrTableNotFound,
		},
		{
			name:    "1045 access denied",
			err:     &mysql.MySQLError{Number: 1045, Message: "Access denied for user 'root'@'localhost'"},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "1044 database access denied",
			err:     &mysql.MySQLError{Number: 1044, Message: "Access denied for user 'app' to database 'melbourne'"},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "1049 unknown database",
			err:     &mysql.MySQLError{Number: 1049, Message: "Unknown database 'melbourne'"},
			wantErr: ErrUnknownDatabase,
		},
		{
			name:    "1054 unknown column",
			err:     &mysql.MySQLError{Number: 1054, Message: "Unknown column 'dp_washout' in 'field list'"},
			wantErr: ErrBadField,
		},
		{
			name:    "1048 bad null",
			err:     &mysql.MySQLError{Number: 1048, Message: "Column 'coordinates' cannot be null"},
			wantErr: ErrBadNull,
		},
		{
			name:    "invalid connection",
			err:     mysql.ErrInvalidConn,
			wantErr: ErrConnection,
		},
		{
			name:    "bad connection",
			err:     driver.ErrBadConn,
			wantErr: ErrConnection,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := mapError(tc.err)
			require.ErrorIs(t, err, tc.wantErr)

			var myErr *mysql.MySQLError
			if errors.As(tc.err, &myErr) {
				require.ErrorAs(t, err, &myErr, "the driver error stays reachable")
			}
		})
	}
}
