package mysql

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrTableNotFound   = errors.New("table does not exist")
	ErrAccessDenied    = errors.New("access denied")
	ErrUnknownDatabase = errors.New("unknown database")
	ErrBadField        = errors.New("unknown column")
	ErrBadNull         = errors.New("column cannot be null")
	ErrConnection      = errors.New("connection failed")
)

// server error numbers, see mysqld_error.h
const (
	erDBAccessDenied = 1044
	erAccessDenied   = 1045
	erBadDB          = 1049
	erBadNull        = 1048
	erBadField       = 1054
	erNoSuchTable    = 1146
)

func mapError(err error) error {
	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case erNoSuchTable:
			return fmt.Errorf("%w: %w", ErrTableNotFound, err)
		case erDBAccessDenied, erAccessDenied:
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		case erBadDB:
			return fmt.Errorf("%w: %w", ErrUnknownDatabase, err)
		case erBadField:
			return fmt.Errorf("%w: %w", ErrBadField, err)
		case erBadNull:
			return fmt.Errorf("%w: %w", ErrBadNull, err)
		}
	}

	return err
}
