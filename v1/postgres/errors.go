package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrRecordNotFound is returned when a query that expects a row finds none.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("duplicate key violation")

	// ErrForeignKey is returned on foreign key violations.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrInvalidData is returned when gorm rejects the value being written.
	ErrInvalidData = errors.New("invalid data")

	// ErrConnectivity marks failures to reach or stay connected to the server.
	// Callers treat it as fatal for the whole unit of work, unlike statement
	// level errors which only fail the current statement or transaction.
	ErrConnectivity = errors.New("postgres connectivity failure")
)

// TranslateError maps gorm and pgx errors onto the sentinels above.
// The original error stays in the chain so details are not lost.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case IsConnectivityError(err):
		return &classifiedError{kind: ErrConnectivity, err: err}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &classifiedError{kind: ErrRecordNotFound, err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &classifiedError{kind: ErrDuplicateKey, err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &classifiedError{kind: ErrForeignKey, err: err}
	case errors.Is(err, gorm.ErrInvalidData):
		return &classifiedError{kind: ErrInvalidData, err: err}
	}

	return err
}

// IsConnectivityError reports whether err means the server could not be
// reached or the connection was lost.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnectivity) {
		return true
	}
	// a cancelled caller is not a broken server
	if errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception, 57P01..57P03: server shutting down
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03"
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}

type classifiedError struct {
	kind error
	err  error
}

func (e *classifiedError) Error() string {
	return e.kind.Error() + ": " + e.err.Error()
}

func (e *classifiedError) Unwrap() []error {
	return []error{e.kind, e.err}
}
