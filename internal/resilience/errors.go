package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classes that are worth another attempt.
const (
	pgClassConnection   = "08" // connection_exception
	pgClassResources    = "53" // insufficient_resources
	pgCannotConnectNow  = "57P03"
	pgSerializationFail = "40001"
	pgDeadlockDetected  = "40P01"
)

// IsTransient reports whether err is likely to succeed on retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, pgClassConnection),
			strings.HasPrefix(pgErr.Code, pgClassResources),
			pgErr.Code == pgCannotConnectNow,
			pgErr.Code == pgSerializationFail,
			pgErr.Code == pgDeadlockDetected:
			return true
		}
		return false
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"database is locked",
		"sqlite_busy",
		"connection reset",
		"connection refused",
		"broken pipe",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
