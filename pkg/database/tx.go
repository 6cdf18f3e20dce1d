package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"myFoodHub/pkg/logger"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	maxTxAttempts = 3
	txBackoff     = 20 * time.Millisecond
)

var domainErrors = []error{
	domain.ErrValidation,
	domain.ErrDuplicateIdentity,
	domain.ErrAlreadyRated,
	domain.ErrNotFound,
	domain.ErrInvalidAmount,
	domain.ErrInvalidLineItem,
	domain.ErrEmptyOrder,
	domain.ErrInvalidTransition,
	domain.ErrSelfDeletionForbidden,
	domain.ErrAlreadySettled,
	domain.ErrForbidden,
	domain.ErrStoreUnavailable,
}

// Transaction runs fn as one atomic unit. Retryable store failures are
// retried up to maxTxAttempts times; a rolled back unit never leaves partial
// writes behind, so rerunning fn is safe. Business errors returned by fn pass
// through untouched, anything else surfaces as domain.ErrStoreUnavailable.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt == maxTxAttempts {
			break
		}

		logger.Warn("Retrying transaction", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, ctx.Err())
		case <-time.After(time.Duration(attempt) * txBackoff):
		}
	}

	return classify(err)
}

func classify(err error) error {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}

	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}

// IsRetryable reports whether err is a transient store failure.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// IsUniqueViolation reports whether err was raised by a unique constraint.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
