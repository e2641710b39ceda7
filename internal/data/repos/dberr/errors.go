package dberr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/studyforge-backend/internal/domain"
)

// MapError classifies a gorm/driver failure as a domain.StorageError.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Code: classify(err), Op: op, Cause: err}
}

func classify(err error) domain.StorageCode {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.StorageNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.StorageConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.StorageRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505", "23503": // unique_violation, foreign_key_violation
			return domain.StorageConflict
		case "40001", "40P01", "55P03": // serialization/deadlock/lock_not_available
			return domain.StorageRetryable
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return domain.StorageConflict
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"):
		return domain.StorageRetryable
	default:
		return domain.StorageInternal
	}
}
