package types

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates a channel event with no usable identifying info.
	ErrValidation = errors.New("lead validation")
	// ErrConflict indicates a uniqueness violation on insert. Internal-only:
	// the upsert coordinator always converts it into a re-match-and-update.
	ErrConflict = errors.New("lead conflict")
	// ErrNotFound indicates the record store had no matching row.
	ErrNotFound = errors.New("lead not found")
	// ErrStorage indicates the record store failed for any other reason.
	ErrStorage = errors.New("lead storage")
)

// ValidationError tags an error as caller input validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// MapStorageError classifies record-store failures into the taxonomy above.
// Unique violations (Postgres 23505) become ErrConflict so the coordinator
// can detect the lost insert race without inspecting provider error codes.
func MapStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound), errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrConflict, fmt.Errorf("%s: %w", op, err))
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Join(ErrNotFound, fmt.Errorf("%s: %w", op, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.Join(ErrStorage, fmt.Errorf("%s: %w", op, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.TrimSpace(pgErr.Code) == "23505" {
			return errors.Join(ErrConflict, fmt.Errorf("%s: %w", op, err))
		}
		return errors.Join(ErrStorage, fmt.Errorf("%s: %w", op, err))
	}

	if msg := strings.ToLower(err.Error()); strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") {
		return errors.Join(ErrConflict, fmt.Errorf("%s: %w", op, err))
	}
	return errors.Join(ErrStorage, fmt.Errorf("%s: %w", op, err))
}
