package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapStorageErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"gorm duplicate", gorm.ErrDuplicatedKey, ErrConflict},
		{"gorm not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"pg other error", &pgconn.PgError{Code: "42P01"}, ErrStorage},
		{"duplicate key text", errors.New(`duplicate key value violates unique constraint "uq_leads_brand_phone"`), ErrConflict},
		{"plain error", errors.New("connection refused"), ErrStorage},
		{"already classified", fmt.Errorf("wrapped: %w", ErrConflict), ErrConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapStorageError("test op", tc.in)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("got %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := ValidationError("channel event has no phone or email")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("not tagged as validation: %v", err)
	}
	if errors.Is(err, ErrConflict) {
		t.Fatal("validation error must not match conflict")
	}
}
