package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsSQLiteConflictError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "busy", err: errors.New("sqlite: step: SQLITE_BUSY"), want: true},
		{name: "locked", err: fmt.Errorf("upsert: %w", errors.New("database is locked (5)")), want: true},
		{name: "other", err: errors.New("no such table"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsSQLiteConflictError(tt.err); got != tt.want {
				t.Errorf("IsSQLiteConflictError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sqlite", err: errors.New("constraint failed: UNIQUE constraint failed: appointments.doctor_id, appointments.date, appointments.time (2067)"), want: true},
		{name: "postgres", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), want: true},
		{name: "postgres fk", err: &pq.Error{Code: "23503"}, want: false},
		{name: "other", err: errors.New("connection refused"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
