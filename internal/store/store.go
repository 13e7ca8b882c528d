// Package store provides persistence for visitors, the care directory and bookings.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSlotTaken is returned when the doctor already has a booking at that date and time.
	ErrSlotTaken = errors.New("slot already booked")
)

// Repository defines the interface for data persistence.
type Repository interface {
	// GetUser returns nil, nil when the visitor is unknown.
	GetUser(ctx context.Context, visitorID string) (*domain.User, error)
	UpsertUser(ctx context.Context, user *domain.User) error
	UpdateLastSeen(ctx context.Context, visitorID string, lastSeen time.Time) error
	SetLanguage(ctx context.Context, visitorID string, lang domain.Language) error

	ListDoctors(ctx context.Context, specialist string) ([]domain.Doctor, error)
	GetDoctor(ctx context.Context, id int) (*domain.Doctor, error)
	ListCaretakers(ctx context.Context) ([]domain.Caretaker, error)

	ListFamilyMembers(ctx context.Context, visitorID string) ([]domain.FamilyMember, error)
	// AddFamilyMember stores m and sets its ID.
	AddFamilyMember(ctx context.Context, m *domain.FamilyMember) error

	// CreateAppointment returns ErrSlotTaken on a double booking.
	CreateAppointment(ctx context.Context, a *domain.Appointment) error
	ListAppointments(ctx context.Context, visitorID string) ([]domain.Appointment, error)

	Ping(ctx context.Context) error
	Close() error
}
