package api

import (
	"context"
	"sync"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/notify"
	"github.com/ashureev/swasthya-bandhu/internal/store"
)

type fakeRepo struct {
	mu           sync.Mutex
	users        map[string]*domain.User
	doctors      []domain.Doctor
	caretakers   []domain.Caretaker
	family       map[string][]domain.FamilyMember
	appointments []domain.Appointment
	nextMemberID int64
	pingErr      error
	listErr      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      make(map[string]*domain.User),
		doctors:    append([]domain.Doctor(nil), store.SeedDoctors...),
		caretakers: append([]domain.Caretaker(nil), store.SeedCaretakers...),
		family:     make(map[string][]domain.FamilyMember),
	}
}

func (f *fakeRepo) GetUser(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) UpsertUser(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	if old := f.users[u.VisitorID]; old != nil {
		cp.Language = old.Language
	}
	f.users[u.VisitorID] = &cp
	return nil
}

func (f *fakeRepo) UpdateLastSeen(_ context.Context, id string, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.users[id]; u != nil {
		u.LastSeenAt = t
	}
	return nil
}

func (f *fakeRepo) SetLanguage(_ context.Context, id string, lang domain.Language) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	if u == nil {
		return store.ErrNotFound
	}
	u.Language = lang
	return nil
}

func (f *fakeRepo) ListDoctors(_ context.Context, specialist string) ([]domain.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.Doctor{}
	for _, d := range f.doctors {
		if d.Specialist == specialist {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetDoctor(_ context.Context, id int) (*domain.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if d.ID == id {
			cp := d
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) ListCaretakers(_ context.Context) ([]domain.Caretaker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Caretaker(nil), f.caretakers...), nil
}

func (f *fakeRepo) ListFamilyMembers(_ context.Context, id string) ([]domain.FamilyMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.FamilyMember{}, f.family[id]...), nil
}

func (f *fakeRepo) AddFamilyMember(_ context.Context, m *domain.FamilyMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMemberID++
	m.ID = f.nextMemberID
	f.family[m.VisitorID] = append(f.family[m.VisitorID], *m)
	return nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, a *domain.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.appointments {
		if existing.DoctorID == a.DoctorID && existing.Date == a.Date && existing.Time == a.Time {
			return store.ErrSlotTaken
		}
	}
	f.appointments = append(f.appointments, *a)
	return nil
}

func (f *fakeRepo) ListAppointments(_ context.Context, id string) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Appointment
	for _, a := range f.appointments {
		if a.VisitorID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) Ping(context.Context) error { return f.pingErr }
func (f *fakeRepo) Close() error               { return nil }

func (f *fakeRepo) register(id, name, phone string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &domain.User{VisitorID: id, Username: name, PhoneNumber: phone, Registered: true, Language: domain.English}
}

func (f *fakeRepo) appointmentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appointments)
}

type fakeNotifier struct {
	mu       sync.Mutex
	bookings []notify.Booking
}

func (f *fakeNotifier) BookingConfirmed(b notify.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings = append(f.bookings, b)
}

func (f *fakeNotifier) all() []notify.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Booking(nil), f.bookings...)
}
