package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/swasthya-bandhu/internal/domain"
	"github.com/ashureev/swasthya-bandhu/internal/shared"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type dialect struct {
	driver string
	schema string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

var sqliteDialect = dialect{
	driver: "sqlite",
	schema: `
	CREATE TABLE IF NOT EXISTS users (
		visitor_id TEXT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT 'english',
		registered INTEGER NOT NULL DEFAULT 0,
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_last_seen ON users(last_seen_at);

	CREATE TABLE IF NOT EXISTS doctors (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		specialist TEXT NOT NULL,
		hospital TEXT NOT NULL,
		experience INTEGER NOT NULL,
		consultation_fee REAL NOT NULL,
		phone_number TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_doctors_specialist ON doctors(specialist);

	CREATE TABLE IF NOT EXISTS caretakers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		service_type TEXT NOT NULL,
		experience INTEGER NOT NULL,
		hourly_rate REAL NOT NULL,
		phone_number TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS family_members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		visitor_id TEXT NOT NULL,
		name TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		relationship TEXT NOT NULL,
		is_emergency_contact INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_family_visitor ON family_members(visitor_id);

	CREATE TABLE IF NOT EXISTS appointments (
		reference TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		doctor_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_slot
		ON appointments(doctor_id, date, time) WHERE status = 'booked';
	CREATE INDEX IF NOT EXISTS idx_appointments_visitor ON appointments(visitor_id);
	`,
}

var postgresDialect = dialect{
	driver:   "postgres",
	numbered: true,
	schema: `
	CREATE TABLE IF NOT EXISTS users (
		visitor_id TEXT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT 'english',
		registered BOOLEAN NOT NULL DEFAULT FALSE,
		last_seen_at BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_last_seen ON users(last_seen_at);

	CREATE TABLE IF NOT EXISTS doctors (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		specialist TEXT NOT NULL,
		hospital TEXT NOT NULL,
		experience INTEGER NOT NULL,
		consultation_fee DOUBLE PRECISION NOT NULL,
		phone_number TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_doctors_specialist ON doctors(specialist);

	CREATE TABLE IF NOT EXISTS caretakers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		service_type TEXT NOT NULL,
		experience INTEGER NOT NULL,
		hourly_rate DOUBLE PRECISION NOT NULL,
		phone_number TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS family_members (
		id BIGSERIAL PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		name TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		relationship TEXT NOT NULL,
		is_emergency_contact BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_family_visitor ON family_members(visitor_id);

	CREATE TABLE IF NOT EXISTS appointments (
		reference TEXT PRIMARY KEY,
		visitor_id TEXT NOT NULL,
		doctor_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_slot
		ON appointments(doctor_id, date, time) WHERE status = 'booked';
	CREATE INDEX IF NOT EXISTS idx_appointments_visitor ON appointments(visitor_id);
	`,
}

// SQLStore implements Repository on database/sql. It speaks SQLite (modernc)
// and Postgres (lib/pq).
type SQLStore struct {
	db         *sql.DB
	dialect    dialect
	maxRetries int
	baseDelay  time.Duration
}

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithRetry sets how often writes are retried on SQLite lock conflicts and
// the base delay of the exponential backoff.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(s *SQLStore) {
		if maxRetries >= 0 {
			s.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			s.baseDelay = baseDelay
		}
	}
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string, opts ...Option) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL for concurrent readers; busy_timeout applies to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open(sqliteDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return open(db, sqliteDialect, opts)
}

// NewPostgres creates a Postgres-backed repository from a DSN.
func NewPostgres(dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return open(db, postgresDialect, opts)
}

func open(db *sql.DB, d dialect, opts []Option) (*SQLStore, error) {
	s := &SQLStore{
		db:         db,
		dialect:    d,
		maxRetries: 3,
		baseDelay:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if err := s.seed(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed directory: %w", err)
	}
	return s, nil
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(s.dialect.schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders for drivers that number them.
func (s *SQLStore) rebind(query string) string {
	if !s.dialect.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// withRetry runs fn, retrying SQLite busy/locked failures with exponential backoff.
func (s *SQLStore) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for i := 0; i <= s.maxRetries; i++ {
		err = fn()
		if err == nil || !shared.IsSQLiteConflictError(err) {
			return err
		}
		if i == s.maxRetries {
			break
		}
		delay := s.baseDelay * time.Duration(1<<i)
		slog.Debug("database write conflicted, retrying",
			"op", op,
			"attempt", i+1,
			"delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", op, s.maxRetries+1, err)
}

// Ping verifies database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetUser retrieves a visitor by ID.
func (s *SQLStore) GetUser(ctx context.Context, visitorID string) (*domain.User, error) {
	query := s.rebind(`
		SELECT visitor_id, username, phone_number, language, registered,
		       last_seen_at, created_at, updated_at
		FROM users WHERE visitor_id = ?`)

	var user domain.User
	var lang string
	var lastSeen, createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx, query, visitorID).Scan(
		&user.VisitorID, &user.Username, &user.PhoneNumber, &lang, &user.Registered,
		&lastSeen, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.Language = domain.Language(lang)
	user.LastSeenAt = time.Unix(lastSeen, 0)
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)
	return &user, nil
}

// UpsertUser creates or updates a visitor record. The language of an
// existing visitor is only changed through SetLanguage.
func (s *SQLStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := s.rebind(`
	INSERT INTO users (visitor_id, username, phone_number, language, registered, last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(visitor_id) DO UPDATE SET
		username = excluded.username,
		phone_number = excluded.phone_number,
		registered = excluded.registered,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`)

	lang := user.Language
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	return s.withRetry(ctx, "upsert user", func() error {
		_, err := s.db.ExecContext(ctx, query,
			user.VisitorID, user.Username, user.PhoneNumber, string(lang), user.Registered,
			user.LastSeenAt.Unix(), user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		return nil
	})
}

// UpdateLastSeen updates the last_seen_at timestamp for a visitor.
func (s *SQLStore) UpdateLastSeen(ctx context.Context, visitorID string, lastSeen time.Time) error {
	query := s.rebind(`UPDATE users SET last_seen_at = ?, updated_at = ? WHERE visitor_id = ?`)
	return s.withRetry(ctx, "update last_seen", func() error {
		result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), visitorID)
		if err != nil {
			return fmt.Errorf("update last_seen: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rows == 0 {
			slog.Warn("UpdateLastSeen affected 0 rows", "visitor_id", visitorID)
		}
		return nil
	})
}

// SetLanguage stores the visitor's language preference.
func (s *SQLStore) SetLanguage(ctx context.Context, visitorID string, lang domain.Language) error {
	query := s.rebind(`UPDATE users SET language = ?, updated_at = ? WHERE visitor_id = ?`)
	return s.withRetry(ctx, "set language", func() error {
		result, err := s.db.ExecContext(ctx, query, string(lang), time.Now().Unix(), visitorID)
		if err != nil {
			return fmt.Errorf("set language: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

const doctorColumns = `id, name, specialist, hospital, experience, consultation_fee, phone_number, lat, lng`

type scanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row scanner) (domain.Doctor, error) {
	var d domain.Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialist, &d.Hospital, &d.Experience,
		&d.ConsultationFee, &d.PhoneNumber, &d.Lat, &d.Lng)
	return d, err
}

// ListDoctors returns the doctors of one specialist category ordered by ID.
func (s *SQLStore) ListDoctors(ctx context.Context, specialist string) ([]domain.Doctor, error) {
	query := s.rebind(`SELECT ` + doctorColumns + ` FROM doctors WHERE specialist = ? ORDER BY id`)
	rows, err := s.db.QueryContext(ctx, query, specialist)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close doctor rows", "error", closeErr)
		}
	}()

	doctors := []domain.Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor row: %w", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctors: %w", err)
	}
	return doctors, nil
}

// GetDoctor returns ErrNotFound for an unknown ID.
func (s *SQLStore) GetDoctor(ctx context.Context, id int) (*domain.Doctor, error) {
	query := s.rebind(`SELECT ` + doctorColumns + ` FROM doctors WHERE id = ?`)
	d, err := scanDoctor(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan doctor row: %w", err)
	}
	return &d, nil
}

// ListCaretakers returns every caretaker ordered by ID.
func (s *SQLStore) ListCaretakers(ctx context.Context) ([]domain.Caretaker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, service_type, experience, hourly_rate, phone_number FROM caretakers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query caretakers: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close caretaker rows", "error", closeErr)
		}
	}()

	caretakers := []domain.Caretaker{}
	for rows.Next() {
		var c domain.Caretaker
		if err := rows.Scan(&c.ID, &c.Name, &c.ServiceType, &c.Experience, &c.HourlyRate, &c.PhoneNumber); err != nil {
			return nil, fmt.Errorf("scan caretaker row: %w", err)
		}
		caretakers = append(caretakers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate caretakers: %w", err)
	}
	return caretakers, nil
}

// ListFamilyMembers returns a visitor's family members in insertion order.
func (s *SQLStore) ListFamilyMembers(ctx context.Context, visitorID string) ([]domain.FamilyMember, error) {
	query := s.rebind(`
		SELECT id, visitor_id, name, phone_number, relationship, is_emergency_contact
		FROM family_members WHERE visitor_id = ? ORDER BY id`)
	rows, err := s.db.QueryContext(ctx, query, visitorID)
	if err != nil {
		return nil, fmt.Errorf("query family members: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close family member rows", "error", closeErr)
		}
	}()

	members := []domain.FamilyMember{}
	for rows.Next() {
		var m domain.FamilyMember
		if err := rows.Scan(&m.ID, &m.VisitorID, &m.Name, &m.PhoneNumber, &m.Relationship, &m.IsEmergencyContact); err != nil {
			return nil, fmt.Errorf("scan family member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate family members: %w", err)
	}
	return members, nil
}

// AddFamilyMember inserts m and sets m.ID.
func (s *SQLStore) AddFamilyMember(ctx context.Context, m *domain.FamilyMember) error {
	query := s.rebind(`
	INSERT INTO family_members (visitor_id, name, phone_number, relationship, is_emergency_contact, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	RETURNING id`)

	return s.withRetry(ctx, "add family member", func() error {
		var id int64
		err := s.db.QueryRowContext(ctx, query,
			m.VisitorID, m.Name, m.PhoneNumber, m.Relationship, m.IsEmergencyContact, time.Now().Unix(),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert family member: %w", err)
		}
		m.ID = id
		return nil
	})
}

// CreateAppointment books a slot. A second booking of the same doctor, date
// and time fails with ErrSlotTaken.
func (s *SQLStore) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	query := s.rebind(`
	INSERT INTO appointments (reference, visitor_id, doctor_id, date, time, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`)

	if a.Status == "" {
		a.Status = domain.AppointmentBooked
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	return s.withRetry(ctx, "create appointment", func() error {
		_, err := s.db.ExecContext(ctx, query,
			a.Reference, a.VisitorID, a.DoctorID, a.Date, a.Time, string(a.Status), a.CreatedAt.Unix(),
		)
		if shared.IsUniqueViolation(err) {
			return ErrSlotTaken
		}
		if err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
}

// ListAppointments returns a visitor's appointments ordered by date and time.
func (s *SQLStore) ListAppointments(ctx context.Context, visitorID string) ([]domain.Appointment, error) {
	query := s.rebind(`
		SELECT reference, visitor_id, doctor_id, date, time, status, created_at
		FROM appointments WHERE visitor_id = ? ORDER BY date, time`)
	rows, err := s.db.QueryContext(ctx, query, visitorID)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close appointment rows", "error", closeErr)
		}
	}()

	var out []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		var status string
		var createdAt int64
		if err := rows.Scan(&a.Reference, &a.VisitorID, &a.DoctorID, &a.Date, &a.Time, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan appointment row: %w", err)
		}
		a.Status = domain.AppointmentStatus(status)
		a.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return out, nil
}
