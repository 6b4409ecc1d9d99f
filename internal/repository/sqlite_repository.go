package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// The sqlite repositories mirror the Postgres ones for single-device runs.

type sqliteRegistrationRepository struct {
	db *sql.DB
}

// NewSQLiteRegistrationRepository returns a sqlite-backed RegistrationRepository.
func NewSQLiteRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &sqliteRegistrationRepository{db: db}
}

func (r *sqliteRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	const query = `
        INSERT INTO registrations (id, user_id, full_name, email, phone, college, department, year,
                                   photo_url, referral_source, metadata, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`

	metadata, err := encodeMetadata(reg.Metadata)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	createdAt := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query,
		id,
		reg.UserID,
		reg.FullName,
		reg.Email,
		reg.Phone,
		reg.College,
		reg.Department,
		reg.Year,
		reg.PhotoURL,
		reg.ReferralSource,
		string(metadata),
		createdAt,
	); err != nil {
		return normalizeSQLite(err)
	}
	reg.ID = id
	reg.CreatedAt = createdAt
	return nil
}

func (r *sqliteRegistrationRepository) GetByUserID(ctx context.Context, userID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE user_id=?`
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, normalizeSQLite(err)
	}
	return reg, nil
}

func (r *sqliteRegistrationRepository) List(ctx context.Context, limit, offset int) ([]domain.Registration, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, normalizeSQLite(err)
	}
	defer rows.Close()
	return collectRegistrations(rows, rows.Next, rows.Err)
}

type sqliteAttendanceRepository struct {
	db *sql.DB
}

// NewSQLiteAttendanceRepository returns a sqlite-backed AttendanceRepository.
func NewSQLiteAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &sqliteAttendanceRepository{db: db}
}

func (r *sqliteAttendanceRepository) Create(ctx context.Context, record *domain.AttendanceRecord) error {
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO checked_in (id, user_id, full_name, check_in_time) VALUES (?,?,?,?)`,
		id, record.UserID, record.FullName, record.CheckInTime.UTC(),
	); err != nil {
		return normalizeSQLite(err)
	}
	record.ID = id
	return nil
}

func (r *sqliteAttendanceRepository) FindByUserID(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	var record domain.AttendanceRecord
	if err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, full_name, check_in_time FROM checked_in WHERE user_id=?`, userID,
	).Scan(&record.ID, &record.UserID, &record.FullName, &record.CheckInTime); err != nil {
		return nil, normalizeSQLite(err)
	}
	return &record, nil
}

func (r *sqliteAttendanceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checked_in WHERE id=?`, id)
	if err != nil {
		return normalizeSQLite(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteAttendanceRepository) Roster(ctx context.Context) ([]domain.RosterEntry, error) {
	rows, err := r.db.QueryContext(ctx, rosterQuery)
	if err != nil {
		return nil, normalizeSQLite(err)
	}
	defer rows.Close()

	var result []domain.RosterEntry
	for rows.Next() {
		entry, err := scanRosterEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

type sqliteBookingRepository struct {
	db *sql.DB
}

// NewSQLiteBookingRepository returns a sqlite-backed BookingRepository.
func NewSQLiteBookingRepository(db *sql.DB) BookingRepository {
	return &sqliteBookingRepository{db: db}
}

func (r *sqliteBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	id := uuid.NewString()
	createdAt := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		id,
		booking.UserID,
		booking.FullName,
		booking.Email,
		booking.Phone,
		booking.TicketType,
		booking.Quantity,
		booking.UnitPrice,
		booking.Amount,
		string(booking.Status),
		createdAt,
	); err != nil {
		return normalizeSQLite(err)
	}
	booking.ID = id
	booking.CreatedAt = createdAt
	return nil
}

func (r *sqliteBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, normalizeSQLite(err)
	}
	defer rows.Close()

	var result []domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *booking)
	}
	return result, rows.Err()
}

type sqliteAttendanceLogRepository struct {
	db *sql.DB
}

// NewSQLiteAttendanceLogRepository returns a sqlite-backed AttendanceLogRepository.
func NewSQLiteAttendanceLogRepository(db *sql.DB) AttendanceLogRepository {
	return &sqliteAttendanceLogRepository{db: db}
}

func (r *sqliteAttendanceLogRepository) Append(ctx context.Context, entry *domain.AttendanceLogEntry) error {
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO attendance_log (id, user_id, full_name, attendance_id, action, actor_type, console_id, created_at)
         VALUES (?,?,?,?,?,?,?,?)`,
		id, entry.UserID, entry.FullName, entry.AttendanceID, entry.Action, entry.ActorType, entry.ConsoleID, entry.CreatedAt.UTC(),
	); err != nil {
		return normalizeSQLite(err)
	}
	entry.ID = id
	return nil
}

func (r *sqliteAttendanceLogRepository) List(ctx context.Context, userID string, limit int) ([]domain.AttendanceLogEntry, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, full_name, attendance_id, action, actor_type, console_id, created_at
         FROM attendance_log
         WHERE (? = '' OR user_id = ?)
         ORDER BY created_at DESC, rowid DESC
         LIMIT ?`, userID, userID, limit)
	if err != nil {
		return nil, normalizeSQLite(err)
	}
	defer rows.Close()

	var result []domain.AttendanceLogEntry
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}
