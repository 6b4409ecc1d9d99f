package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// AttendanceRepository stores live attendance records (the checkedIn collection).
type AttendanceRepository interface {
	Create(ctx context.Context, record *domain.AttendanceRecord) error
	FindByUserID(ctx context.Context, userID string) (*domain.AttendanceRecord, error)
	Delete(ctx context.Context, id string) error
	Roster(ctx context.Context) ([]domain.RosterEntry, error)
}

const rosterQuery = `
        SELECT r.id, r.user_id, r.full_name, r.email, r.phone, r.college, r.department, r.year,
               r.photo_url, r.referral_source, r.metadata, r.created_at,
               c.id, c.check_in_time
        FROM checked_in c
        JOIN registrations r ON r.user_id = c.user_id
        ORDER BY c.check_in_time DESC`

type attendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository returns a Postgres-backed implementation.
func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

func (r *attendanceRepository) Create(ctx context.Context, record *domain.AttendanceRecord) error {
	const query = `
        INSERT INTO checked_in (id, user_id, full_name, check_in_time)
        VALUES ($1,$2,$3,$4)`
	id := uuid.NewString()
	if _, err := r.pool.Exec(ctx, query, id, record.UserID, record.FullName, record.CheckInTime); err != nil {
		return normalizePG(err)
	}
	record.ID = id
	return nil
}

func (r *attendanceRepository) FindByUserID(ctx context.Context, userID string) (*domain.AttendanceRecord, error) {
	const query = `
        SELECT id, user_id, full_name, check_in_time
        FROM checked_in WHERE user_id=$1`
	var record domain.AttendanceRecord
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&record.ID,
		&record.UserID,
		&record.FullName,
		&record.CheckInTime,
	); err != nil {
		return nil, normalizePG(err)
	}
	return &record, nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM checked_in WHERE id=$1`, id)
	if err != nil {
		return normalizePG(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *attendanceRepository) Roster(ctx context.Context) ([]domain.RosterEntry, error) {
	rows, err := r.pool.Query(ctx, rosterQuery)
	if err != nil {
		return nil, normalizePG(err)
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

func scanRosterEntry(row rowScanner) (*domain.RosterEntry, error) {
	var (
		entry    domain.RosterEntry
		metadata []byte
	)
	reg := &entry.Registration
	if err := row.Scan(
		&reg.ID,
		&reg.UserID,
		&reg.FullName,
		&reg.Email,
		&reg.Phone,
		&reg.College,
		&reg.Department,
		&reg.Year,
		&reg.PhotoURL,
		&reg.ReferralSource,
		&metadata,
		&reg.CreatedAt,
		&entry.AttendanceID,
		&entry.CheckInTime,
	); err != nil {
		return nil, err
	}
	md, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	reg.Metadata = md
	return &entry, nil
}
