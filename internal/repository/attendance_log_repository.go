package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// AttendanceLogRepository stores the check-in/check-out audit trail.
type AttendanceLogRepository interface {
	Append(ctx context.Context, entry *domain.AttendanceLogEntry) error
	// List returns the newest entries first; an empty userID lists everyone.
	List(ctx context.Context, userID string, limit int) ([]domain.AttendanceLogEntry, error)
}

const defaultLogLimit = 100

type attendanceLogRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceLogRepository builds repository.
func NewAttendanceLogRepository(pool *pgxpool.Pool) AttendanceLogRepository {
	return &attendanceLogRepository{pool: pool}
}

func (r *attendanceLogRepository) Append(ctx context.Context, entry *domain.AttendanceLogEntry) error {
	const query = `
        INSERT INTO attendance_log (id, user_id, full_name, attendance_id, action, actor_type, console_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	id := uuid.NewString()
	if _, err := r.pool.Exec(ctx, query,
		id,
		entry.UserID,
		entry.FullName,
		entry.AttendanceID,
		entry.Action,
		entry.ActorType,
		entry.ConsoleID,
		entry.CreatedAt,
	); err != nil {
		return normalizePG(err)
	}
	entry.ID = id
	return nil
}

func (r *attendanceLogRepository) List(ctx context.Context, userID string, limit int) ([]domain.AttendanceLogEntry, error) {
	const query = `
        SELECT id, user_id, full_name, attendance_id, action, actor_type, console_id, created_at
        FROM attendance_log
        WHERE ($1 = '' OR user_id = $1)
        ORDER BY created_at DESC
        LIMIT $2`
	if limit <= 0 {
		limit = defaultLogLimit
	}
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, normalizePG(err)
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

func scanLogEntry(row rowScanner) (*domain.AttendanceLogEntry, error) {
	var entry domain.AttendanceLogEntry
	if err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.FullName,
		&entry.AttendanceID,
		&entry.Action,
		&entry.ActorType,
		&entry.ConsoleID,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}
