package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// RegistrationRepository defines persistence access for attendee registrations.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	GetByUserID(ctx context.Context, userID string) (*domain.Registration, error)
	List(ctx context.Context, limit, offset int) ([]domain.Registration, error)
}

const registrationColumns = `id, user_id, full_name, email, phone, college, department, year,
               photo_url, referral_source, metadata, created_at`

type registrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository returns a Postgres-backed implementation.
func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &registrationRepository{pool: pool}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	const query = `
        INSERT INTO registrations (id, user_id, full_name, email, phone, college, department, year,
                                   photo_url, referral_source, metadata, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	metadata, err := encodeMetadata(reg.Metadata)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	createdAt := time.Now().UTC()
	if _, err := r.pool.Exec(ctx, query,
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
		metadata,
		createdAt,
	); err != nil {
		return normalizePG(err)
	}
	reg.ID = id
	reg.CreatedAt = createdAt
	return nil
}

func (r *registrationRepository) GetByUserID(ctx context.Context, userID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE user_id=$1`
	reg, err := scanRegistration(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, normalizePG(err)
	}
	return reg, nil
}

func (r *registrationRepository) List(ctx context.Context, limit, offset int) ([]domain.Registration, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + registrationColumns + ` FROM registrations ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, normalizePG(err)
	}
	defer rows.Close()
	return collectRegistrations(rows, rows.Next, rows.Err)
}

func scanRegistration(row rowScanner) (*domain.Registration, error) {
	var (
		reg      domain.Registration
		metadata []byte
	)
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
	); err != nil {
		return nil, err
	}
	md, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}
	reg.Metadata = md
	return &reg, nil
}

func collectRegistrations(row rowScanner, next func() bool, rowsErr func() error) ([]domain.Registration, error) {
	var result []domain.Registration
	for next() {
		reg, err := scanRegistration(row)
		if err != nil {
			return nil, err
		}
		result = append(result, *reg)
	}
	return result, rowsErr()
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
