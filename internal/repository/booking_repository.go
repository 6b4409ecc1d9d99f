package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanskruthi/fest-service/internal/domain"
)

// BookingRepository stores ticket bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
}

const bookingColumns = `id, user_id, full_name, email, phone, ticket_type, quantity, unit_price, amount, status, created_at`

type bookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository returns a Postgres-backed implementation.
func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	const query = `
        INSERT INTO bookings (` + bookingColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	id := uuid.NewString()
	createdAt := time.Now().UTC()
	if _, err := r.pool.Exec(ctx, query,
		id,
		booking.UserID,
		booking.FullName,
		booking.Email,
		booking.Phone,
		booking.TicketType,
		booking.Quantity,
		booking.UnitPrice,
		booking.Amount,
		booking.Status,
		createdAt,
	); err != nil {
		return normalizePG(err)
	}
	booking.ID = id
	booking.CreatedAt = createdAt
	return nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, normalizePG(err)
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

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	if err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.FullName,
		&booking.Email,
		&booking.Phone,
		&booking.TicketType,
		&booking.Quantity,
		&booking.UnitPrice,
		&booking.Amount,
		&booking.Status,
		&booking.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &booking, nil
}
