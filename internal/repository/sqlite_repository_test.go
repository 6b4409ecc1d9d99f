package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskruthi/fest-service/internal/domain"
	"github.com/sanskruthi/fest-service/internal/persistence"
)

func openTestDB(t *testing.T) *persistence.SQLite {
	t.Helper()
	db, err := persistence.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedRegistration(t *testing.T, repo RegistrationRepository, userID, name string) *domain.Registration {
	t.Helper()
	reg := &domain.Registration{
		UserID:   userID,
		FullName: name,
		Email:    userID + "@example.com",
		Phone:    "9876543210",
		College:  "Dr. AIT",
		Metadata: map[string]string{"ticketType": "general"},
	}
	require.NoError(t, repo.Create(context.Background(), reg))
	return reg
}

func TestSQLiteRegistrations_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRegistrationRepository(db.DB)
	ctx := context.Background()

	created := seedRegistration(t, repo, "U2", "Asha Rao")
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByUserID(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Asha Rao", got.FullName)
	assert.Equal(t, "general", got.Metadata["ticketType"])
}

func TestSQLiteRegistrations_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRegistrationRepository(db.DB)

	_, err := repo.GetByUserID(context.Background(), "U1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRegistrations_DuplicateIdentity(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRegistrationRepository(db.DB)

	seedRegistration(t, repo, "U2", "Asha Rao")
	err := repo.Create(context.Background(), &domain.Registration{UserID: "U2", FullName: "Again", Email: "x", Phone: "1"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSQLiteRegistrations_List(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRegistrationRepository(db.DB)

	seedRegistration(t, repo, "U1", "One")
	seedRegistration(t, repo, "U2", "Two")

	all, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	page, err := repo.List(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSQLiteAttendance_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	regs := NewSQLiteRegistrationRepository(db.DB)
	attendance := NewSQLiteAttendanceRepository(db.DB)
	ctx := context.Background()

	seedRegistration(t, regs, "U2", "Asha Rao")

	_, err := attendance.FindByUserID(ctx, "U2")
	require.ErrorIs(t, err, ErrNotFound)

	now := time.Now().UTC().Truncate(time.Second)
	record := &domain.AttendanceRecord{UserID: "U2", FullName: "Asha Rao", CheckInTime: now}
	require.NoError(t, attendance.Create(ctx, record))
	assert.NotEmpty(t, record.ID)

	found, err := attendance.FindByUserID(ctx, "U2")
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.True(t, now.Equal(found.CheckInTime))

	roster, err := attendance.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "U2", roster[0].Registration.UserID)
	assert.Equal(t, record.ID, roster[0].AttendanceID)

	require.NoError(t, attendance.Delete(ctx, record.ID))
	assert.ErrorIs(t, attendance.Delete(ctx, record.ID), ErrNotFound)

	roster, err = attendance.Roster(ctx)
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestSQLiteAttendance_OneLiveRecordPerIdentity(t *testing.T) {
	db := openTestDB(t)
	regs := NewSQLiteRegistrationRepository(db.DB)
	attendance := NewSQLiteAttendanceRepository(db.DB)
	ctx := context.Background()

	seedRegistration(t, regs, "U2", "Asha Rao")

	require.NoError(t, attendance.Create(ctx, &domain.AttendanceRecord{UserID: "U2", FullName: "Asha Rao", CheckInTime: time.Now()}))
	err := attendance.Create(ctx, &domain.AttendanceRecord{UserID: "U2", FullName: "Asha Rao", CheckInTime: time.Now()})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSQLiteRoster_OrderedNewestFirst(t *testing.T) {
	db := openTestDB(t)
	regs := NewSQLiteRegistrationRepository(db.DB)
	attendance := NewSQLiteAttendanceRepository(db.DB)
	ctx := context.Background()

	seedRegistration(t, regs, "U1", "Early")
	seedRegistration(t, regs, "U2", "Late")

	base := time.Date(2025, 5, 17, 10, 0, 0, 0, time.UTC)
	require.NoError(t, attendance.Create(ctx, &domain.AttendanceRecord{UserID: "U1", FullName: "Early", CheckInTime: base}))
	require.NoError(t, attendance.Create(ctx, &domain.AttendanceRecord{UserID: "U2", FullName: "Late", CheckInTime: base.Add(time.Hour)}))

	roster, err := attendance.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "U2", roster[0].Registration.UserID)
	assert.Equal(t, "U1", roster[1].Registration.UserID)
}

func TestSQLiteBookings(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteBookingRepository(db.DB)
	ctx := context.Background()

	booking := &domain.Booking{
		UserID:     "U2",
		FullName:   "Asha Rao",
		Email:      "asha@example.com",
		Phone:      "9876543210",
		TicketType: "vip",
		Quantity:   2,
		UnitPrice:  599,
		Amount:     1198,
		Status:     domain.BookingStatusPending,
	}
	require.NoError(t, repo.Create(ctx, booking))
	assert.NotEmpty(t, booking.ID)

	list, err := repo.ListByUser(ctx, "U2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.BookingStatusPending, list[0].Status)
	assert.Equal(t, 1198, list[0].Amount)

	other, err := repo.ListByUser(ctx, "U3")
	require.NoError(t, err)
	assert.Empty(t, other)
}
