package checkin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanskruthi/fest-service/internal/lock"
)

func TestMutator_CheckInOnce(t *testing.T) {
	regs := newMemRegistrations(alice)
	att := newMemAttendance(regs)
	fixed := time.Date(2025, 5, 17, 9, 30, 0, 0, time.UTC)
	m := NewMutator(att, lock.NewLocalLocker(), time.Second)
	m.now = func() time.Time { return fixed }

	rec, err := m.CheckIn(context.Background(), &Attendee{Registration: alice})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, fixed, rec.CheckInTime)
	assert.Equal(t, "Alice Rao", rec.FullName)

	again, err := m.CheckIn(context.Background(), &Attendee{Registration: alice})
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
	require.NotNil(t, again)
	assert.Equal(t, rec.ID, again.ID)
}

func TestMutator_ConcurrentCheckInsCreateOneRecord(t *testing.T) {
	regs := newMemRegistrations(alice)
	att := newMemAttendance(regs)
	m := NewMutator(att, lock.NewLocalLocker(), time.Second)

	const consoles = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < consoles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.CheckIn(context.Background(), &Attendee{Registration: alice})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, ErrAlreadyCheckedIn) || errors.Is(err, ErrIdentityLocked), err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, att.count())
}

func TestMutator_LockedIdentity(t *testing.T) {
	regs := newMemRegistrations(alice)
	att := newMemAttendance(regs)
	locker := lock.NewLocalLocker()
	m := NewMutator(att, locker, time.Second)

	release, err := locker.Acquire(context.Background(), "checkin:"+alice.UserID, time.Minute)
	require.NoError(t, err)

	_, err = m.CheckIn(context.Background(), &Attendee{Registration: alice})
	require.ErrorIs(t, err, ErrIdentityLocked)

	require.NoError(t, release(context.Background()))
	_, err = m.CheckIn(context.Background(), &Attendee{Registration: alice})
	require.NoError(t, err)
}

func TestMutator_CheckOut(t *testing.T) {
	regs := newMemRegistrations(alice)
	att := newMemAttendance(regs)
	m := NewMutator(att, nil, 0)

	require.ErrorIs(t, m.CheckOut(context.Background(), &Attendee{Registration: alice}), ErrNotCheckedIn)

	rec := att.checkIn(alice.UserID, alice.FullName, time.Now())
	a := &Attendee{Registration: alice, AttendanceID: rec.ID}
	require.NoError(t, m.CheckOut(context.Background(), a))
	assert.Equal(t, 0, att.count())

	require.ErrorIs(t, m.CheckOut(context.Background(), a), ErrNotCheckedIn, "record already gone")
}

func TestMutator_StoreFailure(t *testing.T) {
	regs := newMemRegistrations(alice)
	att := newMemAttendance(regs)
	att.deleteErr = errors.New("timeout")
	m := NewMutator(att, nil, 0)

	rec := att.checkIn(alice.UserID, alice.FullName, time.Now())
	err := m.CheckOut(context.Background(), &Attendee{Registration: alice, AttendanceID: rec.ID})
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "check out", storeErr.Op)
	assert.Equal(t, 1, att.count())
}

func TestMutator_NoAttendee(t *testing.T) {
	m := NewMutator(newMemAttendance(newMemRegistrations()), nil, 0)
	_, err := m.CheckIn(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoAttendee)
	assert.ErrorIs(t, m.CheckOut(context.Background(), nil), ErrNoAttendee)
}

func TestResolver(t *testing.T) {
	regs := newMemRegistrations(alice)
	att := newMemAttendance(regs)
	r := NewResolver(regs, att)

	_, err := r.Resolve(context.Background(), "ghost", ModeCheckIn)
	require.ErrorIs(t, err, ErrUnknownIdentity)

	_, err = r.Resolve(context.Background(), "   ", ModeCheckIn)
	require.ErrorIs(t, err, ErrUnknownIdentity)

	res, err := r.Resolve(context.Background(), " "+alice.UserID+"\n", ModeCheckIn)
	require.NoError(t, err)
	assert.Nil(t, res.Message)
	assert.False(t, res.Attendee.CheckedIn())

	att.checkIn(alice.UserID, alice.FullName, time.Now())
	res, err = r.Resolve(context.Background(), alice.UserID, ModeCheckOut)
	require.NoError(t, err)
	assert.Nil(t, res.Message)
	assert.True(t, res.Attendee.CanCheckOut())
}
