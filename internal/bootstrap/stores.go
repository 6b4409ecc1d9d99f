// Package bootstrap assembles the backing stores shared by the API server and the
// festctl command.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/api/http/handlers"
	"github.com/sanskruthi/fest-service/internal/config"
	"github.com/sanskruthi/fest-service/internal/lock"
	"github.com/sanskruthi/fest-service/internal/persistence"
	"github.com/sanskruthi/fest-service/internal/repository"
)

// Stores holds the repositories for the configured driver plus the locker
// consoles coordinate through.
type Stores struct {
	Registrations repository.RegistrationRepository
	Attendance    repository.AttendanceRepository
	Bookings      repository.BookingRepository
	AttendanceLog repository.AttendanceLogRepository
	Locker        lock.Locker
	Checks        []handlers.DependencyCheck

	closers []func()
}

// OpenStores connects to the document store selected by cfg.Store.Driver.
// Redis is optional; without it consoles lock in-process.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	s := &Stores{}

	switch cfg.Store.Driver {
	case "postgres":
		pg, err := persistence.OpenPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pg.Close)
		pool := pg.Pool
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				s.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		s.Registrations = repository.NewRegistrationRepository(pool)
		s.Attendance = repository.NewAttendanceRepository(pool)
		s.Bookings = repository.NewBookingRepository(pool)
		s.AttendanceLog = repository.NewAttendanceLogRepository(pool)
		s.Checks = append(s.Checks, handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping})
	case "sqlite":
		db, err := persistence.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = db.Close() })
		s.Registrations = repository.NewSQLiteRegistrationRepository(db.DB)
		s.Attendance = repository.NewSQLiteAttendanceRepository(db.DB)
		s.Bookings = repository.NewSQLiteBookingRepository(db.DB)
		s.AttendanceLog = repository.NewSQLiteAttendanceLogRepository(db.DB)
		s.Checks = append(s.Checks, handlers.DependencyCheck{Name: "sqlite", Ping: db.Ping})
		logger.Info("opened sqlite store", zap.String("path", cfg.SQLite.Path))
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	rdb, err := persistence.DialRedis(ctx, cfg.Redis, logger)
	switch {
	case err == nil:
		s.Locker = lock.NewRedisLocker(rdb.Client, cfg.App.Name+":lock:")
		s.Checks = append(s.Checks, handlers.DependencyCheck{Name: "redis", Ping: rdb.Ping})
		s.closers = append(s.closers, rdb.Close)
	case errors.Is(err, persistence.ErrRedisDisabled):
		s.Locker = lock.NewLocalLocker()
	default:
		logger.Warn("falling back to in-process check-in locks", zap.Error(err))
		s.Locker = lock.NewLocalLocker()
	}
	return s, nil
}

// Close releases every connection in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
