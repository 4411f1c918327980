package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createShowtimesTable,
		createBookingsTable,
		createParkingSlotsTable,
		createParkingBookingsTable,
		createSupportTicketsTable,
		createBookingsUserIndex,
		createShowtimesMovieIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// One row per showtime; the seat lists live on the row itself and version is
// the optimistic-concurrency token bumped on every commit.
const createShowtimesTable = `
CREATE TABLE IF NOT EXISTS showtimes (
    id VARCHAR(64) PRIMARY KEY,
    movie_id VARCHAR(64) NOT NULL,
    show_date VARCHAR(10) NOT NULL,
    show_time VARCHAR(10) NOT NULL,
    theatre_hall VARCHAR(50) NOT NULL DEFAULT 'Hall 1',
    total_seats INTEGER NOT NULL,
    available_count INTEGER NOT NULL,
    available_seats TEXT[] NOT NULL,
    booked_seats TEXT[] NOT NULL DEFAULT '{}',
    price BIGINT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    version BIGINT NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (available_count >= 0),
    UNIQUE (movie_id, show_date, show_time)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    booking_id VARCHAR(32) PRIMARY KEY,
    user_id VARCHAR(64) NOT NULL,
    showtime_id VARCHAR(64) NOT NULL REFERENCES showtimes(id),
    movie_id VARCHAR(64) NOT NULL,
    seats TEXT[] NOT NULL,
    total_amount BIGINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'CONFIRMED',
    payment_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('CONFIRMED', 'CANCELLED', 'COMPLETED', 'EXPIRED')),
    CHECK (payment_status IN ('PENDING', 'PAID', 'FAILED', 'REFUNDED'))
);`

// Only booked slots are materialized; the unique constraint is the
// storage-evaluated conditional write for the parking pool.
const createParkingSlotsTable = `
CREATE TABLE IF NOT EXISTS parking_slots (
    id SERIAL PRIMARY KEY,
    slot_number VARCHAR(16) NOT NULL,
    vehicle_type VARCHAR(20) NOT NULL,
    booked_by VARCHAR(64) NOT NULL,
    booking_id VARCHAR(32) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE (vehicle_type, slot_number),
    CHECK (vehicle_type IN ('CAR', 'MOTOR_BIKE', 'THREE_WHEELER'))
);`

const createParkingBookingsTable = `
CREATE TABLE IF NOT EXISTS parking_bookings (
    booking_id VARCHAR(32) PRIMARY KEY,
    user_id VARCHAR(64) NOT NULL,
    slot_number VARCHAR(16) NOT NULL,
    vehicle_type VARCHAR(20) NOT NULL,
    vehicle_number VARCHAR(32) NOT NULL,
    fee BIGINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
    payment_status VARCHAR(20) NOT NULL DEFAULT 'PAID',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('ACTIVE', 'EXPIRED', 'CANCELLED'))
);`

const createSupportTicketsTable = `
CREATE TABLE IF NOT EXISTS support_tickets (
    ticket_id VARCHAR(32) PRIMARY KEY,
    user_id VARCHAR(64) NOT NULL,
    title VARCHAR(200) NOT NULL,
    description TEXT NOT NULL,
    category VARCHAR(20) NOT NULL DEFAULT 'GENERAL',
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    priority VARCHAR(10) NOT NULL DEFAULT 'MEDIUM',
    resolution TEXT NOT NULL DEFAULT '',
    admin_notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('PENDING', 'IN_PROGRESS', 'RESOLVED', 'CLOSED'))
);`

const createBookingsUserIndex = `
CREATE INDEX IF NOT EXISTS bookings_user_id_idx ON bookings (user_id, created_at DESC);`

const createShowtimesMovieIndex = `
CREATE INDEX IF NOT EXISTS showtimes_movie_id_idx ON showtimes (movie_id, show_date, show_time);`
