package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sportspot/internal/models"

	"github.com/google/uuid"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const bookingColumns = `id, user_id, venue_id, venue_ref_kind, venue_name, date,
                 start_minute, end_minute, participants, needs_equipment, notes,
                 full_name, student_number, year, course, email, status,
                 created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var venueID, refKind, dateStr string
	var start, end int
	err := row.Scan(
		&b.ID, &b.UserID, &venueID, &refKind, &b.VenueName, &dateStr,
		&start, &end, &b.Participants, &b.NeedsEquipment, &b.Notes,
		&b.FullName, &b.StudentNumber, &b.Year, &b.Course, &b.Email, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Venue = models.VenueRef{Kind: models.VenueRefKind(refKind), Value: venueID}
	b.StartTime = models.Clock(start)
	b.EndTime = models.Clock(end)
	b.Date, err = time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	return b, nil
}

func queryBookings(ctx context.Context, q querier, query string, args ...any) ([]*models.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func findConfirmed(ctx context.Context, q querier, venueID string, date time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings
              WHERE venue_id = ? AND date = ? AND status = ?
              ORDER BY start_minute ASC`
	return queryBookings(ctx, q, query, venueID, date.Format(models.DateLayout), models.StatusConfirmed)
}

// FindConfirmedBookings returns the confirmed bookings of a venue on one day.
func (db *DB) FindConfirmedBookings(ctx context.Context, venueID string, date time.Time) ([]*models.Booking, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("find confirmed bookings: %w", err)
	}
	bookings, err := findConfirmed(ctx, conn, venueID, date)
	if err != nil {
		return nil, classify("find confirmed bookings", err)
	}
	return bookings, nil
}

// CreateBookingExclusive inserts the booking unless a confirmed booking of the
// same venue and day overlaps it. Check and insert share one transaction.
func (db *DB) CreateBookingExclusive(ctx context.Context, booking *models.Booking) error {
	return db.withTx(ctx, "create booking", func(tx *sql.Tx) error {
		existing, err := findConfirmed(ctx, tx, booking.Venue.Value, booking.Date)
		if err != nil {
			return classify("create booking: check slot", err)
		}

		slot := booking.Slot()
		var conflicts []*models.Booking
		for _, b := range existing {
			if slot.Overlaps(b.Slot()) {
				conflicts = append(conflicts, b)
			}
		}
		if len(conflicts) > 0 {
			return &SlotTakenError{Conflicts: conflicts}
		}

		if err := insertBooking(ctx, tx, booking); err != nil {
			return classify("create booking: insert", err)
		}
		return nil
	})
}

func insertBooking(ctx context.Context, q querier, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Venue.Kind == "" {
		booking.Venue.Kind = models.VenueRefInline
	}
	now := time.Now().UTC()

	query := `INSERT INTO bookings (` + bookingColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.Venue.Value,
		string(booking.Venue.Kind),
		booking.VenueName,
		booking.Date.Format(models.DateLayout),
		int(booking.StartTime),
		int(booking.EndTime),
		booking.Participants,
		booking.NeedsEquipment,
		booking.Notes,
		booking.FullName,
		booking.StudentNumber,
		booking.Year,
		booking.Course,
		booking.Email,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return err
	}
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify("get booking", err)
	}
	return b, nil
}

func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	conn, err := db.conn(ctx)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	result, err := conn.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return classify("delete booking", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return classify("delete booking", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete booking %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetUserBookings lists every booking of the user by date, then start time.
func (db *DB) GetUserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get user bookings: %w", err)
	}
	query := `SELECT ` + bookingColumns + `
              FROM bookings WHERE user_id = ?
              ORDER BY date ASC, start_minute ASC`
	bookings, err := queryBookings(ctx, conn, query, userID)
	if err != nil {
		return nil, classify("get user bookings", err)
	}
	return bookings, nil
}

func (db *DB) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get bookings by date range: %w", err)
	}
	query := `SELECT ` + bookingColumns + `
              FROM bookings WHERE date >= ? AND date <= ?
              ORDER BY date ASC, venue_id ASC, start_minute ASC`
	bookings, err := queryBookings(ctx, conn, query,
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
	if err != nil {
		return nil, classify("get bookings by date range", err)
	}
	return bookings, nil
}

// CountActiveBookings counts confirmed bookings of a venue dated on or after from.
func (db *DB) CountActiveBookings(ctx context.Context, venueID string, from time.Time) (int, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("count active bookings: %w", err)
	}
	query := `SELECT COUNT(*) FROM bookings WHERE venue_id = ? AND status = ? AND date >= ?`
	var count int
	err = conn.QueryRowContext(ctx, query, venueID, models.StatusConfirmed, from.Format(models.DateLayout)).Scan(&count)
	if err != nil {
		return 0, classify("count active bookings", err)
	}
	return count, nil
}
