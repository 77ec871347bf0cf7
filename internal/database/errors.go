package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sportspot/internal/models"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("record already exists")
	ErrSlotTaken   = errors.New("slot already booked")
	ErrUnavailable = errors.New("store unavailable")
)

// SlotTakenError lists the confirmed bookings that overlap a rejected insert.
type SlotTakenError struct {
	Conflicts []*models.Booking
}

func (e *SlotTakenError) Error() string {
	return fmt.Sprintf("%s: %d conflicting booking(s)", ErrSlotTaken, len(e.Conflicts))
}

func (e *SlotTakenError) Is(target error) bool {
	return target == ErrSlotTaken
}

// classify maps driver errors onto the package sentinels.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return fmt.Errorf("%s: %w: %s", op, ErrDuplicate, constraintColumn(sqliteErr.Error()))
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// constraintColumn extracts "users.email" from "UNIQUE constraint failed: users.email".
func constraintColumn(msg string) string {
	if _, col, ok := strings.Cut(msg, "failed: "); ok {
		return col
	}
	return msg
}

// DuplicateColumn returns the table.column named by a duplicate error, if any.
func DuplicateColumn(err error) string {
	if !errors.Is(err, ErrDuplicate) {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ErrDuplicate.Error()+": "); i >= 0 {
		return msg[i+len(ErrDuplicate.Error())+2:]
	}
	return ""
}
