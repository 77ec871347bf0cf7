package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sportspot/internal/models"

	"github.com/google/uuid"
)

const venueColumns = `id, name, type, capacity, status, equipment, image, created_at, updated_at`

func scanVenue(row rowScanner) (*models.Venue, error) {
	v := &models.Venue{}
	var equipment string
	err := row.Scan(&v.ID, &v.Name, &v.Type, &v.Capacity, &v.Status, &equipment, &v.Image, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(equipment), &v.Equipment); err != nil {
		return nil, fmt.Errorf("failed to decode equipment of venue %s: %w", v.ID, err)
	}
	if v.Equipment == nil {
		v.Equipment = []string{}
	}
	return v, nil
}

func encodeEquipment(equipment []string) (string, error) {
	if equipment == nil {
		equipment = []string{}
	}
	raw, err := json.Marshal(equipment)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (db *DB) CreateVenue(ctx context.Context, venue *models.Venue) error {
	conn, err := db.conn(ctx)
	if err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	equipment, err := encodeEquipment(venue.Equipment)
	if err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	if venue.ID == "" {
		venue.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query := `INSERT INTO venues (` + venueColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = conn.ExecContext(ctx, query,
		venue.ID, venue.Name, venue.Type, venue.Capacity, venue.Status, equipment, venue.Image, now, now)
	if err != nil {
		return classify("create venue", err)
	}
	venue.CreatedAt = now
	venue.UpdatedAt = now
	return nil
}

func (db *DB) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get venue: %w", err)
	}
	v, err := scanVenue(conn.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id))
	if err != nil {
		return nil, classify("get venue", err)
	}
	return v, nil
}

func (db *DB) GetVenueByName(ctx context.Context, name string) (*models.Venue, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get venue by name: %w", err)
	}
	v, err := scanVenue(conn.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE name = ?`, name))
	if err != nil {
		return nil, classify("get venue by name", err)
	}
	return v, nil
}

// ListVenues returns venues newest first. Type matches case-insensitively as a substring.
func (db *DB) ListVenues(ctx context.Context, filter models.VenueFilter) ([]*models.Venue, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}

	var where []string
	var args []any
	if filter.Type != "" {
		where = append(where, `LOWER(type) LIKE '%' || LOWER(?) || '%'`)
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, filter.Status)
	}

	query := `SELECT ` + venueColumns + ` FROM venues`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, name ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list venues", err)
	}
	defer rows.Close()

	venues := []*models.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, classify("list venues: scan", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list venues", err)
	}
	return venues, nil
}

func (db *DB) UpdateVenue(ctx context.Context, venue *models.Venue) error {
	conn, err := db.conn(ctx)
	if err != nil {
		return fmt.Errorf("update venue: %w", err)
	}
	equipment, err := encodeEquipment(venue.Equipment)
	if err != nil {
		return fmt.Errorf("update venue: %w", err)
	}
	now := time.Now().UTC()

	query := `UPDATE venues SET name = ?, type = ?, capacity = ?, status = ?, equipment = ?, image = ?, updated_at = ?
              WHERE id = ?`
	result, err := conn.ExecContext(ctx, query,
		venue.Name, venue.Type, venue.Capacity, venue.Status, equipment, venue.Image, now, venue.ID)
	if err != nil {
		return classify("update venue", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return classify("update venue", err)
	}
	if rows == 0 {
		return fmt.Errorf("update venue %s: %w", venue.ID, ErrNotFound)
	}
	venue.UpdatedAt = now
	return nil
}

func (db *DB) DeleteVenue(ctx context.Context, id string) error {
	conn, err := db.conn(ctx)
	if err != nil {
		return fmt.Errorf("delete venue: %w", err)
	}
	result, err := conn.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id)
	if err != nil {
		return classify("delete venue", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return classify("delete venue", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete venue %s: %w", id, ErrNotFound)
	}
	return nil
}

// SeedVenues inserts the venues whose names are not taken yet and returns how
// many were added.
func (db *DB) SeedVenues(ctx context.Context, venues []models.Venue) (int, error) {
	added := 0
	err := db.withTx(ctx, "seed venues", func(tx *sql.Tx) error {
		now := time.Now().UTC()
		query := `INSERT INTO venues (` + venueColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
                  ON CONFLICT(name) DO NOTHING`
		for i := range venues {
			v := venues[i]
			if v.ID == "" {
				v.ID = uuid.NewString()
			}
			if v.Status == "" {
				v.Status = models.VenueAvailable
			}
			equipment, err := encodeEquipment(v.Equipment)
			if err != nil {
				return fmt.Errorf("seed venue %s: %w", v.Name, err)
			}
			result, err := tx.ExecContext(ctx, query,
				v.ID, v.Name, v.Type, v.Capacity, v.Status, equipment, v.Image, now, now)
			if err != nil {
				return classify("seed venue "+v.Name, err)
			}
			if n, _ := result.RowsAffected(); n > 0 {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
