package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sportspot/internal/models"

	"github.com/google/uuid"
)

const userColumns = `id, email, name, username, password_hash, student_number, role, created_at, updated_at`

const profileColumns = `user_id, full_name, student_number, year, course, email, role,
                 phone_number, profile_image, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Username, &u.PasswordHash, &u.StudentNumber, &u.Role,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.UserID, &p.FullName, &p.StudentNumber, &p.Year, &p.Course, &p.Email, &p.Role,
		&p.PhoneNumber, &p.ProfileImage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateUserWithProfile stores the account and its profile atomically.
func (db *DB) CreateUserWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	now := time.Now().UTC()

	return db.withTx(ctx, "create user", func(tx *sql.Tx) error {
		query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query,
			user.ID, user.Email, user.Name, user.Username, user.PasswordHash,
			user.StudentNumber, user.Role, now, now)
		if err != nil {
			return classify("create user", err)
		}

		profile.UserID = user.ID
		if profile.Email == "" {
			profile.Email = user.Email
		}
		if profile.Role == "" {
			profile.Role = user.Role
		}
		query = `INSERT INTO profiles (` + profileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err = tx.ExecContext(ctx, query,
			profile.UserID, profile.FullName, profile.StudentNumber, profile.Year, profile.Course,
			profile.Email, profile.Role, profile.PhoneNumber, profile.ProfileImage, now, now)
		if err != nil {
			return classify("create profile", err)
		}

		user.CreatedAt, user.UpdatedAt = now, now
		profile.CreatedAt, profile.UpdatedAt = now, now
		return nil
	})
}

func (db *DB) getUser(ctx context.Context, op, where string, args ...any) (*models.User, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u, err := scanUser(conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, args...))
	if err != nil {
		return nil, classify(op, err)
	}
	return u, nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.getUser(ctx, "get user by id", `id = ?`, id)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, "get user by email", `email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

// FindUserByIdentifier matches an email, username or student number, in that
// order of precedence.
func (db *DB) FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("find user: %w", ErrNotFound)
	}
	email := strings.ToLower(identifier)
	return db.getUser(ctx, "find user",
		`email = ? OR username = ? OR (student_number <> '' AND student_number = ?)
		ORDER BY CASE WHEN email = ? THEN 0 WHEN username = ? THEN 1 ELSE 2 END
		LIMIT 1`,
		email, identifier, identifier, email, identifier)
}

func (db *DB) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	conn, err := db.conn(ctx)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	result, err := conn.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), userID)
	if err != nil {
		return classify("update password", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("update password: %w", ErrNotFound)
	}
	return nil
}

func (db *DB) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	conn, err := db.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p, err := scanProfile(conn.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID))
	if err != nil {
		return nil, classify("get profile", err)
	}
	return p, nil
}

// UpdateProfile writes the editable profile fields and mirrors the name and
// student number onto the account.
func (db *DB) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error) {
	now := time.Now().UTC()
	var profile *models.Profile

	err := db.withTx(ctx, "update profile", func(tx *sql.Tx) error {
		query := `UPDATE profiles SET full_name = ?, student_number = ?, year = ?, course = ?, phone_number = ?, updated_at = ?
                  WHERE user_id = ?`
		result, err := tx.ExecContext(ctx, query,
			update.FullName, update.StudentNumber, update.Year, update.Course, update.PhoneNumber, now, userID)
		if err != nil {
			return classify("update profile", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return fmt.Errorf("update profile: %w", ErrNotFound)
		}

		_, err = tx.ExecContext(ctx, `UPDATE users SET name = ?, student_number = ?, updated_at = ? WHERE id = ?`,
			update.FullName, update.StudentNumber, now, userID)
		if err != nil {
			return classify("update profile: user", err)
		}

		profile, err = scanProfile(tx.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID))
		if err != nil {
			return classify("update profile: reload", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}
