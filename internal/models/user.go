package models

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	StudentNumber string    `json:"studentNumber,omitempty"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Profile struct {
	UserID        string    `json:"userId"`
	FullName      string    `json:"fullName"`
	StudentNumber string    `json:"studentNumber"`
	Year          string    `json:"year"`
	Course        string    `json:"course"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	PhoneNumber   string    `json:"phoneNumber,omitempty"`
	ProfileImage  string    `json:"profileImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProfileUpdate carries the user-editable profile fields.
type ProfileUpdate struct {
	FullName      string `json:"fullName"`
	StudentNumber string `json:"studentNumber"`
	Year          string `json:"year"`
	Course        string `json:"course"`
	PhoneNumber   string `json:"phoneNumber"`
}

type Registration struct {
	FullName      string `json:"fullName"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          Role   `json:"role"`
	StudentNumber string `json:"studentNumber"`
	Year          string `json:"year"`
	Course        string `json:"course"`
}

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID    string
	Email     string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
