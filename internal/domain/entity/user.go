package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles in the platform.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFaculty, RoleStudent, RolePatient:
		return true
	}
	return false
}

// Actor is the authenticated identity performing an operation. It is passed
// explicitly into every usecase method; the core never reads session state
// from ambient context.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// User represents one directory account (admin, faculty, student or patient).
// The OPD core treats this table as a read-only user directory; account CRUD
// lives in a separate service.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role       Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	Department string    `gorm:"type:varchar(100);index" json:"department,omitempty"`
	IsActive   *bool     `gorm:"not null;default:true;index" json:"is_active"`
	Phone      string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Active reports whether the account is enabled.
func (u *User) Active() bool {
	return u.IsActive != nil && *u.IsActive
}
