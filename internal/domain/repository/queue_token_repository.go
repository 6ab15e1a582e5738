package repository

import (
	"dental-opd-service/internal/domain/entity"
	"dental-opd-service/pkg/daywindow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QueueTokenRepository is the persistent token store. All "today" reads are
// scoped to a daywindow.Window on created_at.
type QueueTokenRepository interface {
	// MaxTokenNumber returns the highest token number issued inside the
	// window, 0 when none exist.
	MaxTokenNumber(db *gorm.DB, w daywindow.Window) (int, error)
	Insert(db *gorm.DB, token *entity.QueueToken) error
	// FindByID returns the token with users preloaded, nil when absent.
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.QueueToken, error)
	// ApplyStatus updates status (and optionally triage notes) only while
	// the stored status still equals from. Returns affected rows:
	// 0 means the token was transitioned concurrently.
	ApplyStatus(db *gorm.DB, id uuid.UUID, from, to entity.TokenStatus, triageNotes *string) (int64, error)
	// Query lists the window's tokens matching the filter, ordered by
	// token_number ascending, with users preloaded.
	Query(db *gorm.DB, w daywindow.Window, filter entity.QueueFilter) ([]entity.QueueToken, error)
	// ActiveLoadByAssignee counts the window's Waiting/InProgress tokens per
	// assigned student (role student) or faculty (role faculty), scoped to
	// the department when non-empty.
	ActiveLoadByAssignee(db *gorm.DB, w daywindow.Window, role entity.Role, department string) (map[uuid.UUID]int, error)
	// ActiveLoadByChair counts the window's Waiting/InProgress tokens per
	// chair in the given department.
	ActiveLoadByChair(db *gorm.DB, w daywindow.Window, department string) (map[string]int, error)
}
