package repository

import (
	"dental-opd-service/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository is the read-only user directory consumed by the OPD core.
type UserRepository interface {
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	// FindEligible returns active users of the given role, scoped to the
	// department when non-empty. The listing order (created_at, id) is the
	// documented tie-break order for least-loaded assignment.
	FindEligible(db *gorm.DB, role entity.Role, department string) ([]entity.User, error)
}
