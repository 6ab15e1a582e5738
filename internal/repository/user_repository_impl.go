package repository

import (
	"errors"

	"dental-opd-service/internal/domain/entity"
	domainRepo "dental-opd-service/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindEligible(db *gorm.DB, role entity.Role, department string) ([]entity.User, error) {
	query := db.Where("role = ? AND is_active = ?", role, true)
	if department != "" {
		query = query.Where("department = ?", department)
	}

	var users []entity.User
	// Stable listing order; the load balancer breaks ties by this order.
	err := query.Order("created_at ASC, id ASC").Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
