package repository

import (
	"errors"

	"dental-opd-service/internal/domain/entity"
	domainRepo "dental-opd-service/internal/domain/repository"
	"dental-opd-service/pkg/daywindow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var activeStatuses = []entity.TokenStatus{
	entity.TokenStatusWaiting,
	entity.TokenStatusInProgress,
}

type queueTokenRepository struct{}

func NewQueueTokenRepository() domainRepo.QueueTokenRepository {
	return &queueTokenRepository{}
}

func (r *queueTokenRepository) MaxTokenNumber(db *gorm.DB, w daywindow.Window) (int, error) {
	var max int
	err := db.Model(&entity.QueueToken{}).
		Select("COALESCE(MAX(token_number), 0)").
		Where("created_at >= ? AND created_at < ?", w.Start, w.End).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *queueTokenRepository) Insert(db *gorm.DB, token *entity.QueueToken) error {
	return db.Create(token).Error
}

func (r *queueTokenRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.QueueToken, error) {
	var token entity.QueueToken
	err := db.Preload("Patient").
		Preload("AssignedStudent").
		Preload("AssignedFaculty").
		Where("id = ?", id).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

// ApplyStatus performs the guarded read-modify-write: the UPDATE only lands
// while the stored status is still the one the caller authorized against.
func (r *queueTokenRepository) ApplyStatus(db *gorm.DB, id uuid.UUID, from, to entity.TokenStatus, triageNotes *string) (int64, error) {
	updates := map[string]interface{}{"status": to}
	if triageNotes != nil {
		updates["triage_notes"] = *triageNotes
	}

	result := db.Model(&entity.QueueToken{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *queueTokenRepository) Query(db *gorm.DB, w daywindow.Window, filter entity.QueueFilter) ([]entity.QueueToken, error) {
	query := db.Where("created_at >= ? AND created_at < ?", w.Start, w.End)
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var tokens []entity.QueueToken
	err := query.Preload("Patient").
		Preload("AssignedStudent").
		Preload("AssignedFaculty").
		Order("token_number ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

type assigneeLoad struct {
	Assignee *uuid.UUID
	Count    int
}

func (r *queueTokenRepository) ActiveLoadByAssignee(db *gorm.DB, w daywindow.Window, role entity.Role, department string) (map[uuid.UUID]int, error) {
	column := "assigned_faculty_id"
	if role == entity.RoleStudent {
		column = "assigned_student_id"
	}

	query := db.Model(&entity.QueueToken{}).
		Select(column+" AS assignee, COUNT(*) AS count").
		Where("status IN ?", activeStatuses).
		Where("created_at >= ? AND created_at < ?", w.Start, w.End)
	if department != "" {
		query = query.Where("department = ?", department)
	}

	var rows []assigneeLoad
	if err := query.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}

	loads := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		if row.Assignee != nil {
			loads[*row.Assignee] = row.Count
		}
	}
	return loads, nil
}

type chairLoad struct {
	Chair string
	Count int
}

func (r *queueTokenRepository) ActiveLoadByChair(db *gorm.DB, w daywindow.Window, department string) (map[string]int, error) {
	query := db.Model(&entity.QueueToken{}).
		Select("chair, COUNT(*) AS count").
		Where("status IN ?", activeStatuses).
		Where("created_at >= ? AND created_at < ?", w.Start, w.End).
		Where("department = ?", department)

	var rows []chairLoad
	if err := query.Group("chair").Scan(&rows).Error; err != nil {
		return nil, err
	}

	loads := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.Chair != "" {
			loads[row.Chair] = row.Count
		}
	}
	return loads, nil
}
