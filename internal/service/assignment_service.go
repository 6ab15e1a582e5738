package service

import (
	"strings"

	"dental-opd-service/internal/domain/entity"
	"dental-opd-service/internal/domain/repository"
	"dental-opd-service/pkg/daywindow"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AssignmentService picks the least-loaded staff member and treatment chair
// for a new queue token. Load is always recomputed from the store per
// check-in; nothing is cached across requests.
type AssignmentService struct {
	log       *logrus.Logger
	userRepo  repository.UserRepository
	tokenRepo repository.QueueTokenRepository
	chairPool []string
}

func NewAssignmentService(log *logrus.Logger, userRepo repository.UserRepository, tokenRepo repository.QueueTokenRepository, chairPool []string) *AssignmentService {
	return &AssignmentService{
		log:       log,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		chairPool: chairPool,
	}
}

// PickLeastLoaded returns the eligible user of the given role with the
// fewest active (Waiting/InProgress) tokens in the window, or nil when no
// eligible user exists. Ties go to whichever candidate sorts first in the
// eligibility listing.
func (s *AssignmentService) PickLeastLoaded(db *gorm.DB, w daywindow.Window, role entity.Role, department string) (*uuid.UUID, error) {
	users, err := s.userRepo.FindEligible(db, role, department)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}

	loads, err := s.tokenRepo.ActiveLoadByAssignee(db, w, role, department)
	if err != nil {
		return nil, err
	}

	best := users[0].ID
	bestLoad := loads[best]
	for _, user := range users[1:] {
		if load := loads[user.ID]; load < bestLoad {
			best = user.ID
			bestLoad = load
		}
	}

	return &best, nil
}

// PickChair returns the chair for a new token. An explicitly requested chair
// is honored as an administrative override without a contention check;
// otherwise the least-loaded chair in the department wins, ties broken by
// the declared pool order.
func (s *AssignmentService) PickChair(db *gorm.DB, w daywindow.Window, department, requestedChair string) (string, error) {
	if chair := strings.TrimSpace(requestedChair); chair != "" {
		return chair, nil
	}
	if len(s.chairPool) == 0 {
		return "", nil
	}

	loads, err := s.tokenRepo.ActiveLoadByChair(db, w, department)
	if err != nil {
		return "", err
	}

	best := s.chairPool[0]
	bestLoad := loads[best]
	for _, chair := range s.chairPool[1:] {
		if load := loads[chair]; load < bestLoad {
			best = chair
			bestLoad = load
		}
	}

	return best, nil
}
