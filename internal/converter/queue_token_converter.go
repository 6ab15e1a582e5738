package converter

import (
	"dental-opd-service/internal/delivery/dto"
	"dental-opd-service/internal/domain/entity"

	"github.com/google/uuid"
)

// UserToSummary converts a directory user to the display summary embedded in
// token responses.
func UserToSummary(user *entity.User) *dto.UserSummary {
	if user == nil {
		return nil
	}

	return &dto.UserSummary{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Phone:      user.Phone,
		Department: user.Department,
	}
}

// QueueTokenToResponse converts a QueueToken entity to its response DTO.
// Preloaded user relations become display summaries; a token loaded without
// preloads still converts, with the summaries left nil.
func QueueTokenToResponse(token *entity.QueueToken) *dto.QueueTokenResponse {
	if token == nil {
		return nil
	}

	response := &dto.QueueTokenResponse{
		ID:              token.ID,
		TokenNumber:     token.TokenNumber,
		TokenLabel:      token.TokenLabel,
		Department:      token.Department,
		AssignedStudent: UserToSummary(token.AssignedStudent),
		AssignedFaculty: UserToSummary(token.AssignedFaculty),
		Chair:           token.Chair,
		Status:          string(token.Status),
		Priority:        string(token.Priority),
		Symptoms:        append([]string{}, token.Symptoms...),
		TriageNotes:     token.TriageNotes,
		CheckedInBy:     token.CheckedInBy,
		CreatedAt:       token.CreatedAt,
		UpdatedAt:       token.UpdatedAt,
	}

	if token.Patient.ID != uuid.Nil {
		response.PatientUser = UserToSummary(&token.Patient)
	}

	return response
}

// QueueTokensToResponses converts a slice of QueueToken entities.
func QueueTokensToResponses(tokens []entity.QueueToken) []dto.QueueTokenResponse {
	responses := make([]dto.QueueTokenResponse, len(tokens))
	for i := range tokens {
		responses[i] = *QueueTokenToResponse(&tokens[i])
	}
	return responses
}
