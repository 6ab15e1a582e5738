package handler

import (
	"encoding/json"
	"net/http"

	"dental-opd-service/internal/delivery/dto"
	"dental-opd-service/internal/delivery/http/middleware"
	"dental-opd-service/internal/domain/entity"
	"dental-opd-service/internal/usecase"
	"dental-opd-service/pkg/response"
	"dental-opd-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type OPDHandler struct {
	opdUsecase usecase.OPDUsecase
	validator  *validator.CustomValidator
}

func NewOPDHandler(opdUsecase usecase.OPDUsecase, validator *validator.CustomValidator) *OPDHandler {
	return &OPDHandler{
		opdUsecase: opdUsecase,
		validator:  validator,
	}
}

func (h *OPDHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	var req dto.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	token, err := h.opdUsecase.CheckIn(r.Context(), &req, actor)
	if err != nil {
		switch err {
		case usecase.ErrPatientRequired, usecase.ErrDepartmentRequired,
			usecase.ErrInvalidPatientID, usecase.ErrInvalidPriority:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient account not found or inactive")
		default:
			response.InternalServerError(w, "Failed to check in patient")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Patient checked in successfully", token)
}

func (h *OPDHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	filter := entity.QueueFilter{
		Department: r.URL.Query().Get("department"),
		Status:     r.URL.Query().Get("status"),
	}

	queue, err := h.opdUsecase.GetQueue(r.Context(), filter)
	if err != nil {
		if err == usecase.ErrInvalidStatus {
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		response.InternalServerError(w, "Failed to fetch queue")
		return
	}

	response.Success(w, http.StatusOK, "Queue retrieved successfully", queue)
}

func (h *OPDHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	vars := mux.Vars(r)
	tokenID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid token ID", nil)
		return
	}

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	token, err := h.opdUsecase.UpdateStatus(r.Context(), tokenID, &req, actor)
	if err != nil {
		switch err {
		case usecase.ErrInvalidStatus:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		case usecase.ErrTokenNotFound:
			response.NotFound(w, "Queue token not found")
		case usecase.ErrForbidden:
			response.Forbidden(w, "")
		case usecase.ErrIllegalTransition, usecase.ErrStatusConflict:
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to update queue status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Queue status updated successfully", token)
}
