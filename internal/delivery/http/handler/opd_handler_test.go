package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dental-opd-service/internal/delivery/dto"
	"dental-opd-service/internal/delivery/http/middleware"
	"dental-opd-service/internal/domain/entity"
	"dental-opd-service/internal/usecase"
	"dental-opd-service/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// fakeOPDUsecase returns canned results so the tests exercise only the HTTP
// layer's decoding, validation and error mapping.
type fakeOPDUsecase struct {
	checkInErr      error
	updateErr       error
	getQueueErr     error
	lastCheckIn     *dto.CheckInRequest
	lastActor       entity.Actor
	lastTokenID     uuid.UUID
	lastStatusReq   *dto.UpdateStatusRequest
	lastQueueFilter entity.QueueFilter
}

func (f *fakeOPDUsecase) CheckIn(_ context.Context, req *dto.CheckInRequest, actor entity.Actor) (*dto.QueueTokenResponse, error) {
	f.lastCheckIn = req
	f.lastActor = actor
	if f.checkInErr != nil {
		return nil, f.checkInErr
	}
	return &dto.QueueTokenResponse{ID: uuid.New(), TokenNumber: 1, TokenLabel: "T001", Status: "Waiting"}, nil
}

func (f *fakeOPDUsecase) GetQueue(_ context.Context, filter entity.QueueFilter) (*dto.QueueListResponse, error) {
	f.lastQueueFilter = filter
	if f.getQueueErr != nil {
		return nil, f.getQueueErr
	}
	return &dto.QueueListResponse{Items: []dto.QueueTokenResponse{}, Total: 0}, nil
}

func (f *fakeOPDUsecase) UpdateStatus(_ context.Context, tokenID uuid.UUID, req *dto.UpdateStatusRequest, actor entity.Actor) (*dto.QueueTokenResponse, error) {
	f.lastTokenID = tokenID
	f.lastStatusReq = req
	f.lastActor = actor
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dto.QueueTokenResponse{ID: tokenID, Status: req.Status}, nil
}

func newHandler(uc usecase.OPDUsecase) *OPDHandler {
	return NewOPDHandler(uc, validator.NewValidator())
}

func testActor() entity.Actor {
	return entity.Actor{ID: uuid.New(), Role: entity.RoleAdmin}
}

func checkInRequest(t *testing.T, body interface{}, actor *entity.Actor) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/opd/check-in", bytes.NewReader(payload))
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	return req
}

func TestCheckInHandlerSuccess(t *testing.T) {
	uc := &fakeOPDUsecase{}
	h := newHandler(uc)
	actor := testActor()

	body := dto.CheckInRequest{PatientUser: uuid.NewString(), Department: "Endodontics", Priority: "High"}
	rec := httptest.NewRecorder()
	h.CheckIn(rec, checkInRequest(t, body, &actor))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if uc.lastActor.ID != actor.ID {
		t.Errorf("actor passed to usecase = %s, want %s", uc.lastActor.ID, actor.ID)
	}
	if uc.lastCheckIn == nil || uc.lastCheckIn.Department != "Endodontics" {
		t.Errorf("request passed to usecase = %+v", uc.lastCheckIn)
	}

	var envelope struct {
		Success bool                   `json:"success"`
		Data    dto.QueueTokenResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Success || envelope.Data.TokenLabel != "T001" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestCheckInHandlerRequiresActor(t *testing.T) {
	h := newHandler(&fakeOPDUsecase{})

	rec := httptest.NewRecorder()
	h.CheckIn(rec, checkInRequest(t, dto.CheckInRequest{Department: "Endodontics"}, nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCheckInHandlerRejectsBadBody(t *testing.T) {
	h := newHandler(&fakeOPDUsecase{})
	actor := testActor()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/opd/check-in", bytes.NewReader([]byte("{not json")))
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	h.CheckIn(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCheckInHandlerValidation(t *testing.T) {
	h := newHandler(&fakeOPDUsecase{})
	actor := testActor()

	cases := []struct {
		name string
		body dto.CheckInRequest
	}{
		{"missing department", dto.CheckInRequest{PatientUser: uuid.NewString()}},
		{"malformed patient uuid", dto.CheckInRequest{PatientUser: "abc", Department: "Endodontics"}},
		{"unknown priority", dto.CheckInRequest{PatientUser: uuid.NewString(), Department: "Endodontics", Priority: "Urgent"}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.CheckIn(rec, checkInRequest(t, tt.body, &actor))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}

func TestCheckInHandlerErrorMapping(t *testing.T) {
	actor := testActor()

	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"patient required", usecase.ErrPatientRequired, http.StatusBadRequest},
		{"patient not found", usecase.ErrPatientNotFound, http.StatusNotFound},
		{"contention exhausted", usecase.ErrCheckInContention, http.StatusInternalServerError},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(&fakeOPDUsecase{checkInErr: tt.err})
			rec := httptest.NewRecorder()
			h.CheckIn(rec, checkInRequest(t, dto.CheckInRequest{PatientUser: uuid.NewString(), Department: "Endodontics"}, &actor))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestGetQueueHandlerPassesFilter(t *testing.T) {
	uc := &fakeOPDUsecase{}
	h := newHandler(uc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/opd/queue?department=Endodontics&status=Waiting", nil)
	rec := httptest.NewRecorder()
	h.GetQueue(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if uc.lastQueueFilter.Department != "Endodontics" || uc.lastQueueFilter.Status != "Waiting" {
		t.Errorf("filter = %+v", uc.lastQueueFilter)
	}
}

func TestGetQueueHandlerInvalidStatus(t *testing.T) {
	h := newHandler(&fakeOPDUsecase{getQueueErr: usecase.ErrInvalidStatus})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/opd/queue?status=Unknown", nil)
	rec := httptest.NewRecorder()
	h.GetQueue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func updateStatusRequest(t *testing.T, tokenID string, body interface{}, actor *entity.Actor) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/opd/queue/"+tokenID+"/status", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"id": tokenID})
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	return req
}

func TestUpdateStatusHandlerSuccess(t *testing.T) {
	uc := &fakeOPDUsecase{}
	h := newHandler(uc)
	actor := testActor()
	tokenID := uuid.New()

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, updateStatusRequest(t, tokenID.String(), dto.UpdateStatusRequest{Status: "InProgress"}, &actor))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if uc.lastTokenID != tokenID {
		t.Errorf("token id passed to usecase = %s, want %s", uc.lastTokenID, tokenID)
	}
	if uc.lastStatusReq == nil || uc.lastStatusReq.Status != "InProgress" {
		t.Errorf("request passed to usecase = %+v", uc.lastStatusReq)
	}
}

func TestUpdateStatusHandlerInvalidTokenID(t *testing.T) {
	h := newHandler(&fakeOPDUsecase{})
	actor := testActor()

	rec := httptest.NewRecorder()
	h.UpdateStatus(rec, updateStatusRequest(t, "not-a-uuid", dto.UpdateStatusRequest{Status: "InProgress"}, &actor))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateStatusHandlerErrorMapping(t *testing.T) {
	actor := testActor()

	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid status", usecase.ErrInvalidStatus, http.StatusBadRequest},
		{"token not found", usecase.ErrTokenNotFound, http.StatusNotFound},
		{"forbidden", usecase.ErrForbidden, http.StatusForbidden},
		{"illegal transition", usecase.ErrIllegalTransition, http.StatusConflict},
		{"concurrent change", usecase.ErrStatusConflict, http.StatusConflict},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(&fakeOPDUsecase{updateErr: tt.err})
			rec := httptest.NewRecorder()
			h.UpdateStatus(rec, updateStatusRequest(t, uuid.NewString(), dto.UpdateStatusRequest{Status: "Completed"}, &actor))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}
