package handlers

import (
	"net/http"

	"tender-marketplace/internal/service"
	"tender-marketplace/models"

	"github.com/google/uuid"
)

type createTenderRequest struct {
	Name            string             `json:"name" validate:"required,max=100"`
	Description     string             `json:"description" validate:"required,max=500"`
	ServiceType     models.ServiceType `json:"serviceType" validate:"required,oneof=Construction Delivery Manufacture"`
	OrganizationID  string             `json:"organizationId" validate:"required,uuid"`
	CreatorUsername string             `json:"creatorUsername" validate:"required"`
}

type editTenderRequest struct {
	Name        *string             `json:"name" validate:"omitempty,max=100"`
	Description *string             `json:"description" validate:"omitempty,max=500"`
	ServiceType *models.ServiceType `json:"serviceType" validate:"omitempty,oneof=Construction Delivery Manufacture"`
}

// CreateTenderHandler обрабатывает POST /api/tenders/new запрос
func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	var req createTenderRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	tender, err := h.Svc.CreateTender(r.Context(), service.CreateTenderInput{
		Name:            req.Name,
		Description:     req.Description,
		ServiceType:     req.ServiceType,
		OrganizationID:  uuid.MustParse(req.OrganizationID),
		CreatorUsername: req.CreatorUsername,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}

// GetTendersHandler возвращает список тендеров с фильтром по service_type
func (h *Handler) GetTendersHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePaginationParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// service_type может повторяться
	var serviceTypes []models.ServiceType
	for _, v := range r.URL.Query()["service_type"] {
		st := models.ServiceType(v)
		if !st.Valid() {
			h.writeError(w, r, invalid("invalid service_type %q", v))
			return
		}
		serviceTypes = append(serviceTypes, st)
	}

	tenders, err := h.Svc.ListTenders(r.Context(), serviceTypes, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tenders)
}

// GetUserTendersHandler возвращает тендеры, созданные пользователем username
func (h *Handler) GetUserTendersHandler(w http.ResponseWriter, r *http.Request) {
	page, err := parsePaginationParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tenders, err := h.Svc.ListUserTenders(r.Context(), username, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tenders)
}

func (h *Handler) GetTenderStatusHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := uuidParam(r, "tenderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status, err := h.Svc.TenderStatus(r.Context(), tenderID, username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) UpdateTenderStatusHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := uuidParam(r, "tenderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status, err := requiredQuery(r, "status")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tender, err := h.Svc.UpdateTenderStatus(r.Context(), tenderID, models.TenderStatus(status), username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}

func (h *Handler) EditTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := uuidParam(r, "tenderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req editTenderRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	tender, err := h.Svc.EditTender(r.Context(), tenderID, username, service.TenderPatch{
		Name:        req.Name,
		Description: req.Description,
		ServiceType: req.ServiceType,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}

func (h *Handler) RollbackTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, err := uuidParam(r, "tenderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	version, err := versionParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	username, err := requiredQuery(r, "username")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tender, err := h.Svc.RollbackTender(r.Context(), tenderID, version, username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}
