package handlers

import (
	"context"
	"net/http"

	"template-backend/domain/core/entities"
	"template-backend/infrastructure/webservice"
	"template-backend/pkg/common"

	"go.uber.org/zap"
)

// HouseholdService is the household use-case surface the handler needs
type HouseholdService interface {
	List(ctx context.Context) ([]*entities.Household, error)
	Get(ctx context.Context, id int64) (*entities.Household, error)
	Members(ctx context.Context, id int64) ([]*entities.Individual, error)
	Save(ctx context.Context, household *entities.Household) (*entities.Household, error)
	Delete(ctx context.Context, id int64) error
}

// HouseholdHandler handles household HTTP requests
type HouseholdHandler struct {
	responder
	service HouseholdService
}

// NewHouseholdHandler creates a new household handler
func NewHouseholdHandler(service HouseholdService, converter *webservice.ConverterFactory, logger *zap.Logger) *HouseholdHandler {
	return &HouseholdHandler{
		responder: responder{converter: converter, logger: logger},
		service:   service,
	}
}

// List handles GET /households
func (h *HouseholdHandler) List(w http.ResponseWriter, r *http.Request) {
	households, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, common.Paginate(households, common.ExtractPaginationParams(r)))
}

// Get handles GET /households/{householdID}
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "householdID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	household, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, household)
}

// Members handles GET /households/{householdID}/members
func (h *HouseholdHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "householdID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	members, err := h.service.Members(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, members)
}

// Create handles POST /households
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var household entities.Household
	if err := h.converter.ReadRequest(r, &household); err != nil {
		h.respondError(w, r, err)
		return
	}
	household.ID = 0

	saved, err := h.service.Save(r.Context(), &household)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, saved)
}

// Update handles PUT /households/{householdID}
func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "householdID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var household entities.Household
	if err := h.converter.ReadRequest(r, &household); err != nil {
		h.respondError(w, r, err)
		return
	}
	household.ID = id

	saved, err := h.service.Save(r.Context(), &household)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, saved)
}

// Delete handles DELETE /households/{householdID}
func (h *HouseholdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "householdID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
