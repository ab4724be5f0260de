package handlers

import (
	"context"
	"net/http"

	"template-backend/domain/core/entities"
	"template-backend/infrastructure/webservice"
	"template-backend/pkg/common"

	"go.uber.org/zap"
)

// IndividualService is the individual use-case surface the handler needs
type IndividualService interface {
	List(ctx context.Context) ([]*entities.Individual, error)
	Get(ctx context.Context, id int64) (*entities.Individual, error)
	Save(ctx context.Context, individual *entities.Individual) (*entities.Individual, error)
	Delete(ctx context.Context, id int64) error
}

// IndividualHandler handles individual HTTP requests
type IndividualHandler struct {
	responder
	service IndividualService
}

// NewIndividualHandler creates a new individual handler
func NewIndividualHandler(service IndividualService, converter *webservice.ConverterFactory, logger *zap.Logger) *IndividualHandler {
	return &IndividualHandler{
		responder: responder{converter: converter, logger: logger},
		service:   service,
	}
}

// List handles GET /individuals
func (h *IndividualHandler) List(w http.ResponseWriter, r *http.Request) {
	individuals, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, common.Paginate(individuals, common.ExtractPaginationParams(r)))
}

// Get handles GET /individuals/{individualID}
func (h *IndividualHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "individualID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	individual, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, individual)
}

// Create handles POST /individuals
func (h *IndividualHandler) Create(w http.ResponseWriter, r *http.Request) {
	var individual entities.Individual
	if err := h.converter.ReadRequest(r, &individual); err != nil {
		h.respondError(w, r, err)
		return
	}
	individual.ID = 0

	saved, err := h.service.Save(r.Context(), &individual)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, saved)
}

// Update handles PUT /individuals/{individualID}
func (h *IndividualHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "individualID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var individual entities.Individual
	if err := h.converter.ReadRequest(r, &individual); err != nil {
		h.respondError(w, r, err)
		return
	}
	individual.ID = id

	saved, err := h.service.Save(r.Context(), &individual)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, saved)
}

// Delete handles DELETE /individuals/{individualID}
func (h *IndividualHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "individualID")
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
