package handlers

import (
	"net/http"

	"template-backend/application/ports"
	"template-backend/infrastructure/webservice"
	apperrors "template-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type preferenceValue struct {
	Value string `json:"value"`
}

// PreferencesHandler exposes the preferences store
type PreferencesHandler struct {
	responder
	prefs ports.Preferences
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(prefs ports.Preferences, converter *webservice.ConverterFactory, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		responder: responder{converter: converter, logger: logger},
		prefs:     prefs,
	}
}

// List handles GET /preferences
func (h *PreferencesHandler) List(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.prefs.All())
}

// Get handles GET /preferences/{key}
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, ok := h.prefs.All()[key]
	if !ok {
		h.respondError(w, r, apperrors.NewNotFoundError("preference"))
		return
	}
	h.respondJSON(w, http.StatusOK, preferenceValue{Value: value})
}

// Put handles PUT /preferences/{key}
func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var body preferenceValue
	if err := h.converter.ReadRequest(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.prefs.Set(r.Context(), key, body.Value); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, body)
}

// Delete handles DELETE /preferences/{key}
func (h *PreferencesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.prefs.Remove(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
