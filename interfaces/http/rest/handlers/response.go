package handlers

import (
	"net/http"
	"strconv"

	"template-backend/infrastructure/webservice"
	apperrors "template-backend/pkg/errors"
	"template-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// responder writes JSON bodies through the application's converter
type responder struct {
	converter *webservice.ConverterFactory
	logger    *zap.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	if err := h.converter.WriteResponse(w, status, v); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := common.NewErrorResponse(err, middleware.GetReqID(r.Context()))
	switch {
	case status >= http.StatusInternalServerError:
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	case apperrors.IsValidation(err):
		h.logger.Debug("Request rejected",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	h.respondJSON(w, status, body)
}

// idParam parses a positive integer path parameter
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid " + name)
	}
	return id, nil
}
