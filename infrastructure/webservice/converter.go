// Package webservice holds the JSON body converter shared by the REST layer
// and the remote client.
package webservice

import (
	"bytes"
	"io"
	"net/http"

	apperrors "template-backend/pkg/errors"
	"template-backend/pkg/jsonmapper"
)

// MediaTypeJSON is the content type the converter reads and writes
const MediaTypeJSON = "application/json; charset=utf-8"

// ConverterFactory encodes request bodies and decodes response bodies with
// the application's object mapper
type ConverterFactory struct {
	mapper *jsonmapper.Mapper
}

// NewConverterFactory creates a converter over mapper
func NewConverterFactory(mapper *jsonmapper.Mapper) *ConverterFactory {
	return &ConverterFactory{mapper: mapper}
}

// Mapper returns the backing object mapper
func (f *ConverterFactory) Mapper() *jsonmapper.Mapper {
	return f.mapper
}

// ContentType is the media type of encoded bodies
func (f *ConverterFactory) ContentType() string {
	return MediaTypeJSON
}

// RequestBody encodes v
func (f *ConverterFactory) RequestBody(v interface{}) (io.Reader, error) {
	data, err := f.mapper.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// ResponseBody decodes r into v
func (f *ConverterFactory) ResponseBody(r io.Reader, v interface{}) error {
	return f.mapper.NewDecoder(r).Decode(v)
}

// ReadRequest decodes an incoming request body. Malformed bodies are
// validation errors.
func (f *ConverterFactory) ReadRequest(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return apperrors.NewValidationError("request body is required")
	}
	if err := f.ResponseBody(r.Body, v); err != nil {
		return apperrors.NewValidationError("invalid request body").WithCause(err)
	}
	return nil
}

// WriteResponse encodes v as the response with status
func (f *ConverterFactory) WriteResponse(w http.ResponseWriter, status int, v interface{}) error {
	data, err := f.mapper.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", MediaTypeJSON)
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}
