package webservice

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "template-backend/pkg/errors"
	"template-backend/pkg/jsonmapper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stamped struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

func newConverter(t *testing.T) *ConverterFactory {
	t.Helper()
	mapper := jsonmapper.New()
	require.NoError(t, mapper.RegisterModule(jsonmapper.NewDateTimeModule(time.UTC)))
	return NewConverterFactory(mapper)
}

func TestConverter_RequestAndResponseBody(t *testing.T) {
	conv := newConverter(t)
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	body, err := conv.RequestBody(stamped{Name: "x", At: at})
	require.NoError(t, err)
	raw, _ := io.ReadAll(body)
	assert.JSONEq(t, `{"name":"x","at":"2024-05-06T07:08:09"}`, string(raw))

	var out stamped
	require.NoError(t, conv.ResponseBody(strings.NewReader(string(raw)), &out))
	assert.True(t, at.Equal(out.At))
	assert.Equal(t, MediaTypeJSON, conv.ContentType())
}

func TestConverter_ReadRequestRejectsGarbage(t *testing.T) {
	conv := newConverter(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope"))

	var out stamped
	err := conv.ReadRequest(req, &out)
	assert.True(t, apperrors.IsValidation(err))
}

func TestClient_EncodeFailureIsInternal(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1/api/", newConverter(t), zap.NewNop())
	require.NoError(t, err)

	err = client.Post(context.Background(), "/households", map[string]interface{}{"bad": make(chan int)}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}

func TestConverter_WriteResponse(t *testing.T) {
	conv := newConverter(t)
	rec := httptest.NewRecorder()

	require.NoError(t, conv.WriteResponse(rec, http.StatusCreated, map[string]int{"id": 4}))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, MediaTypeJSON, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":4}`, rec.Body.String())
}

func TestClient_GetAndPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/items":
			w.Header().Set("Content-Type", MediaTypeJSON)
			_, _ = w.Write([]byte(`[{"name":"a","at":"2024-01-02T03:04:05"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/items":
			assert.Equal(t, MediaTypeJSON, r.Header.Get("Content-Type"))
			data, _ := io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(data)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/api", newConverter(t), zap.NewNop())
	require.NoError(t, err)

	var items []stamped
	require.NoError(t, client.Get(context.Background(), "/items", &items))
	require.Len(t, items, 1)
	assert.Equal(t, 2024, items[0].At.Year())

	var echoed stamped
	require.NoError(t, client.Post(context.Background(), "items", stamped{Name: "b"}, &echoed))
	assert.Equal(t, "b", echoed.Name)

	err = client.Get(context.Background(), "missing", nil)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestClient_ServerErrorIsExternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, newConverter(t), zap.NewNop())
	require.NoError(t, err)

	err = client.Get(context.Background(), "anything", nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	_, err := NewClient("not a url", newConverter(t), zap.NewNop())
	assert.Error(t, err)
}
